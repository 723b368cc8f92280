package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scoredAPI/internal/score"
)

const scoreColumns = `id, user_id, score, description, to_char(date, 'YYYY-MM-DD'), created_at, updated_at`

func scanScore(row pgx.Row) (*score.Score, error) {
	sc := &score.Score{}
	err := row.Scan(
		&sc.ID,
		&sc.UserID,
		&sc.Score,
		&sc.Description,
		&sc.Date,
		&sc.CreatedAt,
		&sc.UpdatedAt,
	)
	return sc, err
}

// UpsertScore writes the (userID, day) row, overwriting value and note when
// one already exists.
func (s *Postgres) UpsertScore(ctx context.Context, userID string, value int, note *string, day string) (*score.Score, error) {
	query := `
	INSERT INTO scores (user_id, score, description, date)
	VALUES ($1, $2, $3, $4::date)
	ON CONFLICT (user_id, date) DO UPDATE SET
		score = EXCLUDED.score,
		description = EXCLUDED.description,
		updated_at = NOW()
	RETURNING ` + scoreColumns

	sc, err := scanScore(s.db.QueryRow(ctx, query, userID, value, note, day))
	if err != nil {
		return nil, fmt.Errorf("failed to save score: %w", err)
	}
	return sc, nil
}

func (s *Postgres) ListScores(ctx context.Context, userID string, limit int) ([]*score.Score, error) {
	query := `
	SELECT ` + scoreColumns + `
	FROM scores
	WHERE user_id = $1
	ORDER BY date DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]*score.Score, 0)
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// DeleteScore removes scoreID when it belongs to userID and reports whether a
// row was deleted.
func (s *Postgres) DeleteScore(ctx context.Context, userID, scoreID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM scores WHERE id = $1 AND user_id = $2`, scoreID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListFeed returns friends' scores, newest first. Each friendship is a single
// row, so the join yields every score at most once.
func (s *Postgres) ListFeed(ctx context.Context, userID string, limit int) ([]*score.FeedEntry, error) {
	query := `
	SELECT s.id, s.user_id, s.score, s.description, to_char(s.date, 'YYYY-MM-DD'),
	       s.created_at, s.updated_at, u.name, u.username
	FROM scores s
	JOIN friends f ON (
		(f.user_id = $1 AND f.friend_id = s.user_id) OR
		(f.friend_id = $1 AND f.user_id = s.user_id)
	)
	JOIN users u ON u.id = s.user_id
	WHERE s.user_id <> $1
	ORDER BY s.created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed: %w", err)
	}
	defer rows.Close()

	feed := make([]*score.FeedEntry, 0)
	for rows.Next() {
		e := &score.FeedEntry{}
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Score.Score,
			&e.Description,
			&e.Date,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.UserName,
			&e.UserUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}
		feed = append(feed, e)
	}
	return feed, rows.Err()
}
