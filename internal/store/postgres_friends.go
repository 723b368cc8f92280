package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/friendship"
	"scoredAPI/internal/user"
)

const requestColumns = `id, sender_id, receiver_id, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*friendship.FriendRequest, error) {
	fr := &friendship.FriendRequest{}
	err := row.Scan(
		&fr.ID,
		&fr.SenderID,
		&fr.ReceiverID,
		&fr.Status,
		&fr.CreatedAt,
		&fr.UpdatedAt,
	)
	return fr, err
}

// FindRequestBetween returns the request between a and b in either direction,
// or nil when the pair has none.
func (s *Postgres) FindRequestBetween(ctx context.Context, a, b string) (*friendship.FriendRequest, error) {
	query := `
	SELECT ` + requestColumns + `
	FROM friend_requests
	WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`

	fr, err := scanRequest(s.db.QueryRow(ctx, query, a, b))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find friend request: %w", err)
	}
	return fr, nil
}

// CreateRequest inserts a pending request. The unordered-pair unique index
// turns a concurrent duplicate into ErrDuplicateRequest.
func (s *Postgres) CreateRequest(ctx context.Context, senderID, receiverID string) (*friendship.FriendRequest, error) {
	query := `
	INSERT INTO friend_requests (sender_id, receiver_id, status)
	VALUES ($1, $2, 'pending')
	RETURNING ` + requestColumns

	fr, err := scanRequest(s.db.QueryRow(ctx, query, senderID, receiverID))
	if err != nil {
		switch code, _ := pgError(err); code {
		case uniqueViolation:
			return nil, apperrors.ErrDuplicateRequest
		case foreignKeyViolation:
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return fr, nil
}

// ResolveRequest moves the pending request senderID -> receiverID to status.
// Accepting also inserts the canonical friendship row in the same transaction.
func (s *Postgres) ResolveRequest(ctx context.Context, senderID, receiverID string, status friendship.Status) (*friendship.FriendRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	UPDATE friend_requests
	SET status = $1, updated_at = NOW()
	WHERE sender_id = $2 AND receiver_id = $3 AND status = 'pending'
	RETURNING ` + requestColumns

	fr, err := scanRequest(tx.QueryRow(ctx, query, status, senderID, receiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to update friend request: %w", err)
	}

	if status == friendship.StatusAccepted {
		low, high := orderedPair(senderID, receiverID)
		_, err = tx.Exec(ctx, `
		INSERT INTO friends (user_id, friend_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
		`, low, high)
		if err != nil {
			return nil, fmt.Errorf("failed to create friendship: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return fr, nil
}

func (s *Postgres) AreFriends(ctx context.Context, a, b string) (bool, error) {
	low, high := orderedPair(a, b)

	var exists bool
	err := s.db.QueryRow(ctx, `
	SELECT EXISTS(SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)
	`, low, high).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

func (s *Postgres) ListPendingRequests(ctx context.Context, userID string) ([]*friendship.PendingRequest, error) {
	query := `
	SELECT fr.id, fr.sender_id, fr.created_at, u.name, u.username
	FROM friend_requests fr
	JOIN users u ON fr.sender_id = u.id
	WHERE fr.receiver_id = $1 AND fr.status = 'pending'
	ORDER BY fr.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*friendship.PendingRequest, 0)
	for rows.Next() {
		pr := &friendship.PendingRequest{}
		if err := rows.Scan(&pr.ID, &pr.SenderID, &pr.CreatedAt, &pr.Name, &pr.Username); err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}

func (s *Postgres) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	query := `
	SELECT u.id, u.name, u.username, f.created_at
	FROM friends f
	JOIN users u ON u.id = CASE WHEN f.user_id = $1 THEN f.friend_id ELSE f.user_id END
	WHERE f.user_id = $1 OR f.friend_id = $1
	ORDER BY f.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := make([]*friendship.Friend, 0)
	for rows.Next() {
		f := &friendship.Friend{}
		if err := rows.Scan(&f.ID, &f.Name, &f.Username, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (s *Postgres) SearchUsers(ctx context.Context, q, excludeID string, limit int) ([]*user.Summary, error) {
	query := `
	SELECT id, name, username
	FROM users
	WHERE (username ILIKE $1 OR name ILIKE $1) AND id <> $2
	ORDER BY username
	LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, likePattern(q), excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := make([]*user.Summary, 0)
	for rows.Next() {
		u := &user.Summary{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
