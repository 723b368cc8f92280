package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/metrics"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
	"scoredAPI/internal/validation"
)

// FriendChecker answers whether two users are friends.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

type ScoreService struct {
	scores  ScoreStore
	friends FriendChecker
	users   UserStore
	loc     *time.Location
	now     func() time.Time
}

// NewScoreService evaluates "today" in loc.
func NewScoreService(scores ScoreStore, friends FriendChecker, users UserStore, loc *time.Location) *ScoreService {
	if loc == nil {
		loc = time.UTC
	}
	return &ScoreService{
		scores:  scores,
		friends: friends,
		users:   users,
		loc:     loc,
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, for tests and backfills.
func (s *ScoreService) WithClock(now func() time.Time) *ScoreService {
	s.now = now
	return s
}

// Today is the current calendar day in the ledger's time zone.
func (s *ScoreService) Today() string {
	return score.Day(s.now(), s.loc)
}

// UpsertTodayScore writes ownerID's score for today, replacing any earlier
// score of the same day. The note is stripped of markup and truncated.
func (s *ScoreService) UpsertTodayScore(ctx context.Context, ownerID string, value int, note string) (*score.Score, error) {
	if !score.ValidValue(value) {
		return nil, apperrors.ErrInvalidScore
	}

	today := s.Today()
	saved, err := s.scores.UpsertScore(ctx, ownerID, value, validation.CleanNote(note, score.MaxNoteLength), today)
	if err != nil {
		return nil, err
	}
	metrics.ScoresSaved.Inc()

	saved.Annotate(today)
	return saved, nil
}

func (s *ScoreService) ListOwnScores(ctx context.Context, ownerID string, limit int) ([]*score.Score, error) {
	scores, err := s.scores.ListScores(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	s.annotate(scores)
	return scores, nil
}

// DeleteScore removes scoreID if ownerID owns it. Missing, foreign and
// malformed ids all fail with ErrScoreNotFound.
func (s *ScoreService) DeleteScore(ctx context.Context, ownerID, scoreID string) error {
	id, err := uuid.Parse(scoreID)
	if err != nil {
		return apperrors.ErrScoreNotFound
	}

	deleted, err := s.scores.DeleteScore(ctx, ownerID, id.String())
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrScoreNotFound
	}
	return nil
}

// ListFriendScores returns friendID's history with a summary, provided the
// viewer and friendID are friends.
func (s *ScoreService) ListFriendScores(ctx context.Context, viewerID, friendID string, limit int) (*score.FriendScoresResponse, error) {
	if canonical, ok := user.CanonicalID(friendID); ok {
		friendID = canonical
	}
	ok, err := s.friends.AreFriends(ctx, viewerID, friendID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrNotFriends
	}

	friend, err := s.users.GetUserByID(ctx, friendID)
	if err != nil {
		return nil, err
	}

	scores, err := s.scores.ListScores(ctx, friendID, limit)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	s.annotate(scores)
	return &score.FriendScoresResponse{
		Friend: friend.Summary(),
		Scores: scores,
		Stats:  score.Summarize(scores, today),
	}, nil
}

// ListFeed returns scores of viewerID's friends, newest first.
func (s *ScoreService) ListFeed(ctx context.Context, viewerID string, limit int) ([]*score.FeedEntry, error) {
	feed, err := s.scores.ListFeed(ctx, viewerID, limit)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	for _, e := range feed {
		e.Annotate(today)
	}
	return feed, nil
}

func (s *ScoreService) annotate(scores []*score.Score) {
	today := s.Today()
	for _, sc := range scores {
		sc.Annotate(today)
	}
}
