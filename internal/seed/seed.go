// Package seed fills a store with demo users, friendships and score history.
// It is meant for local development only.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"scoredAPI/internal/friendship"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
	"scoredAPI/internal/validation"
)

type UserCreator interface {
	CreateFromIdentity(ctx context.Context, p *user.IdentityProfile) (*user.User, error)
}

type FriendMaker interface {
	SendRequest(ctx context.Context, senderID, receiverID string) (string, error)
	RespondToRequest(ctx context.Context, responderID, originalSenderID string, decision friendship.Status) (string, error)
}

type ScoreWriter interface {
	UpsertScore(ctx context.Context, userID string, value int, note *string, day string) (*score.Score, error)
}

type Options struct {
	Users int
	Days  int
	// Seed makes runs reproducible; zero picks a random seed.
	Seed int64
	Now  time.Time
	Loc  *time.Location
}

type Result struct {
	Users       []*user.User
	Friendships int
	Pending     int
	Scores      int
}

type Seeder struct {
	users   UserCreator
	friends FriendMaker
	scores  ScoreWriter
}

func New(users UserCreator, friends FriendMaker, scores ScoreWriter) *Seeder {
	return &Seeder{users: users, friends: friends, scores: scores}
}

// Run creates opts.Users users arranged in a ring: each user is friends with
// the next one and has a pending request from the one two places back.
// Every user gets a score on roughly four of five days in the last opts.Days.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Users < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", opts.Users)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Loc == nil {
		opts.Loc = time.UTC
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(opts.Seed)

	res := &Result{}
	for i := 0; i < opts.Users; i++ {
		name := faker.Name()
		u, err := s.users.CreateFromIdentity(ctx, &user.IdentityProfile{
			ClerkID:  "seed_" + uuid.NewString(),
			Email:    fmt.Sprintf("%d.%s", i, faker.Email()),
			Name:     name,
			Username: validation.UsernameFrom(faker.Username()),
		})
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		res.Users = append(res.Users, u)
	}

	n := len(res.Users)
	for i, u := range res.Users {
		next := res.Users[(i+1)%n]
		if n == 2 && i == 1 {
			break
		}
		if _, err := s.friends.SendRequest(ctx, u.ID, next.ID); err != nil {
			return nil, fmt.Errorf("send request %s -> %s: %w", u.Username, next.Username, err)
		}
		if _, err := s.friends.RespondToRequest(ctx, next.ID, u.ID, friendship.StatusAccepted); err != nil {
			return nil, fmt.Errorf("accept request %s -> %s: %w", u.Username, next.Username, err)
		}
		res.Friendships++
	}

	if n > 4 {
		for i, u := range res.Users {
			target := res.Users[(i+2)%n]
			if _, err := s.friends.SendRequest(ctx, u.ID, target.ID); err == nil {
				res.Pending++
			}
		}
	}

	for _, u := range res.Users {
		for d := 0; d < opts.Days; d++ {
			if faker.Number(1, 5) == 1 {
				continue
			}
			var note *string
			if faker.Bool() {
				note = validation.CleanNote(faker.Sentence(6), score.MaxNoteLength)
			}
			day := score.Day(opts.Now.AddDate(0, 0, -d), opts.Loc)
			if _, err := s.scores.UpsertScore(ctx, u.ID, faker.Number(score.MinValue, score.MaxValue), note, day); err != nil {
				return nil, fmt.Errorf("score for %s on %s: %w", u.Username, day, err)
			}
			res.Scores++
		}
	}

	return res, nil
}
