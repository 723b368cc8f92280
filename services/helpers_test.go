package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"scoredAPI/internal/notification"
	"scoredAPI/internal/store"
	"scoredAPI/internal/user"
)

type sentNotification struct {
	userID string
	kind   notification.NotificationType
	body   string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, userID string, kind notification.NotificationType, title, body string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{userID: userID, kind: kind, body: body})
	return n.err
}

type fakePush struct {
	tokens []notification.DeviceToken
	data   map[string]any
	err    error
}

func (p *fakePush) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	p.tokens = tokens
	p.data = data
	return p.err
}

var errStoreDown = errors.New("store down")

type env struct {
	store    *store.Memory
	users    *UserService
	friends  *FriendService
	scores   *ScoreService
	notifier *recordingNotifier
}

// fixedNow is 2026-10-17 12:00 UTC.
var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newEnv(t *testing.T) *env {
	t.Helper()
	m := store.NewMemory()
	n := &recordingNotifier{}
	users := NewUserService(m)
	friends := NewFriendService(m, m, n)
	scores := NewScoreService(m, friends, m, time.UTC).WithClock(func() time.Time { return fixedNow })
	return &env{store: m, users: users, friends: friends, scores: scores, notifier: n}
}

func (e *env) user(t *testing.T, username string) *user.User {
	t.Helper()
	u, err := e.store.CreateUser(context.Background(), &user.User{
		ClerkID:  "user_" + username,
		Email:    username + "@example.com",
		Name:     "Name " + username,
		Username: username,
	})
	require.NoError(t, err)
	return u
}

func (e *env) befriend(t *testing.T, a, b *user.User) {
	t.Helper()
	ctx := context.Background()
	_, err := e.friends.SendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = e.friends.RespondToRequest(ctx, b.ID, a.ID, "accepted")
	require.NoError(t, err)
}
