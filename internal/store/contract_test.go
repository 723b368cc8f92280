package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/friendship"
	"scoredAPI/internal/notification"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
)

// contractStore is everything both store implementations provide.
type contractStore interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	GetEmailByUsername(ctx context.Context, username string) (string, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, userID, username string) (*user.User, error)
	UpdateUserByClerkID(ctx context.Context, clerkID, email, name string) (*user.User, error)

	FindRequestBetween(ctx context.Context, a, b string) (*friendship.FriendRequest, error)
	CreateRequest(ctx context.Context, senderID, receiverID string) (*friendship.FriendRequest, error)
	ResolveRequest(ctx context.Context, senderID, receiverID string, status friendship.Status) (*friendship.FriendRequest, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
	ListPendingRequests(ctx context.Context, userID string) ([]*friendship.PendingRequest, error)
	ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error)
	SearchUsers(ctx context.Context, q, excludeID string, limit int) ([]*user.Summary, error)

	UpsertScore(ctx context.Context, userID string, value int, note *string, day string) (*score.Score, error)
	ListScores(ctx context.Context, userID string, limit int) ([]*score.Score, error)
	DeleteScore(ctx context.Context, userID, scoreID string) (bool, error)
	ListFeed(ctx context.Context, userID string, limit int) ([]*score.FeedEntry, error)

	SaveDeviceToken(ctx context.Context, t *notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
}

var (
	_ contractStore = (*Memory)(nil)
	_ contractStore = (*Postgres)(nil)
)

func mustUser(t *testing.T, s contractStore, username string) *user.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &user.User{
		ClerkID:  "user_" + username,
		Email:    username + "@example.com",
		Name:     "Name " + username,
		Username: username,
	})
	require.NoError(t, err)
	return u
}

func befriend(t *testing.T, s contractStore, a, b *user.User) {
	t.Helper()
	ctx := context.Background()
	_, err := s.CreateRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = s.ResolveRequest(ctx, a.ID, b.ID, friendship.StatusAccepted)
	require.NoError(t, err)
}

func note(s string) *string { return &s }

func runContract(t *testing.T, newStore func(t *testing.T) contractStore) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")

		_, err := s.CreateUser(ctx, &user.User{ClerkID: "user_other", Email: "other@example.com", Username: "alice"})
		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

		again, err := s.CreateUser(ctx, &user.User{ClerkID: "user_alice", Email: "new@example.com", Name: "Alice", Username: "ignored"})
		require.NoError(t, err)
		assert.Equal(t, alice.ID, again.ID)
		assert.Equal(t, "alice", again.Username)
		assert.Equal(t, "new@example.com", again.Email)

		email, err := s.GetEmailByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", email)

		_, err = s.GetEmailByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, apperrors.ErrUsernameNotFound)

		byClerk, err := s.GetUserByClerkID(ctx, "user_alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byClerk.ID)

		_, err = s.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("update username", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		mustUser(t, s, "bob")

		_, err := s.UpdateUsername(ctx, alice.ID, "bob")
		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

		unchanged, err := s.GetUserByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", unchanged.Username)

		same, err := s.UpdateUsername(ctx, alice.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", same.Username)

		renamed, err := s.UpdateUsername(ctx, alice.ID, "alice_2")
		require.NoError(t, err)
		assert.Equal(t, "alice_2", renamed.Username)

		exists, err := s.UsernameExists(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("sync by clerk id", func(t *testing.T) {
		s := newStore(t)
		mustUser(t, s, "alice")

		u, err := s.UpdateUserByClerkID(ctx, "user_alice", "a@example.com", "Alice A")
		require.NoError(t, err)
		assert.Equal(t, "Alice A", u.Name)

		_, err = s.UpdateUserByClerkID(ctx, "user_ghost", "g@example.com", "Ghost")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("one request per unordered pair", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		none, err := s.FindRequestBetween(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Nil(t, none)

		fr, err := s.CreateRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, friendship.StatusPending, fr.Status)

		_, err = s.CreateRequest(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
		_, err = s.CreateRequest(ctx, bob.ID, alice.ID)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)

		found, err := s.FindRequestBetween(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, fr.ID, found.ID)
	})

	t.Run("request to unknown user", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")

		_, err := s.CreateRequest(ctx, alice.ID, uuid.NewString())
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("accept makes symmetric friendship", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		_, err := s.CreateRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)

		_, err = s.ResolveRequest(ctx, bob.ID, alice.ID, friendship.StatusAccepted)
		assert.ErrorIs(t, err, apperrors.ErrRequestNotFound, "wrong direction")

		fr, err := s.ResolveRequest(ctx, alice.ID, bob.ID, friendship.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, friendship.StatusAccepted, fr.Status)

		for _, pair := range [][2]string{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
			ok, err := s.AreFriends(ctx, pair[0], pair[1])
			require.NoError(t, err)
			assert.True(t, ok)
		}

		_, err = s.ResolveRequest(ctx, alice.ID, bob.ID, friendship.StatusDeclined)
		assert.ErrorIs(t, err, apperrors.ErrRequestNotFound, "already resolved")

		aliceFriends, err := s.ListFriends(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, aliceFriends, 1)
		assert.Equal(t, bob.ID, aliceFriends[0].ID)

		bobFriends, err := s.ListFriends(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobFriends, 1)
		assert.Equal(t, "alice", bobFriends[0].Username)
	})

	t.Run("decline is terminal", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		_, err := s.CreateRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		_, err = s.ResolveRequest(ctx, alice.ID, bob.ID, friendship.StatusDeclined)
		require.NoError(t, err)

		ok, err := s.AreFriends(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		pending, err := s.ListPendingRequests(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, pending)

		_, err = s.CreateRequest(ctx, bob.ID, alice.ID)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
		_, err = s.CreateRequest(ctx, alice.ID, bob.ID)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)

		existing, err := s.FindRequestBetween(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, existing)
		assert.Equal(t, friendship.StatusDeclined, existing.Status)
	})

	t.Run("pending newest first", func(t *testing.T) {
		s := newStore(t)
		bob := mustUser(t, s, "bob")
		alice := mustUser(t, s, "alice")
		carol := mustUser(t, s, "carol")

		_, err := s.CreateRequest(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		_, err = s.CreateRequest(ctx, carol.ID, bob.ID)
		require.NoError(t, err)

		pending, err := s.ListPendingRequests(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "carol", pending[0].Username)
		assert.Equal(t, "alice", pending[1].Username)
		assert.Equal(t, alice.ID, pending[1].SenderID)

		outgoing, err := s.ListPendingRequests(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, outgoing)
	})

	t.Run("friends newest first", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")
		carol := mustUser(t, s, "carol")

		befriend(t, s, alice, bob)
		befriend(t, s, carol, alice)

		friends, err := s.ListFriends(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, friends, 2)
		assert.Equal(t, carol.ID, friends[0].ID)
		assert.Equal(t, bob.ID, friends[1].ID)
	})

	t.Run("search", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		mustUser(t, s, "alicia")
		mustUser(t, s, "bob")
		for i := 0; i < 12; i++ {
			mustUser(t, s, fmt.Sprintf("zed%02d", i))
		}

		found, err := s.SearchUsers(ctx, "ALI", alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "alicia", found[0].Username)

		byName, err := s.SearchUsers(ctx, "name bob", alice.ID, 10)
		require.NoError(t, err)
		require.Len(t, byName, 1)

		wildcard, err := s.SearchUsers(ctx, "%", alice.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, wildcard)

		capped, err := s.SearchUsers(ctx, "zed", alice.ID, 10)
		require.NoError(t, err)
		assert.Len(t, capped, 10)
	})

	t.Run("one score per day", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")

		first, err := s.UpsertScore(ctx, alice.ID, 40, note("ok"), "2026-10-17")
		require.NoError(t, err)
		second, err := s.UpsertScore(ctx, alice.ID, 90, note("great"), "2026-10-17")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 90, second.Score)
		require.NotNil(t, second.Description)
		assert.Equal(t, "great", *second.Description)

		cleared, err := s.UpsertScore(ctx, alice.ID, 50, nil, "2026-10-17")
		require.NoError(t, err)
		assert.Nil(t, cleared.Description)

		scores, err := s.ListScores(ctx, alice.ID, 30)
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, "2026-10-17", scores[0].Date)
	})

	t.Run("history newest date first", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")

		for _, day := range []string{"2026-10-15", "2026-10-17", "2026-10-16"} {
			_, err := s.UpsertScore(ctx, alice.ID, 50, nil, day)
			require.NoError(t, err)
		}

		scores, err := s.ListScores(ctx, alice.ID, 2)
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.Equal(t, "2026-10-17", scores[0].Date)
		assert.Equal(t, "2026-10-16", scores[1].Date)
	})

	t.Run("delete only own", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		sc, err := s.UpsertScore(ctx, alice.ID, 70, nil, "2026-10-17")
		require.NoError(t, err)

		deleted, err := s.DeleteScore(ctx, bob.ID, sc.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = s.DeleteScore(ctx, alice.ID, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = s.DeleteScore(ctx, alice.ID, sc.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		scores, err := s.ListScores(ctx, alice.ID, 30)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("feed", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")
		carol := mustUser(t, s, "carol")
		dave := mustUser(t, s, "dave")

		befriend(t, s, alice, bob)
		befriend(t, s, carol, bob)

		_, err := s.UpsertScore(ctx, bob.ID, 10, nil, "2026-10-17")
		require.NoError(t, err)
		_, err = s.UpsertScore(ctx, alice.ID, 75, note("good day"), "2026-10-17")
		require.NoError(t, err)
		_, err = s.UpsertScore(ctx, dave.ID, 99, nil, "2026-10-17")
		require.NoError(t, err)
		_, err = s.UpsertScore(ctx, carol.ID, 40, nil, "2026-10-16")
		require.NoError(t, err)

		feed, err := s.ListFeed(ctx, bob.ID, 50)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, "carol", feed[0].UserUsername)
		assert.Equal(t, "alice", feed[1].UserUsername)
		assert.Equal(t, 75, feed[1].Score.Score)
		assert.Equal(t, alice.ID, feed[1].UserID)

		aliceFeed, err := s.ListFeed(ctx, alice.ID, 50)
		require.NoError(t, err)
		require.Len(t, aliceFeed, 1)
		assert.Equal(t, "bob", aliceFeed[0].UserUsername)

		limited, err := s.ListFeed(ctx, bob.ID, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})

	t.Run("device tokens", func(t *testing.T) {
		s := newStore(t)
		alice := mustUser(t, s, "alice")
		bob := mustUser(t, s, "bob")

		require.NoError(t, s.SaveDeviceToken(ctx, &notification.DeviceToken{Token: "tok-1", UserID: alice.ID, Platform: notification.PlatformAndroid}))
		require.NoError(t, s.SaveDeviceToken(ctx, &notification.DeviceToken{Token: "tok-1", UserID: bob.ID, Platform: notification.PlatformIOS}))

		aliceTokens, err := s.ListDeviceTokens(ctx, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, aliceTokens)

		bobTokens, err := s.ListDeviceTokens(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, bobTokens, 1)
		assert.Equal(t, notification.PlatformIOS, bobTokens[0].Platform)

		err = s.SaveDeviceToken(ctx, &notification.DeviceToken{Token: "tok-2", UserID: uuid.NewString(), Platform: notification.PlatformWeb})
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}
