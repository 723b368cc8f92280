package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func friendAction(action, target string) map[string]string {
	return map[string]string{"action": action, "targetUserId": target}
}

func TestFriendRequestLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/v1/friends", alice.token, friendAction("send", bob.user.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Friend request sent", decode(t, rec)["message"])

	// Either direction is blocked while a request exists.
	rec = s.do(t, http.MethodPost, "/api/v1/friends", alice.token, friendAction("send", bob.user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/friends", bob.token, friendAction("send", alice.user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=pending", bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := list(t, rec, "requests")
	require.Len(t, pending, 1)
	assert.Equal(t, alice.user.ID, pending[0]["sender_id"])
	assert.Equal(t, "alice", pending[0]["username"])
	assert.Equal(t, "Name alice", pending[0]["name"])

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=pending", alice.token, nil)
	assert.Empty(t, list(t, rec, "requests"))

	// Only the receiver can accept.
	rec = s.do(t, http.MethodPost, "/api/v1/friends", alice.token, friendAction("accept", bob.user.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/friends", bob.token, friendAction("accept", alice.user.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Friend request accepted", decode(t, rec)["message"])

	for _, sess := range []*session{alice, bob} {
		rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friends", sess.token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		friends := list(t, rec, "friends")
		require.Len(t, friends, 1)
		assert.NotEqual(t, sess.user.ID, friends[0]["id"])
		assert.NotContains(t, friends[0], "email")
	}

	rec = s.do(t, http.MethodPost, "/api/v1/friends", alice.token, friendAction("send", bob.user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You are already friends", errorOf(t, rec))

	rec = s.do(t, http.MethodPost, "/api/v1/friends", bob.token, friendAction("decline", alice.user.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFriendDecline(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/v1/friends", alice.token, friendAction("send", bob.user.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/friends", bob.token, friendAction("decline", alice.user.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Friend request declined", decode(t, rec)["message"])

	ok, err := s.store.AreFriends(context.Background(), alice.user.ID, bob.user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// A declined pair stays closed.
	rec = s.do(t, http.MethodPost, "/api/v1/friends", bob.token, friendAction("send", alice.user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFriendPostValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")

	tests := []struct {
		name   string
		body   interface{}
		status int
		msg    string
	}{
		{"self", friendAction("send", alice.user.ID), http.StatusBadRequest, "Cannot send friend request to yourself"},
		{"invalid action", friendAction("poke", alice.user.ID), http.StatusBadRequest, "Invalid action"},
		{"missing target", map[string]string{"action": "send"}, http.StatusBadRequest, ""},
		{"unknown user", friendAction("send", uuid.NewString()), http.StatusNotFound, "User not found"},
		{"no request to accept", friendAction("accept", uuid.NewString()), http.StatusNotFound, "Friend request not found"},
		{"malformed body", "not json", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/friends", alice.token, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errorOf(t, rec))
			}
		})
	}
}

func TestFriendSearch(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	s.signup(t, "alicia")
	s.signup(t, "bob")

	rec := s.do(t, http.MethodGet, "/api/v1/friends?action=search&q=ali", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users := list(t, rec, "users")
	require.Len(t, users, 1)
	assert.Equal(t, "alicia", users[0]["username"])
	assert.NotContains(t, users[0], "email")

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=search&q=a", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, list(t, rec, "users"))
}

func TestFriendGetActions(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	carol := s.signup(t, "carol")

	rec := s.do(t, http.MethodGet, "/api/v1/friends?action=dance", alice.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action", errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/friends", alice.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friend-scores", alice.token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Friend ID required", errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friend-scores&friendId="+carol.user.ID, alice.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Not friends with this user", errorOf(t, rec))

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friend-scores&friendId=not-a-uuid", alice.token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeedAndFriendScores(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	carol := s.signup(t, "carol")
	s.befriend(t, alice, bob)

	for _, post := range []struct {
		sess  *session
		value int
	}{{alice, 10}, {bob, 80}, {carol, 55}} {
		rec := s.do(t, http.MethodPost, "/api/v1/scores", post.sess.token, map[string]interface{}{
			"userId": post.sess.user.ID,
			"score":  post.value,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/v1/friends?action=feed", alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := list(t, rec, "scores")
	require.Len(t, feed, 1)
	assert.Equal(t, bob.user.ID, feed[0]["user_id"])
	assert.Equal(t, float64(80), feed[0]["score"])
	assert.Equal(t, "bob", feed[0]["user_username"])
	assert.Equal(t, "Name bob", feed[0]["user_name"])
	assert.Equal(t, "high", feed[0]["band"])
	assert.Equal(t, "Today", feed[0]["date_label"])

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=feed", carol.token, nil)
	assert.Empty(t, list(t, rec, "scores"))

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friend-scores&friendId="+bob.user.ID, alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	friend := body["friend"].(map[string]interface{})
	assert.Equal(t, "bob", friend["username"])
	assert.NotContains(t, friend, "email")
	scores := body["scores"].([]interface{})
	require.Len(t, scores, 1)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["count"])
}

func TestFriendScoresAcceptUppercaseIDs(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")
	s.befriend(t, alice, bob)

	rec := s.do(t, http.MethodPost, "/api/v1/scores", bob.token, map[string]interface{}{
		"userId": strings.ToUpper(bob.user.ID),
		"score":  64,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/friends?action=friend-scores&friendId="+strings.ToUpper(bob.user.ID), alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, list(t, rec, "scores"), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/scores?userId="+strings.ToUpper(bob.user.ID), alice.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, list(t, rec, "scores"), 1)

	rec = s.do(t, http.MethodGet, "/api/v1/scores?userId="+strings.ToUpper(bob.user.ID), bob.token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	own := list(t, rec, "scores")
	require.Len(t, own, 1)

	id := strings.ToUpper(own[0]["id"].(string))
	rec = s.do(t, http.MethodDelete, "/api/v1/scores?id="+id+"&userId="+strings.ToUpper(bob.user.ID), bob.token, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
