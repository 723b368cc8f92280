package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"scoredAPI/internal/auth"
	"scoredAPI/internal/store"
	"scoredAPI/internal/user"
	"scoredAPI/services"
)

// fixedNow is 2026-10-17 12:00 UTC.
var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

var testWebhookKey = []byte("webhook-signing-key-for-tests")

type testServer struct {
	router   *mux.Router
	store    *store.Memory
	users    *services.UserService
	friends  *services.FriendService
	verifier *auth.HMACVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	m := store.NewMemory()
	users := services.NewUserService(m)
	notifications := services.NewNotificationService(m)
	friends := services.NewFriendService(m, m, notifications)
	scores := services.NewScoreService(m, friends, m, time.UTC).WithClock(func() time.Time { return fixedNow })
	verifier := auth.NewHMACVerifier("handler-test-secret")

	r, err := NewRouter(RouterDeps{
		UserService:         users,
		FriendService:       friends,
		ScoreService:        scores,
		NotificationService: notifications,
		Verifier:            verifier,
		DB:                  m,
		WebhookSecret:       "whsec_" + base64.StdEncoding.EncodeToString(testWebhookKey),
		MetricsUser:         "prom",
		MetricsPass:         "secret",
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	})
	require.NoError(t, err)

	return &testServer{router: r, store: m, users: users, friends: friends, verifier: verifier}
}

type session struct {
	user  *user.User
	token string
}

func (s *testServer) signup(t *testing.T, username string) *session {
	t.Helper()
	clerkID := "user_" + username
	u, err := s.users.CreateFromIdentity(context.Background(), &user.IdentityProfile{
		ClerkID:  clerkID,
		Email:    username + "@example.com",
		Name:     "Name " + username,
		Username: username,
	})
	require.NoError(t, err)
	return &session{user: u, token: s.token(t, clerkID)}
}

func (s *testServer) token(t *testing.T, clerkID string) string {
	t.Helper()
	tok, err := s.verifier.Issue(clerkID, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) befriend(t *testing.T, a, b *session) {
	t.Helper()
	ctx := context.Background()
	_, err := s.friends.SendRequest(ctx, a.user.ID, b.user.ID)
	require.NoError(t, err)
	_, err = s.friends.RespondToRequest(ctx, b.user.ID, a.user.ID, "accepted")
	require.NoError(t, err)
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}

func list(t *testing.T, rec *httptest.ResponseRecorder, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := decode(t, rec)[key].([]interface{})
	require.True(t, ok, "missing %q in %s", key, rec.Body.String())
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]interface{}))
	}
	return out
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func httptestRecorder(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}
