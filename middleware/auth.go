package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"scoredAPI/internal/auth"
	"scoredAPI/internal/logger"
)

type contextKey string

const ClerkIDKey contextKey = "clerkID"

// sessionCookie is where Clerk keeps the session token for same-site requests.
const sessionCookie = "__session"

// SessionMiddleware verifies the session token and stores the identity-provider
// subject in the request context. Requests without a valid session get 401.
func SessionMiddleware(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := sessionToken(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			subject, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("Token verification failed", "error", err)
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ClerkIDKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			return "", false
		}
		return token, true
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// GetClerkID extracts the identity-provider subject from context
func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok && clerkID != ""
}

// WithClerkID returns ctx carrying clerkID, as SessionMiddleware would set it.
func WithClerkID(ctx context.Context, clerkID string) context.Context {
	return context.WithValue(ctx, ClerkIDKey, clerkID)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
