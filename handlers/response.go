package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/user"
	"scoredAPI/middleware"
	"scoredAPI/services"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError answers with the status and message carried by err.
// Anything unexpected is logged and reported as a bare 500.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.HTTPStatus(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondWithError(w, code, apperrors.PublicMessage(err))
}

// decodeJSON reads a JSON body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body")
	}
	return nil
}

// currentUser resolves the session subject to the stored account. It writes
// the error response itself and returns nil when there is none.
func currentUser(ctx context.Context, w http.ResponseWriter, r *http.Request, users *services.UserService) *user.User {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil
	}

	u, err := users.GetUserByClerkID(ctx, clerkID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		respondWithError(w, http.StatusNotFound, "User not found")
		return nil
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return nil
	}
	return u
}
