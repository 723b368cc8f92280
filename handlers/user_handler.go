package handlers

import (
	"context"
	"net/http"
	"time"

	"scoredAPI/internal/user"
	"scoredAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// EmailByUsername lets the sign-in form accept a username. It is the only
// endpoint that runs without a session.
func (h *UserHandler) EmailByUsername(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.EmailByUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Username required")
		return
	}

	email, err := h.userService.GetEmailByUsername(ctx, req.Username)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user.EmailByUsernameResponse{Email: email})
}

func (h *UserHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	var req user.UpdateUsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Valid username required")
		return
	}

	updated, err := h.userService.ChangeUsername(ctx, me.ID, req.NewUsername)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user.UpdateUsernameResponse{Success: true, Username: updated.Username})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	respondWithJSON(w, http.StatusOK, me)
}
