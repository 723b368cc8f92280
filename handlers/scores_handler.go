package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/export"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
	"scoredAPI/internal/validation"
	"scoredAPI/services"
)

type ScoresHandler struct {
	userService  *services.UserService
	scoreService *services.ScoreService
}

func NewScoresHandler(userService *services.UserService, scoreService *services.ScoreService) *ScoresHandler {
	return &ScoresHandler{
		userService:  userService,
		scoreService: scoreService,
	}
}

// List returns the history of userId. The caller may read their own history
// or a friend's.
func (h *ScoresHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "User ID required")
		return
	}
	limit := score.ParseLimit(r.URL.Query().Get("limit"), score.DefaultHistoryLimit, score.MaxHistoryLimit)

	if !user.SameID(userID, me.ID) {
		resp, err := h.scoreService.ListFriendScores(ctx, me.ID, userID, limit)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, score.ListResponse{Scores: resp.Scores})
		return
	}

	scores, err := h.scoreService.ListOwnScores(ctx, me.ID, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, score.ListResponse{Scores: scores})
}

// Upsert records today's score for the caller.
func (h *ScoresHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	var req score.UpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Valid userId and score (0-100) required")
		return
	}
	if err := validation.Struct(&req); err != nil || !score.ValidValue(*req.Score) {
		respondWithError(w, http.StatusBadRequest, "Valid userId and score (0-100) required")
		return
	}
	if !user.SameID(req.UserID, me.ID) {
		respondWithAppError(w, r, apperrors.ErrForbidden)
		return
	}

	saved, err := h.scoreService.UpsertTodayScore(ctx, me.ID, *req.Score, req.Description)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	logger.Info("Score saved", "user_id", me.ID, "date", saved.Date, "score", saved.Score)
	respondWithJSON(w, http.StatusOK, score.UpsertResponse{Success: true, Score: saved})
}

func (h *ScoresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	scoreID := r.URL.Query().Get("id")
	userID := r.URL.Query().Get("userId")
	if scoreID == "" || userID == "" {
		respondWithError(w, http.StatusBadRequest, "Score ID and User ID required")
		return
	}
	if !user.SameID(userID, me.ID) {
		respondWithAppError(w, r, apperrors.ErrScoreNotFound)
		return
	}

	if err := h.scoreService.DeleteScore(ctx, me.ID, scoreID); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Export streams the caller's full history as an Excel workbook.
func (h *ScoresHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	scores, err := h.scoreService.ListOwnScores(ctx, me.ID, score.MaxHistoryLimit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	f, err := export.Scores(scores)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer f.Close()

	filename := export.Filename(me.Username, h.scoreService.Today())
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := f.WriteTo(w); err != nil {
		logger.Error("Failed to stream export", "user_id", me.ID, "error", err)
	}
}
