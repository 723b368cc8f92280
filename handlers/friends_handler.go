package handlers

import (
	"context"
	"net/http"
	"time"

	"scoredAPI/internal/friendship"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/score"
	"scoredAPI/internal/validation"
	"scoredAPI/services"
)

type FriendsHandler struct {
	userService   *services.UserService
	friendService *services.FriendService
	scoreService  *services.ScoreService
}

func NewFriendsHandler(userService *services.UserService, friendService *services.FriendService, scoreService *services.ScoreService) *FriendsHandler {
	return &FriendsHandler{
		userService:   userService,
		friendService: friendService,
		scoreService:  scoreService,
	}
}

// Get serves every friend read, selected by the action query parameter.
func (h *FriendsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	query := r.URL.Query()
	switch query.Get("action") {
	case "search":
		users, err := h.friendService.SearchCandidates(ctx, query.Get("q"), me.ID)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, friendship.SearchResponse{Users: users})

	case "pending":
		requests, err := h.friendService.ListPending(ctx, me.ID)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, friendship.PendingResponse{Requests: requests})

	case "friends":
		friends, err := h.friendService.ListFriends(ctx, me.ID)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, friendship.FriendsResponse{Friends: friends})

	case "feed":
		limit := score.ParseLimit(query.Get("limit"), score.DefaultFeedLimit, score.MaxFeedLimit)
		feed, err := h.scoreService.ListFeed(ctx, me.ID, limit)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, score.FeedResponse{Scores: feed})

	case "friend-scores":
		friendID := query.Get("friendId")
		if friendID == "" {
			respondWithError(w, http.StatusBadRequest, "Friend ID required")
			return
		}
		limit := score.ParseLimit(query.Get("limit"), score.DefaultHistoryLimit, score.MaxHistoryLimit)
		resp, err := h.scoreService.ListFriendScores(ctx, me.ID, friendID, limit)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, resp)

	default:
		respondWithError(w, http.StatusBadRequest, "Invalid action")
	}
}

// Post sends, accepts or declines a friend request.
func (h *FriendsHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	var req friendship.ActionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var (
		message string
		err     error
	)
	switch req.Action {
	case friendship.ActionSend:
		message, err = h.friendService.SendRequest(ctx, me.ID, req.TargetUserID)
	case friendship.ActionAccept:
		message, err = h.friendService.RespondToRequest(ctx, me.ID, req.TargetUserID, friendship.StatusAccepted)
	case friendship.ActionDecline:
		message, err = h.friendService.RespondToRequest(ctx, me.ID, req.TargetUserID, friendship.StatusDeclined)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	logger.Info("Friend action", "action", req.Action, "user_id", me.ID, "target_user_id", req.TargetUserID)
	respondWithJSON(w, http.StatusOK, friendship.ActionResponse{Success: true, Message: message})
}
