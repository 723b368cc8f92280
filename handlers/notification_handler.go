package handlers

import (
	"context"
	"net/http"
	"time"

	"scoredAPI/internal/notification"
	"scoredAPI/internal/validation"
	"scoredAPI/services"
)

type NotificationHandler struct {
	userService         *services.UserService
	notificationService *services.NotificationService
}

func NewNotificationHandler(userService *services.UserService, notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		userService:         userService,
		notificationService: notificationService,
	}
}

// POST /notifications/register-device
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	me := currentUser(ctx, w, r, h.userService)
	if me == nil {
		return
	}

	var req notification.RegisterDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, me.ID, req.Token, req.Platform); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, notification.RegisterDeviceResponse{Success: true})
}
