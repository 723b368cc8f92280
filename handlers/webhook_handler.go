package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	svix "github.com/svix/svix-webhooks/go"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/user"
	"scoredAPI/services"
)

const maxWebhookBody = int64(1 << 20)

type WebhookHandler struct {
	userService *services.UserService
	webhook     *svix.Webhook
}

// NewWebhookHandler takes the Clerk signing secret ("whsec_..."). An empty
// secret disables signature checks; config refuses that outside development.
func NewWebhookHandler(userService *services.UserService, signingSecret string) (*WebhookHandler, error) {
	h := &WebhookHandler{userService: userService}
	if signingSecret == "" {
		return h, nil
	}

	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	h.webhook = wh
	return h, nil
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		logger.Warn("Rejected webhook", "error", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event user.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	logger.Info("Received webhook event", "type", event.Type)

	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event.Data)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event.Data)
	case "user.deleted":
		// Accounts are kept; the identity provider owns deletion.
	default:
		logger.Debug("Unhandled webhook event type", "type", event.Type)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		logger.Error("Error processing webhook", "type", event.Type, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var userData user.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid user payload")
	}

	u, err := h.userService.CreateFromIdentity(ctx, userData.Profile())
	if err != nil {
		return err
	}

	logger.Info("Created user from webhook", "user_id", u.ID, "username", u.Username)
	return nil
}

func (h *WebhookHandler) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	var userData user.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid user payload")
	}

	profile := userData.Profile()
	_, err := h.userService.SyncFromIdentity(ctx, profile)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		// user.created was missed; create the account now.
		_, err = h.userService.CreateFromIdentity(ctx, profile)
	}
	return err
}

// verifySignature checks the svix-id, svix-timestamp and svix-signature
// headers Clerk sends, including the five minute timestamp window.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	if h.webhook == nil {
		return nil
	}
	return h.webhook.Verify(body, header)
}
