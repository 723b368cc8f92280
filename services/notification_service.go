package services

import (
	"context"
	"fmt"
	"strings"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/notification"
)

type NotificationService struct {
	devices DeviceStore
	push    notification.PushProvider
}

func NewNotificationService(devices DeviceStore) *NotificationService {
	return &NotificationService{devices: devices}
}

// SetPushProvider enables delivery. Without a provider NotifyUser is a no-op.
func (s *NotificationService) SetPushProvider(p notification.PushProvider) {
	s.push = p
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.Validation("token is required")
	}
	p := notification.Platform(strings.ToLower(strings.TrimSpace(platform)))
	if !p.Valid() {
		return apperrors.Validation("Invalid platform")
	}

	return s.devices.SaveDeviceToken(ctx, &notification.DeviceToken{
		Token:    token,
		UserID:   userID,
		Platform: p,
	})
}

// NotifyUser pushes a message to every device userID registered.
func (s *NotificationService) NotifyUser(ctx context.Context, userID string, kind notification.NotificationType, title, body string, data map[string]any) error {
	if s.push == nil {
		return nil
	}

	tokens, err := s.devices.ListDeviceTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	payload := map[string]any{"type": string(kind)}
	for k, v := range data {
		payload[k] = v
	}

	if err := s.push.SendPush(ctx, tokens, title, body, payload); err != nil {
		return fmt.Errorf("push to %s: %w", userID, err)
	}

	logger.Debug("Notification sent", "user_id", userID, "type", kind, "devices", len(tokens))
	return nil
}
