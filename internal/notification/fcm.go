package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"scoredAPI/internal/logger"
)

// ErrNoCredentials means neither inline nor file credentials were configured.
var ErrNoCredentials = errors.New("no firebase credentials configured")

type FCMService struct {
	client *messaging.Client
}

// NewFCMService builds the push provider from base64-encoded service account
// JSON, falling back to a credentials file on disk.
func NewFCMService(ctx context.Context, encodedCreds, credentialsFile string) (*FCMService, error) {
	opt, err := credentialsOption(encodedCreds, credentialsFile)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client}, nil
}

func credentialsOption(encodedCreds, credentialsFile string) (option.ClientOption, error) {
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		logger.Info("FCM: initializing from inline service account")
		return option.WithCredentialsJSON(decoded), nil
	}

	if credentialsFile == "" {
		return nil, ErrNoCredentials
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("firebase credentials file %s: %w", credentialsFile, err)
	}
	logger.Info("FCM: initializing from credentials file", "path", credentialsFile)
	return option.WithCredentialsFile(credentialsFile), nil
}

// SendPush sends one message per token. The call fails only when every
// delivery failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error {
	if len(tokens) == 0 {
		return nil
	}

	successCount := 0
	failureCount := 0

	for _, t := range tokens {
		if _, err := s.client.Send(ctx, buildMessage(t, title, body, data)); err != nil {
			logger.Warn("FCM: send failed", "platform", t.Platform, "error", err)
			failureCount++
			continue
		}
		successCount++
	}

	logger.Debug("FCM: push sent", "sent", successCount, "failed", failureCount)

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d push notifications failed", failureCount)
	}
	return nil
}

func buildMessage(t DeviceToken, title, body string, data map[string]any) *messaging.Message {
	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	msg := &messaging.Message{
		Token: t.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: stringData,
	}

	switch t.Platform {
	case PlatformIOS:
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	case PlatformWeb:
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
			},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return msg
}
