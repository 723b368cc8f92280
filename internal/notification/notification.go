package notification

import (
	"context"
	"time"
)

type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformAndroid, PlatformIOS, PlatformWeb:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
)

type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Platform  Platform  `json:"platform"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PushProvider delivers one message to a set of device tokens.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []DeviceToken, title, body string, data map[string]any) error
}
