package services

import (
	"context"

	"scoredAPI/internal/friendship"
	"scoredAPI/internal/notification"
	"scoredAPI/internal/score"
	"scoredAPI/internal/user"
)

// The store contracts the services depend on. internal/store provides a
// Postgres and an in-memory implementation of each.

type UserStore interface {
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error)
	GetEmailByUsername(ctx context.Context, username string) (string, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, userID, username string) (*user.User, error)
	UpdateUserByClerkID(ctx context.Context, clerkID, email, name string) (*user.User, error)
}

type FriendStore interface {
	FindRequestBetween(ctx context.Context, a, b string) (*friendship.FriendRequest, error)
	CreateRequest(ctx context.Context, senderID, receiverID string) (*friendship.FriendRequest, error)
	ResolveRequest(ctx context.Context, senderID, receiverID string, status friendship.Status) (*friendship.FriendRequest, error)
	AreFriends(ctx context.Context, a, b string) (bool, error)
	ListPendingRequests(ctx context.Context, userID string) ([]*friendship.PendingRequest, error)
	ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error)
	SearchUsers(ctx context.Context, q, excludeID string, limit int) ([]*user.Summary, error)
}

type ScoreStore interface {
	UpsertScore(ctx context.Context, userID string, value int, note *string, day string) (*score.Score, error)
	ListScores(ctx context.Context, userID string, limit int) ([]*score.Score, error)
	DeleteScore(ctx context.Context, userID, scoreID string) (bool, error)
	ListFeed(ctx context.Context, userID string, limit int) ([]*score.FeedEntry, error)
}

type DeviceStore interface {
	SaveDeviceToken(ctx context.Context, t *notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
}
