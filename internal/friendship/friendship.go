package friendship

import (
	"time"

	"scoredAPI/internal/user"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// IsDecision reports whether s is a valid answer to a pending request.
func (s Status) IsDecision() bool {
	return s == StatusAccepted || s == StatusDeclined
}

type FriendRequest struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PendingRequest is an incoming request joined with the sender's public profile.
type PendingRequest struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
}

// Friend is the counterpart of a friendship plus when it was formed.
type Friend struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ActionSend    = "send"
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

type ActionRequest struct {
	Action       string `json:"action" validate:"required,oneof=send accept decline"`
	TargetUserID string `json:"targetUserId" validate:"required,uuid"`
}

type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SearchResponse struct {
	Users []*user.Summary `json:"users"`
}

type PendingResponse struct {
	Requests []*PendingRequest `json:"requests"`
}

type FriendsResponse struct {
	Friends []*Friend `json:"friends"`
}

const (
	MinSearchLength = 2
	MaxSearchResult = 10
)
