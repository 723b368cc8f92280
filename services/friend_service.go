package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/friendship"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/metrics"
	"scoredAPI/internal/notification"
	"scoredAPI/internal/user"
)

// Notifier delivers a best-effort message to a user's devices.
type Notifier interface {
	NotifyUser(ctx context.Context, userID string, kind notification.NotificationType, title, body string, data map[string]any) error
}

type FriendService struct {
	friends  FriendStore
	users    UserStore
	notifier Notifier
}

func NewFriendService(friends FriendStore, users UserStore, notifier Notifier) *FriendService {
	return &FriendService{
		friends:  friends,
		users:    users,
		notifier: notifier,
	}
}

// SendRequest creates a pending request from senderID to receiverID. Any
// existing request between the pair, in either direction and with any status,
// blocks a new one.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID string) (string, error) {
	receiverID, err := s.sendRequest(ctx, senderID, receiverID)
	metrics.FriendRequests.WithLabelValues(friendship.ActionSend, metrics.Outcome(err)).Inc()
	if err != nil {
		return "", err
	}

	s.notify(ctx, receiverID, senderID, notification.NotificationFriendRequest, "New friend request", "%s sent you a friend request")
	return "Friend request sent", nil
}

// sendRequest returns the canonical receiver id.
func (s *FriendService) sendRequest(ctx context.Context, senderID, receiverID string) (string, error) {
	receiverID, ok := user.CanonicalID(receiverID)
	if !ok {
		return "", apperrors.ErrUserNotFound
	}
	if receiverID == senderID {
		return "", apperrors.ErrSelfRequest
	}

	if err := s.checkNoRequest(ctx, senderID, receiverID); err != nil {
		return "", err
	}

	_, err := s.friends.CreateRequest(ctx, senderID, receiverID)
	if errors.Is(err, apperrors.ErrDuplicateRequest) {
		// Lost a race with a concurrent request; report what now exists.
		if checkErr := s.checkNoRequest(ctx, senderID, receiverID); checkErr != nil {
			return "", checkErr
		}
	}
	return receiverID, err
}

func (s *FriendService) checkNoRequest(ctx context.Context, a, b string) error {
	existing, err := s.friends.FindRequestBetween(ctx, a, b)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if existing.Status == friendship.StatusAccepted {
		return apperrors.ErrAlreadyFriends
	}
	return apperrors.ErrDuplicateRequest
}

// RespondToRequest resolves the pending request originalSenderID sent to
// responderID. Accepting creates the friendship in the same store operation.
func (s *FriendService) RespondToRequest(ctx context.Context, responderID, originalSenderID string, decision friendship.Status) (string, error) {
	action := friendship.ActionDecline
	if decision == friendship.StatusAccepted {
		action = friendship.ActionAccept
	}

	originalSenderID, err := s.respond(ctx, responderID, originalSenderID, decision)
	metrics.FriendRequests.WithLabelValues(action, metrics.Outcome(err)).Inc()
	if err != nil {
		return "", err
	}

	if decision == friendship.StatusAccepted {
		s.notify(ctx, originalSenderID, responderID, notification.NotificationFriendAccepted, "Friend request accepted", "%s accepted your friend request")
		return "Friend request accepted", nil
	}
	return "Friend request declined", nil
}

func (s *FriendService) respond(ctx context.Context, responderID, originalSenderID string, decision friendship.Status) (string, error) {
	if !decision.IsDecision() {
		return "", apperrors.Validation("Invalid action")
	}
	originalSenderID, ok := user.CanonicalID(originalSenderID)
	if !ok {
		return "", apperrors.ErrRequestNotFound
	}
	_, err := s.friends.ResolveRequest(ctx, originalSenderID, responderID, decision)
	return originalSenderID, err
}

// AreFriends gates every cross-user score read.
func (s *FriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
	b, ok := user.CanonicalID(b)
	if !ok || a == b {
		return false, nil
	}
	return s.friends.AreFriends(ctx, a, b)
}

func (s *FriendService) ListPending(ctx context.Context, userID string) ([]*friendship.PendingRequest, error) {
	return s.friends.ListPendingRequests(ctx, userID)
}

func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]*friendship.Friend, error) {
	return s.friends.ListFriends(ctx, userID)
}

// SearchCandidates matches query against usernames and display names. Queries
// shorter than two characters return an empty list.
func (s *FriendService) SearchCandidates(ctx context.Context, query, excludeUserID string) ([]*user.Summary, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < friendship.MinSearchLength {
		return []*user.Summary{}, nil
	}
	return s.friends.SearchUsers(ctx, query, excludeUserID, friendship.MaxSearchResult)
}

// notify tells recipientID about something actorID did. Failures are logged
// and never change the outcome of the request.
func (s *FriendService) notify(ctx context.Context, recipientID, actorID string, kind notification.NotificationType, title, bodyFormat string) {
	if s.notifier == nil {
		return
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		logger.Warn("Skipping notification, actor lookup failed", "actor_id", actorID, "error", err)
		return
	}

	display := actor.Name
	if display == "" {
		display = actor.Username
	}

	body := fmt.Sprintf(bodyFormat, display)
	data := map[string]any{"actor_id": actor.ID, "actor_username": actor.Username}
	if err := s.notifier.NotifyUser(ctx, recipientID, kind, title, body, data); err != nil {
		logger.Warn("Notification failed", "recipient_id", recipientID, "type", kind, "error", err)
	}
}
