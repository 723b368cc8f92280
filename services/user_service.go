package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/logger"
	"scoredAPI/internal/user"
	"scoredAPI/internal/validation"
)

const (
	maxNameLength       = 100
	usernameAttempts    = 5
	fallbackUsername    = "user"
	usernameSuffixChars = 6
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return s.users.GetUserByClerkID(ctx, clerkID)
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*user.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// GetEmailByUsername backs username-based sign in, so it is the one lookup
// that works without a session.
func (s *UserService) GetEmailByUsername(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperrors.Validation("Username required")
	}
	return s.users.GetEmailByUsername(ctx, username)
}

// ChangeUsername trims and validates newUsername before writing it. A name
// held by another user fails with ErrUsernameTaken and leaves the store as is.
func (s *UserService) ChangeUsername(ctx context.Context, userID, newUsername string) (*user.User, error) {
	username := strings.TrimSpace(newUsername)
	if username == "" {
		return nil, apperrors.Validation("Valid username required")
	}
	if !validation.ValidUsername(username) {
		return nil, apperrors.ErrInvalidUsername
	}

	u, err := s.users.UpdateUsername(ctx, userID, username)
	if err != nil {
		return nil, err
	}

	logger.Info("Username changed", "user_id", userID, "username", username)
	return u, nil
}

// CreateFromIdentity stores a user announced by the identity provider. The
// username is derived from the provider's username, email or name and made
// unique with a random suffix when needed. Known accounts are refreshed.
func (s *UserService) CreateFromIdentity(ctx context.Context, p *user.IdentityProfile) (*user.User, error) {
	if p.ClerkID == "" || p.Email == "" {
		return nil, apperrors.Validation("Identity id and email are required")
	}

	_, err := s.users.GetUserByClerkID(ctx, p.ClerkID)
	if err == nil {
		return s.SyncFromIdentity(ctx, p)
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	name := validation.CleanText(p.Name, maxNameLength)
	base := baseUsername(p)

	for attempt := 0; attempt < usernameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = withSuffix(base)
		}

		taken, err := s.users.UsernameExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		u, err := s.users.CreateUser(ctx, &user.User{
			ClerkID:  p.ClerkID,
			Email:    p.Email,
			Name:     name,
			Username: candidate,
		})
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		logger.Info("User created from identity provider", "user_id", u.ID, "username", u.Username)
		return u, nil
	}

	return nil, fmt.Errorf("could not allocate a unique username for %s", p.ClerkID)
}

// SyncFromIdentity refreshes email and display name for a known account.
func (s *UserService) SyncFromIdentity(ctx context.Context, p *user.IdentityProfile) (*user.User, error) {
	name := validation.CleanText(p.Name, maxNameLength)
	return s.users.UpdateUserByClerkID(ctx, p.ClerkID, p.Email, name)
}

func baseUsername(p *user.IdentityProfile) string {
	if validation.ValidUsername(p.Username) {
		return p.Username
	}
	for _, raw := range []string{p.Username, p.Email, p.Name} {
		if candidate := validation.UsernameFrom(raw); candidate != "" {
			return candidate
		}
	}
	return fallbackUsername
}

func withSuffix(base string) string {
	suffix := "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:usernameSuffixChars]
	if max := 20 - len(suffix); len(base) > max {
		base = base[:max]
	}
	return base + suffix
}
