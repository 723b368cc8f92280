package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/user"
)

const userColumns = `id, clerk_id, email, name, username, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Name,
		&u.Username,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// CreateUser inserts u, or refreshes email and name when the identity-provider
// id is already known. The stored username is never overwritten here.
func (s *Postgres) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
	INSERT INTO users (clerk_id, email, name, username)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = EXCLUDED.email,
		name = EXCLUDED.name,
		updated_at = NOW()
	RETURNING ` + userColumns

	created, err := scanUser(s.db.QueryRow(ctx, query, u.ClerkID, u.Email, u.Name, u.Username))
	if err != nil {
		if code, constraint := pgError(err); code == uniqueViolation {
			if constraint == "users_username_key" {
				return nil, apperrors.ErrUsernameTaken
			}
			return nil, apperrors.Wrap(err, apperrors.ErrCodeAlreadyExists, "User already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (s *Postgres) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, err
}

func (s *Postgres) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`
	u, err := scanUser(s.db.QueryRow(ctx, query, clerkID))
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to get user by clerk id: %w", err)
	}
	return u, err
}

func (s *Postgres) GetEmailByUsername(ctx context.Context, username string) (string, error) {
	var email string
	err := s.db.QueryRow(ctx, `SELECT email FROM users WHERE username = $1`, username).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrUsernameNotFound
		}
		return "", fmt.Errorf("failed to get email by username: %w", err)
	}
	return email, nil
}

func (s *Postgres) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (s *Postgres) UpdateUsername(ctx context.Context, userID, username string) (*user.User, error) {
	query := `
	UPDATE users SET username = $1, updated_at = NOW()
	WHERE id = $2
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, username, userID))
	if err != nil {
		if code, _ := pgError(err); code == uniqueViolation {
			return nil, apperrors.ErrUsernameTaken
		}
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update username: %w", err)
	}
	return u, nil
}

func (s *Postgres) UpdateUserByClerkID(ctx context.Context, clerkID, email, name string) (*user.User, error) {
	query := `
	UPDATE users SET email = $1, name = $2, updated_at = NOW()
	WHERE clerk_id = $3
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query, email, name, clerkID))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		if code, _ := pgError(err); code == uniqueViolation {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeAlreadyExists, "Email is already in use")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}
