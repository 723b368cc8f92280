package store

import (
	"context"
	"fmt"

	"scoredAPI/internal/apperrors"
	"scoredAPI/internal/notification"
)

// SaveDeviceToken registers token for userID. A token that moves to another
// account is reassigned.
func (s *Postgres) SaveDeviceToken(ctx context.Context, t *notification.DeviceToken) error {
	query := `
	INSERT INTO device_tokens (token, user_id, platform)
	VALUES ($1, $2, $3)
	ON CONFLICT (token) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		platform = EXCLUDED.platform,
		updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, t.Token, t.UserID, t.Platform); err != nil {
		if code, _ := pgError(err); code == foreignKeyViolation {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("failed to save device token: %w", err)
	}
	return nil
}

func (s *Postgres) ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
	SELECT token, user_id, platform, updated_at
	FROM device_tokens
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.UserID, &t.Platform, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
