package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// CreateAuthSession records a login session token for a director.
func (s *Store) CreateAuthSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("session token: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetAuthSessionUser resolves a session token to its director, rejecting
// expired sessions.
func (s *Store) GetAuthSessionUser(ctx context.Context, token string, now time.Time) (*models.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash,
		       u.meetings_created, u.total_participants, u.total_responses,
		       u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2`

	user, err := s.scanUser(s.db.QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// DeleteAuthSession invalidates a session token. Deleting an unknown token
// is not an error.
func (s *Store) DeleteAuthSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredAuthSessions removes sessions that expired before now and
// reports how many were deleted.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return affected, nil
}
