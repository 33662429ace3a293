package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

const userColumns = `id, first_name, last_name, email, password_hash,
	meetings_created, total_participants, total_responses, created_at, updated_at`

// CreateUser inserts a new director account. Returns ErrDuplicate when the
// email is already registered.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a director by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID fetches a director by primary key.
func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// IncrementUserCounters adds the given deltas to a director's lifetime
// meeting, participant, and response totals.
func (s *Store) IncrementUserCounters(ctx context.Context, id uuid.UUID, meetings, participants, responses int) error {
	query := `
		UPDATE users
		SET meetings_created = meetings_created + $2,
		    total_participants = total_participants + $3,
		    total_responses = total_responses + $4,
		    updated_at = now()
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, meetings, participants, responses)
	if err != nil {
		return fmt.Errorf("failed to increment user counters: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.MeetingsCreated, &user.TotalParticipants, &user.TotalResponses,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
