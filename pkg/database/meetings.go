package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

const meetingColumns = `id, access_code, director_id, title, description,
	duration_minutes, duration_seconds_actual, total_questions_asked,
	participants_count, summary, created_at, updated_at`

// CreateMeeting inserts a new meeting. Returns ErrAccessCodeConflict when
// the access code is already taken so the caller can retry with a fresh one.
func (s *Store) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	query := `
		INSERT INTO meetings (id, access_code, director_id, title, description, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query,
		meeting.ID, meeting.AccessCode, meeting.DirectorID,
		meeting.Title, meeting.Description, meeting.DurationMinutes,
	).Scan(&meeting.CreatedAt, &meeting.UpdatedAt)
	if err != nil {
		if uniqueConstraint(err) == "meetings_access_code_key" {
			return fmt.Errorf("code %s: %w", meeting.AccessCode, ErrAccessCodeConflict)
		}
		if uniqueConstraint(err) != "" {
			return fmt.Errorf("meeting %s: %w", meeting.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

// GetMeetingByID fetches a meeting by primary key.
func (s *Store) GetMeetingByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = $1`
	return scanMeeting(s.db.QueryRowContext(ctx, query, id))
}

// GetMeetingByAccessCode fetches a meeting by its join code.
func (s *Store) GetMeetingByAccessCode(ctx context.Context, code string) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE access_code = $1`
	return scanMeeting(s.db.QueryRowContext(ctx, query, code))
}

// GetMeetingWithQuestions fetches a meeting along with its questions in
// ascending position order.
func (s *Store) GetMeetingWithQuestions(ctx context.Context, id uuid.UUID) (*models.Meeting, []*models.Question, error) {
	meeting, err := s.GetMeetingByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.ListQuestionsByMeeting(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return meeting, questions, nil
}

// ListMeetingsByDirector returns all meetings owned by a director, newest
// first.
func (s *Store) ListMeetingsByDirector(ctx context.Context, directorID uuid.UUID) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE director_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, directorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting owned by the given director. Questions
// and responses cascade. Returns ErrNotFound when no such meeting exists
// for that owner.
func (s *Store) DeleteMeeting(ctx context.Context, id, directorID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM meetings WHERE id = $1 AND director_id = $2`, id, directorID)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetMeetingStats records the final live-session statistics after a
// meeting ends.
func (s *Store) SetMeetingStats(ctx context.Context, id uuid.UUID, durationSeconds, participants, questionsAsked int) error {
	query := `
		UPDATE meetings
		SET duration_seconds_actual = $2,
		    participants_count = $3,
		    total_questions_asked = $4,
		    updated_at = now()
		WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, durationSeconds, participants, questionsAsked)
	if err != nil {
		return fmt.Errorf("failed to set meeting stats: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetMeetingSummary stores the generated summary document for a meeting.
func (s *Store) SetMeetingSummary(ctx context.Context, id uuid.UUID, summary json.RawMessage) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE meetings SET summary = $2, updated_at = now() WHERE id = $1`, id, summary)
	if err != nil {
		return fmt.Errorf("failed to set meeting summary: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*models.Meeting, error) {
	var (
		meeting models.Meeting
		summary []byte
	)
	err := row.Scan(
		&meeting.ID, &meeting.AccessCode, &meeting.DirectorID,
		&meeting.Title, &meeting.Description,
		&meeting.DurationMinutes, &meeting.DurationSecondsActual,
		&meeting.TotalQuestionsAsked, &meeting.ParticipantsCount,
		&summary, &meeting.CreatedAt, &meeting.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan meeting: %w", err)
	}
	if len(summary) > 0 {
		meeting.Summary = json.RawMessage(summary)
	}
	return &meeting, nil
}
