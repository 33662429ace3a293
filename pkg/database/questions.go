package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// CreateQuestions inserts a meeting's questions in a single transaction,
// assigning positions 1..N in the order given.
func (s *Store) CreateQuestions(ctx context.Context, meetingID uuid.UUID, descriptions []string) ([]*models.Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	questions := make([]*models.Question, 0, len(descriptions))
	for i, description := range descriptions {
		question := &models.Question{
			ID:          uuid.New(),
			MeetingID:   meetingID,
			Description: description,
			Position:    i + 1,
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, meeting_id, description, position) VALUES ($1, $2, $3, $4)`,
			question.ID, question.MeetingID, question.Description, question.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to create question %d: %w", question.Position, err)
		}
		questions = append(questions, question)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit questions: %w", err)
	}
	return questions, nil
}

// ListQuestionsByMeeting returns a meeting's questions in ascending
// position order.
func (s *Store) ListQuestionsByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, meeting_id, description, position FROM questions WHERE meeting_id = $1 ORDER BY position ASC`,
		meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var questions []*models.Question
	for rows.Next() {
		var question models.Question
		if err := rows.Scan(&question.ID, &question.MeetingID, &question.Description, &question.Position); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return questions, nil
}

// GetQuestionByDescription resolves a question within a meeting by its
// exact text. Live answer submissions identify questions this way.
func (s *Store) GetQuestionByDescription(ctx context.Context, meetingID uuid.UUID, description string) (*models.Question, error) {
	var question models.Question
	err := s.db.QueryRowContext(ctx,
		`SELECT id, meeting_id, description, position FROM questions WHERE meeting_id = $1 AND description = $2`,
		meetingID, description,
	).Scan(&question.ID, &question.MeetingID, &question.Description, &question.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}
