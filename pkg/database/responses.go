package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// CreateResponse stores a participant's answer to a question.
func (s *Store) CreateResponse(ctx context.Context, response *models.Response) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO responses (id, meeting_id, question_id, response_text)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		response.ID, response.MeetingID, response.QuestionID, response.ResponseText,
	).Scan(&response.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	return nil
}

// ListResponsesByMeeting returns every response recorded for a meeting in
// submission order.
func (s *Store) ListResponsesByMeeting(ctx context.Context, meetingID uuid.UUID) ([]*models.Response, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, meeting_id, question_id, response_text, created_at
		 FROM responses WHERE meeting_id = $1 ORDER BY created_at ASC`,
		meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var responses []*models.Response
	for rows.Next() {
		var response models.Response
		err := rows.Scan(&response.ID, &response.MeetingID, &response.QuestionID,
			&response.ResponseText, &response.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		responses = append(responses, &response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}
	return responses, nil
}
