package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/models"
)

// ResponseService is the single funnel for storing participant answers.
// Every submission path runs through SubmitAnswer so validation cannot be
// bypassed.
type ResponseService struct {
	store *database.Store
}

// NewResponseService creates a new ResponseService.
func NewResponseService(store *database.Store) *ResponseService {
	if store == nil {
		panic("NewResponseService: store must not be nil")
	}
	return &ResponseService{store: store}
}

// SubmitAnswer resolves the meeting and question, validates the answer
// text, and persists the response. Error mapping for the caller:
//   - ErrInvalidInput: a required field was empty
//   - ErrNotFound: no meeting for the code, or no such question in it
//   - ValidationError: the answer text failed validation
func (s *ResponseService) SubmitAnswer(ctx context.Context, accessCode, questionText, answerText string) error {
	if questionText == "" || answerText == "" {
		return fmt.Errorf("question and answer are required: %w", ErrInvalidInput)
	}

	meeting, err := s.store.GetMeetingByAccessCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("access code %s: %w", accessCode, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve meeting: %w", err)
	}

	question, err := s.store.GetQuestionByDescription(ctx, meeting.ID, questionText)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("question in meeting %s: %w", meeting.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to resolve question: %w", err)
	}

	trimmed := strings.TrimSpace(answerText)
	if trimmed == "" {
		return NewValidationError("answer", "must not be blank")
	}
	if len(trimmed) > models.MaxResponseLength {
		return NewValidationError("answer", fmt.Sprintf("must be at most %d characters", models.MaxResponseLength))
	}

	response := &models.Response{
		ID:           uuid.New(),
		MeetingID:    meeting.ID,
		QuestionID:   question.ID,
		ResponseText: trimmed,
	}
	if err := s.store.CreateResponse(ctx, response); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}
