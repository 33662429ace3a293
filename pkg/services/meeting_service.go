package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/models"
)

// codeRetryLimit bounds how many fresh access codes are tried when
// creation keeps hitting the unique constraint.
const codeRetryLimit = 5

// CreateMeetingInput contains the domain-level data needed to create a
// meeting with its questions.
type CreateMeetingInput struct {
	DirectorID      uuid.UUID
	Title           string
	Description     string
	DurationMinutes int
	Questions       []string
}

// EndStats carries the host-task counters persisted when a meeting ends.
type EndStats struct {
	DurationSeconds    int
	Participants       int
	QuestionsPresented int
	Responses          int
}

// MeetingService handles meeting creation, lookup, and end-of-meeting
// bookkeeping.
type MeetingService struct {
	store *database.Store

	// generateCode produces candidate access codes; replaced in tests to
	// force collisions.
	generateCode func() (string, error)
}

// NewMeetingService creates a new MeetingService.
func NewMeetingService(store *database.Store) *MeetingService {
	if store == nil {
		panic("NewMeetingService: store must not be nil")
	}
	return &MeetingService{
		store:        store,
		generateCode: generateAccessCode,
	}
}

// CreateMeeting validates the input, allocates a unique access code, and
// persists the meeting with its questions. Access-code collisions are
// retried with fresh codes up to codeRetryLimit times before giving up
// with ErrCodeExhaustion.
func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*models.Meeting, []*models.Question, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > models.MaxTitleLength {
		return nil, nil, NewValidationError("title", fmt.Sprintf("must be 1-%d characters", models.MaxTitleLength))
	}
	description := strings.TrimSpace(input.Description)
	if description == "" || len(description) > models.MaxDescriptionLength {
		return nil, nil, NewValidationError("description", fmt.Sprintf("must be 1-%d characters", models.MaxDescriptionLength))
	}
	if input.DurationMinutes < models.MinDurationMinutes || input.DurationMinutes > models.MaxDurationMinutes {
		return nil, nil, NewValidationError("duration_minutes",
			fmt.Sprintf("must be between %d and %d", models.MinDurationMinutes, models.MaxDurationMinutes))
	}
	if len(input.Questions) > models.MaxQuestionsPerMeeting {
		return nil, nil, NewValidationError("questions",
			fmt.Sprintf("at most %d questions allowed", models.MaxQuestionsPerMeeting))
	}
	questions := make([]string, 0, len(input.Questions))
	for i, q := range input.Questions {
		trimmed := strings.TrimSpace(q)
		if trimmed == "" || len(trimmed) > models.MaxQuestionLength {
			return nil, nil, NewValidationError(fmt.Sprintf("questions[%d]", i),
				fmt.Sprintf("must be 1-%d characters", models.MaxQuestionLength))
		}
		questions = append(questions, trimmed)
	}

	meeting := &models.Meeting{
		DirectorID:      input.DirectorID,
		Title:           title,
		Description:     description,
		DurationMinutes: input.DurationMinutes,
	}
	for attempt := 1; ; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate access code: %w", err)
		}
		meeting.ID = uuid.New()
		meeting.AccessCode = code

		err = s.store.CreateMeeting(ctx, meeting)
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrAccessCodeConflict) {
			return nil, nil, fmt.Errorf("failed to create meeting: %w", err)
		}
		if attempt >= codeRetryLimit {
			return nil, nil, fmt.Errorf("gave up after %d attempts: %w", attempt, ErrCodeExhaustion)
		}
		slog.Warn("Access code collision, retrying with a fresh code",
			"attempt", attempt, "access_code", code)
	}

	created, err := s.store.CreateQuestions(ctx, meeting.ID, questions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create questions: %w", err)
	}
	return meeting, created, nil
}

// GetMeetingWithQuestions fetches a meeting and its ordered questions.
func (s *MeetingService) GetMeetingWithQuestions(ctx context.Context, meetingID uuid.UUID) (*models.Meeting, []*models.Question, error) {
	meeting, questions, err := s.store.GetMeetingWithQuestions(ctx, meetingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to fetch meeting: %w", err)
	}
	return meeting, questions, nil
}

// GetMeetingByAccessCode fetches a meeting by its join code.
func (s *MeetingService) GetMeetingByAccessCode(ctx context.Context, code string) (*models.Meeting, error) {
	meeting, err := s.store.GetMeetingByAccessCode(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("access code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch meeting: %w", err)
	}
	return meeting, nil
}

// ListMeetings returns the director's meetings, newest first.
func (s *MeetingService) ListMeetings(ctx context.Context, directorID uuid.UUID) ([]*models.Meeting, error) {
	meetings, err := s.store.ListMeetingsByDirector(ctx, directorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting owned by the director.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID, directorID uuid.UUID) error {
	err := s.store.DeleteMeeting(ctx, meetingID, directorID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return nil
}

// FinalizeMeeting persists end-of-meeting statistics and rolls them into
// the director's lifetime counters. Out-of-range counter values are
// clamped to the schema bounds rather than rejected: the meeting is
// already over and partial stats beat none.
func (s *MeetingService) FinalizeMeeting(ctx context.Context, meeting *models.Meeting, stats EndStats) error {
	duration := clamp(stats.DurationSeconds, 0, models.MaxDurationSeconds)
	participants := clamp(stats.Participants, 0, models.MaxParticipantsCount)
	questionsPresented := clamp(stats.QuestionsPresented, 0, models.MaxQuestionsPerMeeting)

	if err := s.store.SetMeetingStats(ctx, meeting.ID, duration, participants, questionsPresented); err != nil {
		return fmt.Errorf("failed to persist meeting stats: %w", err)
	}
	if err := s.store.IncrementUserCounters(ctx, meeting.DirectorID, 1, participants, stats.Responses); err != nil {
		return fmt.Errorf("failed to update director counters: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// generateAccessCode returns 8 uniformly random digits from a
// cryptographic source.
func generateAccessCode() (string, error) {
	var b strings.Builder
	b.Grow(models.AccessCodeLength)
	for i := 0; i < models.AccessCodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
