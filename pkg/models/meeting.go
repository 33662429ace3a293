package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Field bounds enforced at creation time and again by the store schema.
const (
	MaxTitleLength         = 40
	MaxDescriptionLength   = 300
	MaxQuestionLength      = 300
	MaxResponseLength      = 500
	MinDurationMinutes     = 1
	MaxDurationMinutes     = 60
	MaxQuestionsPerMeeting = 20

	// Caps for the stats written once when a meeting ends.
	MaxParticipantsCount = 1000
	MaxDurationSeconds   = 3600

	AccessCodeLength = 8
)

// Meeting is one scheduled session owned by a director. The access code is
// what participants type to join; it is unique among meetings that still
// hold a row, not across all of history.
type Meeting struct {
	ID          uuid.UUID `json:"id"`
	AccessCode  string    `json:"access_code"`
	DirectorID  uuid.UUID `json:"director_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	DurationMinutes int `json:"duration_minutes"`

	// Written exactly once by the end-of-meeting sequence.
	DurationSecondsActual int `json:"duration_seconds_actual"`
	TotalQuestionsAsked   int `json:"total_questions_asked"`
	ParticipantsCount     int `json:"participants_count"`

	// Summary is the persisted SummaryBlob as raw JSON; empty until the
	// summarization pipeline has run.
	Summary json.RawMessage `json:"summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasSummary reports whether a non-empty summary blob has been persisted.
// NULL, empty, and "{}" all count as absent.
func (m *Meeting) HasSummary() bool {
	switch string(m.Summary) {
	case "", "null", "{}":
		return false
	}
	return true
}

// Question is one prompt within a meeting, ordered by Position (1-based,
// unique per meeting).
type Question struct {
	ID          uuid.UUID `json:"id"`
	MeetingID   uuid.UUID `json:"meeting_id"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
}

// Response is one anonymous answer to a question.
type Response struct {
	ID           uuid.UUID `json:"id"`
	MeetingID    uuid.UUID `json:"meeting_id"`
	QuestionID   uuid.UUID `json:"question_id"`
	ResponseText string    `json:"response_text"`
	CreatedAt    time.Time `json:"created_at"`
}
