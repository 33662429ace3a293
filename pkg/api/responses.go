package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// userResponse is the public view of a director account.
type userResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// loginResponse carries the issued session token plus the account it
// belongs to.
type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// meetingResponse is the public view of a meeting. Questions are included
// when the endpoint loaded them, in position order.
type meetingResponse struct {
	ID              uuid.UUID `json:"id"`
	AccessCode      string    `json:"access_code"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`

	DurationSecondsActual int `json:"duration_seconds_actual"`
	TotalQuestionsAsked   int `json:"total_questions_asked"`
	ParticipantsCount     int `json:"participants_count"`

	Questions []string  `json:"questions,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toMeetingResponse(m *models.Meeting, questions []*models.Question) meetingResponse {
	resp := meetingResponse{
		ID:                    m.ID,
		AccessCode:            m.AccessCode,
		Title:                 m.Title,
		Description:           m.Description,
		DurationMinutes:       m.DurationMinutes,
		DurationSecondsActual: m.DurationSecondsActual,
		TotalQuestionsAsked:   m.TotalQuestionsAsked,
		ParticipantsCount:     m.ParticipantsCount,
		CreatedAt:             m.CreatedAt,
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, q.Description)
	}
	return resp
}
