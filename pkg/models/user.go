// Package models defines the domain types shared by the store, the session
// engine, and the API layer.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered director account. Participants are anonymous and have
// no user record.
type User struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`

	// Lifetime aggregates, bumped once per ended meeting.
	MeetingsCreated   int `json:"meetings_created"`
	TotalParticipants int `json:"total_participants"`
	TotalResponses    int `json:"total_responses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns "First Last" with surrounding whitespace trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail lowercases and trims an email address so the unique
// constraint on users.email cannot be dodged by case or padding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
