package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/models"
)

// newDirector inserts a user row directly. Registration behavior has its
// own tests; hashing a password here would only slow everything else down.
func newDirector(t *testing.T, store *database.Store) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        fmt.Sprintf("director-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

// newMeeting persists a meeting and its questions directly through the store.
func newMeeting(t *testing.T, store *database.Store, directorID uuid.UUID, accessCode string, questionTexts ...string) (*models.Meeting, []*models.Question) {
	t.Helper()
	meeting := &models.Meeting{
		ID:              uuid.New(),
		AccessCode:      accessCode,
		DirectorID:      directorID,
		Title:           "Weekly Sync",
		Description:     "Team check-in",
		DurationMinutes: 15,
	}
	require.NoError(t, store.CreateMeeting(context.Background(), meeting))
	questions, err := store.CreateQuestions(context.Background(), meeting.ID, questionTexts)
	require.NoError(t, err)
	return meeting, questions
}

// scriptedLLM returns a canned response or error and records what it was
// prompted with.
type scriptedLLM struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
}

func (s *scriptedLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}
