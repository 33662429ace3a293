package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/models"
	"github.com/JBK2116/CollaBoard/test/util"
)

func repeatQuestions(n int) []string {
	questions := make([]string, n)
	for i := range questions {
		questions[i] = "Question?"
	}
	return questions
}

func TestCreateMeetingPersistsQuestions(t *testing.T) {
	store := util.SetupTestStore(t)
	svc := NewMeetingService(store)
	director := newDirector(t, store)
	ctx := context.Background()

	meeting, questions, err := svc.CreateMeeting(ctx, CreateMeetingInput{
		DirectorID:      director.ID,
		Title:           "  Sprint Retro  ",
		Description:     "What to keep, what to drop",
		DurationMinutes: 30,
		Questions:       []string{" What went well? ", "What should we stop doing?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sprint Retro", meeting.Title)
	assert.Regexp(t, `^\d{8}$`, meeting.AccessCode)
	require.Len(t, questions, 2)
	assert.Equal(t, "What went well?", questions[0].Description)
	assert.Equal(t, 1, questions[0].Position)
	assert.Equal(t, 2, questions[1].Position)

	fetched, fetchedQuestions, err := svc.GetMeetingWithQuestions(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, meeting.AccessCode, fetched.AccessCode)
	assert.Len(t, fetchedQuestions, 2)
}

func TestCreateMeetingBounds(t *testing.T) {
	store := util.SetupTestStore(t)
	svc := NewMeetingService(store)
	director := newDirector(t, store)
	ctx := context.Background()

	valid := func(mutate func(*CreateMeetingInput)) CreateMeetingInput {
		input := CreateMeetingInput{
			DirectorID:      director.ID,
			Title:           "Standup",
			Description:     "Daily",
			DurationMinutes: 15,
			Questions:       []string{"Any blockers?"},
		}
		if mutate != nil {
			mutate(&input)
		}
		return input
	}

	t.Run("boundary values accepted", func(t *testing.T) {
		for _, mutate := range []func(*CreateMeetingInput){
			func(in *CreateMeetingInput) { in.DurationMinutes = models.MinDurationMinutes },
			func(in *CreateMeetingInput) { in.DurationMinutes = models.MaxDurationMinutes },
			func(in *CreateMeetingInput) { in.Questions = nil },
			func(in *CreateMeetingInput) { in.Questions = repeatQuestions(models.MaxQuestionsPerMeeting) },
			func(in *CreateMeetingInput) { in.Title = strings.Repeat("t", models.MaxTitleLength) },
			func(in *CreateMeetingInput) { in.Description = strings.Repeat("d", models.MaxDescriptionLength) },
		} {
			_, _, err := svc.CreateMeeting(ctx, valid(mutate))
			require.NoError(t, err)
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*CreateMeetingInput)
			field  string
		}{
			{"blank title", func(in *CreateMeetingInput) { in.Title = "   " }, "title"},
			{"title too long", func(in *CreateMeetingInput) { in.Title = strings.Repeat("t", models.MaxTitleLength+1) }, "title"},
			{"blank description", func(in *CreateMeetingInput) { in.Description = "" }, "description"},
			{"description too long", func(in *CreateMeetingInput) { in.Description = strings.Repeat("d", models.MaxDescriptionLength+1) }, "description"},
			{"zero duration", func(in *CreateMeetingInput) { in.DurationMinutes = 0 }, "duration_minutes"},
			{"duration too long", func(in *CreateMeetingInput) { in.DurationMinutes = models.MaxDurationMinutes + 1 }, "duration_minutes"},
			{"too many questions", func(in *CreateMeetingInput) { in.Questions = repeatQuestions(models.MaxQuestionsPerMeeting + 1) }, "questions"},
			{"blank question", func(in *CreateMeetingInput) { in.Questions = []string{"ok?", "  "} }, "questions[1]"},
			{"question too long", func(in *CreateMeetingInput) { in.Questions = []string{strings.Repeat("q", models.MaxQuestionLength+1)} }, "questions[0]"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := svc.CreateMeeting(ctx, valid(tt.mutate))
				require.Error(t, err)
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.field, ve.Field)
			})
		}
	})
}

func TestCreateMeetingRetriesOnCodeCollision(t *testing.T) {
	store := util.SetupTestStore(t)
	director := newDirector(t, store)
	newMeeting(t, store, director.ID, "11111111", "Taken?")
	ctx := context.Background()

	svc := NewMeetingService(store)
	var calls int
	svc.generateCode = func() (string, error) {
		calls++
		if calls < 3 {
			return "11111111", nil
		}
		return "22222222", nil
	}

	meeting, _, err := svc.CreateMeeting(ctx, CreateMeetingInput{
		DirectorID:      director.ID,
		Title:           "Standup",
		Description:     "Daily",
		DurationMinutes: 15,
		Questions:       []string{"Any blockers?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "22222222", meeting.AccessCode)
	assert.Equal(t, 3, calls, "should retry until a free code comes up")
}

func TestCreateMeetingCodeExhaustion(t *testing.T) {
	store := util.SetupTestStore(t)
	director := newDirector(t, store)
	newMeeting(t, store, director.ID, "11111111", "Taken?")
	ctx := context.Background()

	svc := NewMeetingService(store)
	svc.generateCode = func() (string, error) { return "11111111", nil }

	_, _, err := svc.CreateMeeting(ctx, CreateMeetingInput{
		DirectorID:      director.ID,
		Title:           "Standup",
		Description:     "Daily",
		DurationMinutes: 15,
		Questions:       []string{"Any blockers?"},
	})
	assert.ErrorIs(t, err, ErrCodeExhaustion)

	meetings, err := svc.ListMeetings(ctx, director.ID)
	require.NoError(t, err)
	assert.Len(t, meetings, 1, "nothing new should be persisted after exhaustion")
}

func TestDeleteMeetingOwnership(t *testing.T) {
	store := util.SetupTestStore(t)
	svc := NewMeetingService(store)
	owner := newDirector(t, store)
	other := newDirector(t, store)
	meeting, _ := newMeeting(t, store, owner.ID, "33334444", "Q?")
	ctx := context.Background()

	err := svc.DeleteMeeting(ctx, meeting.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound, "someone else's meeting should look like it does not exist")

	require.NoError(t, svc.DeleteMeeting(ctx, meeting.ID, owner.ID))
	_, err = svc.GetMeetingByAccessCode(ctx, "33334444")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeMeetingClampsStats(t *testing.T) {
	store := util.SetupTestStore(t)
	svc := NewMeetingService(store)
	director := newDirector(t, store)
	meeting, _ := newMeeting(t, store, director.ID, "44445555", "Q?")
	ctx := context.Background()

	err := svc.FinalizeMeeting(ctx, meeting, EndStats{
		DurationSeconds:    5000,
		Participants:       2000,
		QuestionsPresented: 50,
		Responses:          12,
	})
	require.NoError(t, err)

	fetched, err := svc.GetMeetingByAccessCode(ctx, "44445555")
	require.NoError(t, err)
	assert.Equal(t, models.MaxDurationSeconds, fetched.DurationSecondsActual)
	assert.Equal(t, models.MaxParticipantsCount, fetched.ParticipantsCount)
	assert.Equal(t, models.MaxQuestionsPerMeeting, fetched.TotalQuestionsAsked)

	updated, err := store.GetUserByID(ctx, director.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MeetingsCreated)
	assert.Equal(t, models.MaxParticipantsCount, updated.TotalParticipants)
	assert.Equal(t, 12, updated.TotalResponses)
}

func TestGetMeetingNotFound(t *testing.T) {
	store := util.SetupTestStore(t)
	svc := NewMeetingService(store)
	ctx := context.Background()

	_, _, err := svc.GetMeetingWithQuestions(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetMeetingByAccessCode(ctx, "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
