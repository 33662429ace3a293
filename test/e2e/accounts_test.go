package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────────────────
// Accounts
// ────────────────────────────────────────────────────────────

func TestE2E_AccountLifecycle(t *testing.T) {
	app := NewTestApp(t)

	resp := app.RegisterDirector(t, "Grace", "Hopper", "grace@example.com", "correct-horse-battery")
	assert.Equal(t, "grace@example.com", resp["email"])
	assert.Equal(t, "Grace", resp["first_name"])
	assert.NotContains(t, resp, "password", "password material must never leave the server")

	token := app.Login(t, "grace@example.com", "correct-horse-battery")

	// The token works until logout, then the same token is dead.
	meetings := app.ListMeetings(t, token)
	assert.Empty(t, meetings)

	status, _ := app.request(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := app.request(t, http.MethodGet, "/api/meetings", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "authentication required", body["error"])
}

func TestE2E_RegisterRejections(t *testing.T) {
	app := NewTestApp(t)
	app.RegisterDirector(t, "Grace", "Hopper", "grace@example.com", "correct-horse-battery")

	t.Run("duplicate email", func(t *testing.T) {
		status, _ := app.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"first_name": "Another",
			"last_name":  "Grace",
			"email":      "grace@example.com",
			"password":   "different-password",
		})
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("missing fields", func(t *testing.T) {
		status, _ := app.request(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"email": "incomplete@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestE2E_LoginRejections(t *testing.T) {
	app := NewTestApp(t)
	app.RegisterDirector(t, "Grace", "Hopper", "grace@example.com", "correct-horse-battery")

	t.Run("wrong password", func(t *testing.T) {
		status, _ := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "grace@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown account", func(t *testing.T) {
		status, _ := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "nobody@example.com",
			"password": "correct-horse-battery",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// ────────────────────────────────────────────────────────────
// Meeting management
// ────────────────────────────────────────────────────────────

func TestE2E_MeetingManagement(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)

	first := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	second := app.CreateMeeting(t, token, "Planning", 30, "Top priority?", "Risks?")
	firstID, firstCode := meetingIDAndCode(t, first)
	_, secondCode := meetingIDAndCode(t, second)
	assert.NotEqual(t, firstCode, secondCode, "access codes must be unique")

	meetings := app.ListMeetings(t, token)
	require.Len(t, meetings, 2)

	// Another director sees none of them and cannot delete them either.
	otherToken, _ := app.RegisterAndLogin(t)
	assert.Empty(t, app.ListMeetings(t, otherToken))
	status, _ := app.request(t, http.MethodDelete, "/api/meetings/"+firstID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.request(t, http.MethodDelete, "/api/meetings/"+firstID, token, nil)
	require.Equal(t, http.StatusNoContent, status)
	require.Len(t, app.ListMeetings(t, token), 1)

	// Deleting again is a 404; the row is gone.
	status, _ = app.request(t, http.MethodDelete, "/api/meetings/"+firstID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestE2E_CreateMeetingValidation(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)

	longQuestions := make([]string, 21)
	for i := range longQuestions {
		longQuestions[i] = "Question?"
	}

	cases := []struct {
		name string
		body map[string]any
	}{
		{"duration too long", map[string]any{
			"title": "Marathon", "description": "d", "duration_minutes": 61,
			"questions": []string{"Q?"},
		}},
		{"duration zero", map[string]any{
			"title": "Instant", "description": "d", "duration_minutes": 0,
			"questions": []string{"Q?"},
		}},
		{"too many questions", map[string]any{
			"title": "Overload", "description": "d", "duration_minutes": 15,
			"questions": longQuestions,
		}},
		{"blank question", map[string]any{
			"title": "Blank", "description": "d", "duration_minutes": 15,
			"questions": []string{"   "},
		}},
		{"missing title", map[string]any{
			"description": "d", "duration_minutes": 15,
			"questions": []string{"Q?"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := app.request(t, http.MethodPost, "/api/meetings", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, status, "body: %v", body)
		})
	}

	assert.Empty(t, app.ListMeetings(t, token), "rejected meetings must not persist")
}

func TestE2E_UnauthenticatedRequestsRejected(t *testing.T) {
	app := NewTestApp(t)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/api/meetings"},
		{http.MethodGet, "/api/meetings"},
		{http.MethodPost, "/api/auth/logout"},
	}
	for _, p := range paths {
		status, _ := app.request(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", p.method, p.path)
	}

	status, _ := app.request(t, http.MethodGet, "/api/meetings", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
