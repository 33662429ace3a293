package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────────────────
// HTTP Client Helpers
// ────────────────────────────────────────────────────────────

// RegisterDirector creates an account and returns the parsed response.
func (app *TestApp) RegisterDirector(t *testing.T, firstName, lastName, email, password string) map[string]any {
	t.Helper()
	body := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}
	return app.postJSON(t, "/api/auth/register", "", body, http.StatusCreated)
}

// Login authenticates and returns the issued session token.
func (app *TestApp) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp := app.postJSON(t, "/api/auth/login", "",
		map[string]any{"email": email, "password": password}, http.StatusOK)
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token, "login response missing token")
	return token
}

// RegisterAndLogin creates a throwaway director and returns a live session
// token plus the account email.
func (app *TestApp) RegisterAndLogin(t *testing.T) (token, email string) {
	t.Helper()
	email = fmt.Sprintf("director-%s@example.com", uuid.NewString()[:8])
	app.RegisterDirector(t, "Grace", "Hopper", email, "correct-horse-battery")
	return app.Login(t, email, "correct-horse-battery"), email
}

// CreateMeeting creates a meeting with questions and returns the parsed
// response (id, access_code, questions, ...).
func (app *TestApp) CreateMeeting(t *testing.T, token, title string, durationMinutes int, questions ...string) map[string]any {
	t.Helper()
	body := map[string]any{
		"title":            title,
		"description":      "Team feedback session",
		"duration_minutes": durationMinutes,
		"questions":        questions,
	}
	return app.postJSON(t, "/api/meetings", token, body, http.StatusCreated)
}

// ListMeetings calls GET /api/meetings and returns the meetings array.
func (app *TestApp) ListMeetings(t *testing.T, token string) []any {
	t.Helper()
	resp := app.getJSON(t, "/api/meetings", token, http.StatusOK)
	meetings, _ := resp["meetings"].([]any)
	return meetings
}

// Summarize calls the summarize endpoint and returns status and body.
func (app *TestApp) Summarize(t *testing.T, token, meetingID string) (int, map[string]any) {
	t.Helper()
	return app.request(t, http.MethodPost, "/api/"+meetingID+"/summarize/", token, nil)
}

// ExportSummary calls the export endpoint for the given format and returns
// status and body.
func (app *TestApp) ExportSummary(t *testing.T, token, meetingID, format string) (int, map[string]any) {
	t.Helper()
	return app.request(t, http.MethodPost, "/api/"+meetingID+"/export/", token,
		map[string]any{"type": format})
}

// Download fetches a download URL and returns the response body bytes.
func (app *TestApp) Download(t *testing.T, url string) []byte {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, "GET %s: unexpected status", url)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return data
}

// request performs one JSON request and returns the status code and the
// decoded body. A 204 or empty body decodes to nil.
func (app *TestApp) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, app.BaseURL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) == 0 {
		return resp.StatusCode, nil
	}
	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result), "%s %s: body %q", method, path, data)
	return resp.StatusCode, result
}

func (app *TestApp) postJSON(t *testing.T, path, token string, body any, expectedStatus int) map[string]any {
	t.Helper()
	status, result := app.request(t, http.MethodPost, path, token, body)
	require.Equal(t, expectedStatus, status, "POST %s: unexpected status (body: %v)", path, result)
	return result
}

func (app *TestApp) getJSON(t *testing.T, path, token string, expectedStatus int) map[string]any {
	t.Helper()
	status, result := app.request(t, http.MethodGet, path, token, nil)
	require.Equal(t, expectedStatus, status, "GET %s: unexpected status (body: %v)", path, result)
	return result
}

// ────────────────────────────────────────────────────────────
// WebSocket Helpers
// ────────────────────────────────────────────────────────────

// HostWSURL builds the host endpoint URL for a meeting.
func (app *TestApp) HostWSURL(meetingID, token string) string {
	return app.WSBase + "/ws/meeting/" + meetingID + "/host/?session=" + token
}

// ParticipantWSURL builds the participant endpoint URL for an access code.
func (app *TestApp) ParticipantWSURL(accessCode string) string {
	return app.WSBase + "/ws/meeting/" + accessCode + "/participant/"
}

// ConnectHost dials the host endpoint and waits for the greeting frame.
func (app *TestApp) ConnectHost(t *testing.T, meetingID, token string) *WSClient {
	t.Helper()
	ws, err := WSConnect(context.Background(), app.HostWSURL(meetingID, token))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	greeting, err := ws.WaitForEventType("start_meeting", 5*time.Second)
	require.NoError(t, err, "host greeting not received")
	require.NotNil(t, greeting)
	return ws
}

// JoinParticipant dials the participant endpoint and completes the join
// handshake under the requested display name.
func (app *TestApp) JoinParticipant(t *testing.T, accessCode, name string) *WSClient {
	t.Helper()
	ws, err := WSConnect(context.Background(), app.ParticipantWSURL(accessCode))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	require.NoError(t, ws.SendJSON(map[string]any{"type": "participant_joined", "name": name}))
	return ws
}

// WaitForLocked polls the registry until the meeting stops accepting joins.
func (app *TestApp) WaitForLocked(t *testing.T, accessCode string) {
	t.Helper()
	require.Eventually(t, func() bool {
		locked, err := app.Registry.IsLocked(context.Background(), accessCode)
		return err == nil && locked
	}, 5*time.Second, 10*time.Millisecond, "meeting %s should lock on start", accessCode)
}

// ────────────────────────────────────────────────────────────
// Shared Assertions
// ────────────────────────────────────────────────────────────

// meetingIDAndCode pulls the id and access_code out of a create response.
func meetingIDAndCode(t *testing.T, created map[string]any) (string, string) {
	t.Helper()
	id, _ := created["id"].(string)
	code, _ := created["access_code"].(string)
	require.NotEmpty(t, id, "create response missing id")
	require.Len(t, code, 8, "access code should be 8 digits")
	return id, code
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}
