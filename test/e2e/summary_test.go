package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JBK2116/CollaBoard/pkg/models"
)

// seedResponse records an answer for a question directly, standing in for
// a live session when only the summarization surface is under test.
func (app *TestApp) seedResponse(t *testing.T, meetingID, question, answer string) {
	t.Helper()
	ctx := context.Background()
	q, err := app.Store.GetQuestionByDescription(ctx, mustUUID(t, meetingID), question)
	require.NoError(t, err)
	require.NoError(t, app.Store.CreateResponse(ctx, &models.Response{
		ID:           uuid.New(),
		MeetingID:    mustUUID(t, meetingID),
		QuestionID:   q.ID,
		ResponseText: answer,
	}))
}

// storedSummary fetches and decodes the persisted summary blob.
func (app *TestApp) storedSummary(t *testing.T, meetingID string) *models.SummaryBlob {
	t.Helper()
	meeting, err := app.Store.GetMeetingByID(context.Background(), mustUUID(t, meetingID))
	require.NoError(t, err)
	require.True(t, meeting.HasSummary(), "no summary persisted for meeting %s", meetingID)

	var blob models.SummaryBlob
	require.NoError(t, json.Unmarshal(meeting.Summary, &blob))
	return &blob
}

// TestE2E_SummarizeWithUnansweredQuestion summarizes a meeting where one
// question never got a response: the provider still sees an entry for it
// (the placeholder), and the persisted blob keeps meeting question order
// with a zero count.
func TestE2E_SummarizeWithUnansweredQuestion(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?", "Blockers?")
	meetingID, _ := meetingIDAndCode(t, created)

	app.seedResponse(t, meetingID, "What went well?", "shipped the importer")

	app.LLM.AddText(AnalysisText([]AnalysisEntry{
		{Question: "What went well?", Summary: "The importer shipped.", ResponseCount: 1},
		{Question: "Blockers?", Summary: "No feedback was collected for this question.", ResponseCount: 0},
	}, "Celebrate the importer launch", "Probe for blockers next time"))

	status, body := app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status, "summarize failed: %v", body)

	prompt := app.LLM.LastPrompt()
	require.NotNil(t, prompt)
	assert.Contains(t, prompt.User, "Question 2: Blockers?\n- No responses received for this question")
	assert.NotContains(t, prompt.User, "Question 1: What went well?\n- No responses received")

	blob := app.storedSummary(t, meetingID)
	require.Len(t, blob.QuestionsAnalysis, 2)
	assert.Equal(t, "What went well?", blob.QuestionsAnalysis[0].Question)
	assert.Equal(t, "Blockers?", blob.QuestionsAnalysis[1].Question)
	assert.Equal(t, models.FlexCount(1), blob.QuestionsAnalysis[0].ResponseCount)
	assert.Equal(t, models.FlexCount(0), blob.QuestionsAnalysis[1].ResponseCount)
	assert.Equal(t, "Sprint Retro", blob.MeetingTitle)
	assert.Equal(t, "Grace Hopper", blob.Author)
	assert.NotEmpty(t, blob.Date)
	assert.NotEmpty(t, blob.TimeCreated)
}

// TestE2E_SummaryMetadataComesFromRecords feeds the provider a response
// that tries to override the meeting metadata. The persisted blob carries
// the real title and author; model output only ever contributes the
// analysis arrays.
func TestE2E_SummaryMetadataComesFromRecords(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	meetingID, _ := meetingIDAndCode(t, created)

	app.LLM.AddText(`{
		"meeting_title": "HACKED",
		"author": "Mallory",
		"date": "01 January 1970",
		"questions_analysis": [
			{"question": "What went well?", "summary": "Nothing of note.", "response_count": "0"}
		],
		"key_takeaways": ["Collect more feedback"]
	}`)

	status, body := app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status, "summarize failed: %v", body)

	blob := app.storedSummary(t, meetingID)
	assert.Equal(t, "Sprint Retro", blob.MeetingTitle)
	assert.Equal(t, "Grace Hopper", blob.Author)
	assert.NotEqual(t, "01 January 1970", blob.Date)
	// String counts are tolerated; they are how some models emit numbers.
	assert.Equal(t, models.FlexCount(0), blob.QuestionsAnalysis[0].ResponseCount)
}

// TestE2E_SummarizeToleratesProseWrappedJSON accepts a response where the
// model wrapped the JSON object in chatter and a code fence.
func TestE2E_SummarizeToleratesProseWrappedJSON(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	meetingID, _ := meetingIDAndCode(t, created)

	analysis := AnalysisText([]AnalysisEntry{
		{Question: "What went well?", Summary: "Quiet sprint, nothing stood out.", ResponseCount: 0},
	}, "Ask sharper questions")
	app.LLM.AddText("Here is the analysis you asked for:\n```json\n" + analysis + "\n```\nLet me know if you need more.")

	status, body := app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status, "summarize failed: %v", body)
	assert.Len(t, app.storedSummary(t, meetingID).QuestionsAnalysis, 1)
}

// TestE2E_SummarizeFailures runs the refusals of the summarize surface.
// Every failure leaves the meeting without a summary.
func TestE2E_SummarizeFailures(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	meetingID, _ := meetingIDAndCode(t, created)

	assertNoSummary := func(t *testing.T) {
		t.Helper()
		meeting, err := app.Store.GetMeetingByID(context.Background(), mustUUID(t, meetingID))
		require.NoError(t, err)
		assert.False(t, meeting.HasSummary(), "failed summarization must not persist")
	}

	t.Run("provider error", func(t *testing.T) {
		app.LLM.AddError(fmt.Errorf("model overloaded"))
		status, body := app.Summarize(t, token, meetingID)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "error", body["type"])
		assertNoSummary(t)
	})

	t.Run("no JSON in response", func(t *testing.T) {
		app.LLM.AddText("I could not produce an analysis, sorry.")
		status, body := app.Summarize(t, token, meetingID)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "error", body["type"])
		assertNoSummary(t)
	})

	t.Run("analysis for the wrong question", func(t *testing.T) {
		app.LLM.AddText(AnalysisText([]AnalysisEntry{
			{Question: "A question nobody asked?", Summary: "Made up.", ResponseCount: 3},
		}, "Takeaway"))
		status, body := app.Summarize(t, token, meetingID)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "error", body["type"])
		assertNoSummary(t)
	})

	t.Run("meeting of another director", func(t *testing.T) {
		otherToken, _ := app.RegisterAndLogin(t)
		status, body := app.Summarize(t, otherToken, meetingID)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "error", body["type"])
	})

	t.Run("malformed meeting id", func(t *testing.T) {
		status, body := app.Summarize(t, token, "not-a-uuid")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "error", body["type"])
	})

	t.Run("unauthenticated", func(t *testing.T) {
		status, _ := app.Summarize(t, "", meetingID)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// TestE2E_ExportGates runs the refusals of the export surface.
func TestE2E_ExportGates(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	meetingID, _ := meetingIDAndCode(t, created)

	t.Run("no summary yet", func(t *testing.T) {
		status, body := app.ExportSummary(t, token, meetingID, "pdf")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "error", body["type"])
	})

	// A summary exists from here on.
	app.LLM.AddText(AnalysisText([]AnalysisEntry{
		{Question: "What went well?", Summary: "Steady sprint.", ResponseCount: 0},
	}, "Keep the cadence"))
	status, body := app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status, "summarize failed: %v", body)

	t.Run("unsupported format", func(t *testing.T) {
		status, body := app.ExportSummary(t, token, meetingID, "txt")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "error", body["type"])
	})

	t.Run("empty body", func(t *testing.T) {
		status, body := app.request(t, http.MethodPost, "/api/"+meetingID+"/export/", token, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "error", body["type"])
	})

	t.Run("meeting of another director", func(t *testing.T) {
		otherToken, _ := app.RegisterAndLogin(t)
		status, body := app.ExportSummary(t, otherToken, meetingID, "pdf")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "error", body["type"])
	})
}

// TestE2E_DownloadGates verifies the download endpoint only serves files
// the exporter produced, by exact filename shape.
func TestE2E_DownloadGates(t *testing.T) {
	app := NewTestApp(t)

	for _, filename := range []string{
		"meeting_" + uuid.NewString() + ".pdf", // valid shape, never exported
		"meeting_not-a-uuid.pdf",
		"meeting_" + uuid.NewString() + ".txt",
		"..%2F..%2Fetc%2Fpasswd",
		"secrets.pdf",
	} {
		status, _ := app.request(t, http.MethodGet, "/download/"+filename, "", nil)
		assert.Equal(t, http.StatusNotFound, status, "filename %q should not be served", filename)
	}
}

// TestE2E_ReExportAfterNewResponses re-summarizes after more feedback
// arrives and re-exports: the document reflects the fresh summary.
func TestE2E_ReExportAfterNewResponses(t *testing.T) {
	app := NewTestApp(t)
	token, _ := app.RegisterAndLogin(t)
	created := app.CreateMeeting(t, token, "Sprint Retro", 15, "What went well?")
	meetingID, _ := meetingIDAndCode(t, created)

	app.LLM.AddText(AnalysisText([]AnalysisEntry{
		{Question: "What went well?", Summary: "No feedback yet.", ResponseCount: 0},
	}, "Collect feedback"))
	status, _ := app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status)

	_, body := app.ExportSummary(t, token, meetingID, "pdf")
	firstExport := app.Download(t, body["download_url"].(string))

	app.seedResponse(t, meetingID, "What went well?", "the importer shipped")
	app.LLM.AddText(AnalysisText([]AnalysisEntry{
		{Question: "What went well?", Summary: "The importer shipped to production.", ResponseCount: 1},
	}, "Celebrate the launch"))
	status, _ = app.Summarize(t, token, meetingID)
	require.Equal(t, http.StatusOK, status)

	_, body = app.ExportSummary(t, token, meetingID, "pdf")
	secondExport := app.Download(t, body["download_url"].(string))

	assert.NotEqual(t, firstExport, secondExport,
		"re-export after a new summary must produce an updated document")
}
