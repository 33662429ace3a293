package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/llm"
	"github.com/JBK2116/CollaBoard/pkg/models"
)

// noResponsesPlaceholder stands in for a question nobody answered so the
// model still produces an analysis entry for it.
const noResponsesPlaceholder = "No responses received for this question"

// summaryTimeZone is the zone meeting timestamps are rendered in.
const summaryTimeZone = "America/Toronto"

const summarySystemPrompt = `You are an assistant that analyzes meeting feedback.
You will receive a meeting's questions and the raw participant responses to each question.
Respond with a single JSON object and nothing else, using exactly this schema:
{
  "questions_analysis": [
    {"question": "<the question text, verbatim>", "summary": "<2-4 sentence synthesis of its responses>", "response_count": <number of responses>}
  ],
  "key_takeaways": ["<actionable takeaway>", ...]
}
Include one questions_analysis entry per question, in the order given, repeating each question verbatim.
Where the responses are the placeholder "` + noResponsesPlaceholder + `", note the lack of feedback and use a response_count of 0.
Provide 3-5 key takeaways. Do not include any other fields.`

// llmAnalysis is the subset of the provider response the orchestrator
// accepts. Anything else the model returns is ignored, never persisted.
type llmAnalysis struct {
	QuestionsAnalysis []models.QuestionAnalysis `json:"questions_analysis"`
	KeyTakeaways      []string                  `json:"key_takeaways"`
}

// SummaryService orchestrates meeting summarization: it gathers the
// meeting's questions and responses, prompts the model, validates the
// analysis, and persists the resulting summary blob.
type SummaryService struct {
	store    *database.Store
	provider llm.Client
	loc      *time.Location
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(store *database.Store, provider llm.Client) *SummaryService {
	if store == nil {
		panic("NewSummaryService: store must not be nil")
	}
	if provider == nil {
		panic("NewSummaryService: provider must not be nil")
	}
	loc, err := time.LoadLocation(summaryTimeZone)
	if err != nil {
		slog.Warn("Failed to load summary time zone, falling back to UTC",
			"zone", summaryTimeZone, "error", err)
		loc = time.UTC
	}
	return &SummaryService{store: store, provider: provider, loc: loc}
}

// Summarize generates and persists the summary blob for a meeting.
// Provider failures, timeouts, and schema deviations all surface as
// ErrSummarization; nothing partial is persisted.
func (s *SummaryService) Summarize(ctx context.Context, meetingID uuid.UUID) error {
	meeting, questions, err := s.store.GetMeetingWithQuestions(ctx, meetingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
		}
		return fmt.Errorf("failed to fetch meeting: %w", err)
	}
	if len(questions) == 0 {
		return fmt.Errorf("meeting %s has no questions: %w", meetingID, ErrSummarization)
	}

	director, err := s.store.GetUserByID(ctx, meeting.DirectorID)
	if err != nil {
		return fmt.Errorf("failed to fetch director: %w", err)
	}

	responsesByQuestion, err := s.collectResponses(ctx, meetingID, questions)
	if err != nil {
		return err
	}

	raw, err := s.provider.Generate(ctx, summarySystemPrompt, buildUserPrompt(meeting, questions, responsesByQuestion))
	if err != nil {
		return fmt.Errorf("provider call failed: %w: %v", ErrSummarization, err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	ordered, err := alignAnalysis(questions, analysis.QuestionsAnalysis)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	// Metadata comes exclusively from our own records; the model only
	// contributes the analysis and takeaway arrays.
	createdAt := meeting.CreatedAt.In(s.loc)
	blob := models.SummaryBlob{
		MeetingTitle:       meeting.Title,
		MeetingDescription: meeting.Description,
		Date:               createdAt.Format("02 January 2006"),
		TimeCreated:        createdAt.Format("15:04"),
		Author:             director.FullName(),
		QuestionsAnalysis:  ordered,
		KeyTakeaways:       analysis.KeyTakeaways,
	}
	if err := blob.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := s.store.SetMeetingSummary(ctx, meetingID, data); err != nil {
		return fmt.Errorf("failed to persist summary: %w", err)
	}

	slog.Info("Meeting summarized",
		"meeting_id", meetingID, "questions", len(questions), "takeaways", len(blob.KeyTakeaways))
	return nil
}

// collectResponses groups response texts by question, preserving meeting
// question order and substituting the placeholder for unanswered ones.
func (s *SummaryService) collectResponses(ctx context.Context, meetingID uuid.UUID, questions []*models.Question) (map[uuid.UUID][]string, error) {
	responses, err := s.store.ListResponsesByMeeting(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses: %w", err)
	}

	grouped := make(map[uuid.UUID][]string, len(questions))
	for _, response := range responses {
		grouped[response.QuestionID] = append(grouped[response.QuestionID], response.ResponseText)
	}
	for _, question := range questions {
		if len(grouped[question.ID]) == 0 {
			grouped[question.ID] = []string{noResponsesPlaceholder}
		}
	}
	return grouped, nil
}

func buildUserPrompt(meeting *models.Meeting, questions []*models.Question, responses map[uuid.UUID][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting: %s\n", meeting.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", meeting.Description)
	for i, question := range questions {
		fmt.Fprintf(&b, "Question %d: %s\n", i+1, question.Description)
		for _, text := range responses[question.ID] {
			fmt.Fprintf(&b, "- %s\n", text)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parseAnalysis decodes the provider output. Models occasionally wrap the
// object in prose or a code fence, so parsing starts at the first '{' and
// ends at the last '}'. Unknown fields are ignored; only the two analysis
// arrays are ever read.
func parseAnalysis(raw string) (*llmAnalysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var analysis llmAnalysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %v", err)
	}
	return &analysis, nil
}

// alignAnalysis matches analysis entries to meeting questions by exact
// trimmed text and returns them in meeting question order. Any missing,
// surplus, or unmatched entry fails the whole summarization.
func alignAnalysis(questions []*models.Question, entries []models.QuestionAnalysis) ([]models.QuestionAnalysis, error) {
	if len(entries) != len(questions) {
		return nil, fmt.Errorf("expected %d analysis entries, got %d", len(questions), len(entries))
	}

	byText := make(map[string]models.QuestionAnalysis, len(entries))
	for _, entry := range entries {
		key := strings.TrimSpace(entry.Question)
		if _, dup := byText[key]; dup {
			return nil, fmt.Errorf("duplicate analysis entry for question %q", key)
		}
		byText[key] = entry
	}

	ordered := make([]models.QuestionAnalysis, 0, len(questions))
	for _, question := range questions {
		entry, ok := byText[strings.TrimSpace(question.Description)]
		if !ok {
			return nil, fmt.Errorf("no analysis entry for question %q", question.Description)
		}
		entry.Question = question.Description
		ordered = append(ordered, entry)
	}
	return ordered, nil
}
