package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxSummaryResponseCount bounds response_count in a summary entry. The
// session engine caps responses per question well below this; anything
// larger is the model inventing numbers.
const MaxSummaryResponseCount = 200

// FlexCount is an int that also unmarshals from a numeric JSON string.
// Language models drift between `3` and `"3"`; both are accepted.
type FlexCount int

func (c *FlexCount) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("response_count %q is not numeric", s)
		}
		*c = FlexCount(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = FlexCount(n)
	return nil
}

// QuestionAnalysis is the per-question slice of a summary: the question as
// asked, the model's synthesis of its responses, and how many responses it
// covered.
type QuestionAnalysis struct {
	Question      string    `json:"question"`
	Summary       string    `json:"summary"`
	ResponseCount FlexCount `json:"response_count"`
}

// SummaryBlob is the persisted meeting summary. The metadata fields are
// always reconstructed from the meeting row — never taken from the model —
// while QuestionsAnalysis and KeyTakeaways come from the model's JSON.
type SummaryBlob struct {
	MeetingTitle       string             `json:"meeting_title"`
	MeetingDescription string             `json:"meeting_description"`
	Date               string             `json:"date"`
	TimeCreated        string             `json:"time_created"`
	Author             string             `json:"author"`
	QuestionsAnalysis  []QuestionAnalysis `json:"questions_analysis"`
	KeyTakeaways       []string           `json:"key_takeaways"`
}

// Validate checks the blob against the export contract: all metadata
// non-empty, at least one analysis entry with non-empty question and
// summary and an in-range count, and at least one non-blank takeaway.
func (b *SummaryBlob) Validate() error {
	for name, v := range map[string]string{
		"meeting_title":       b.MeetingTitle,
		"meeting_description": b.MeetingDescription,
		"date":                b.Date,
		"time_created":        b.TimeCreated,
		"author":              b.Author,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("summary metadata field %s is empty", name)
		}
	}
	if len(b.QuestionsAnalysis) == 0 {
		return fmt.Errorf("summary has no questions_analysis entries")
	}
	for i, qa := range b.QuestionsAnalysis {
		if strings.TrimSpace(qa.Question) == "" {
			return fmt.Errorf("questions_analysis[%d]: question is empty", i)
		}
		if strings.TrimSpace(qa.Summary) == "" {
			return fmt.Errorf("questions_analysis[%d]: summary is empty", i)
		}
		if qa.ResponseCount < 0 || qa.ResponseCount > MaxSummaryResponseCount {
			return fmt.Errorf("questions_analysis[%d]: response_count %d out of range [0, %d]",
				i, qa.ResponseCount, MaxSummaryResponseCount)
		}
	}
	if len(b.KeyTakeaways) == 0 {
		return fmt.Errorf("summary has no key_takeaways")
	}
	for i, t := range b.KeyTakeaways {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("key_takeaways[%d] is empty", i)
		}
	}
	return nil
}
