package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// LLMScriptEntry defines a single scripted provider response.
type LLMScriptEntry struct {
	Text string // Returned verbatim from Generate()
	Err  error  // Returned instead of text when set
}

// PromptPair captures one Generate() call for later assertions.
type PromptPair struct {
	System string
	User   string
}

// ScriptedLLMClient implements llm.Client with a queue of canned
// responses, consumed in call order. Running past the script fails the
// call rather than hanging the summarization.
type ScriptedLLMClient struct {
	mu       sync.Mutex
	entries  []LLMScriptEntry
	index    int
	captured []PromptPair
}

// NewScriptedLLMClient creates an empty ScriptedLLMClient.
func NewScriptedLLMClient() *ScriptedLLMClient {
	return &ScriptedLLMClient{}
}

// AddText queues a text response.
func (c *ScriptedLLMClient) AddText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, LLMScriptEntry{Text: text})
}

// AddError queues a provider failure.
func (c *ScriptedLLMClient) AddError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, LLMScriptEntry{Err: err})
}

// Generate implements llm.Client.
func (c *ScriptedLLMClient) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.captured = append(c.captured, PromptPair{System: systemPrompt, User: userPrompt})
	if c.index >= len(c.entries) {
		return "", fmt.Errorf("ScriptedLLMClient: no more entries (call %d)", c.index+1)
	}
	entry := c.entries[c.index]
	c.index++
	if entry.Err != nil {
		return "", entry.Err
	}
	return entry.Text, nil
}

// CallCount returns the total number of Generate() calls made.
func (c *ScriptedLLMClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.captured)
}

// LastPrompt returns the most recent captured call, or nil when Generate
// was never reached.
func (c *ScriptedLLMClient) LastPrompt() *PromptPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.captured) == 0 {
		return nil
	}
	pair := c.captured[len(c.captured)-1]
	return &pair
}

// AnalysisEntry is one questions_analysis element of a scripted response.
// Question must repeat the meeting question verbatim or the summarizer
// rejects the whole analysis.
type AnalysisEntry struct {
	Question      string `json:"question"`
	Summary       string `json:"summary"`
	ResponseCount int    `json:"response_count"`
}

// AnalysisText builds a well-formed provider response from entries and
// takeaways, the shape a cooperative model returns.
func AnalysisText(entries []AnalysisEntry, takeaways ...string) string {
	payload := struct {
		QuestionsAnalysis []AnalysisEntry `json:"questions_analysis"`
		KeyTakeaways      []string        `json:"key_takeaways"`
	}{
		QuestionsAnalysis: entries,
		KeyTakeaways:      takeaways,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err) // static struct, cannot fail
	}
	return string(data)
}
