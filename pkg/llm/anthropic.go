package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/JBK2116/CollaBoard/pkg/config"
)

// AnthropicClient calls the Anthropic Messages API. The API key is read
// from ANTHROPIC_API_KEY by the SDK.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
	logger      *slog.Logger
}

// NewAnthropicClient creates a client with the configured model parameters.
func NewAnthropicClient(cfg *config.LLMConfig, logger *slog.Logger) *AnthropicClient {
	return &AnthropicClient{
		client:      anthropic.NewClient(),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger.With("provider", "anthropic", "model", cfg.Model),
	}
}

// Generate sends the prompt pair and returns the concatenated text blocks
// of the response.
func (c *AnthropicClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("no text block in response")
	}

	c.logger.Debug("LLM call complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens)

	return text.String(), nil
}
