// Package llm wraps the model provider used for meeting summarization.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JBK2116/CollaBoard/pkg/config"
)

// Client generates summary analysis text from a prompt. The provider is
// treated as untrusted: callers parse and validate everything it returns.
type Client interface {
	// Generate sends the prompt pair and returns the model's text output.
	// The call is bounded by the configured provider timeout.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New builds the configured provider client.
func New(cfg *config.LLMConfig, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
