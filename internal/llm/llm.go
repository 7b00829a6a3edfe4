// Package llm hides the language-model provider behind a single function type.
package llm

import (
	"context"
	"fmt"

	"call-summary-bot/internal/config"
)

// Request is one chat-style completion: a system instruction plus a user prompt.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider to constrain its output to a single JSON object.
	JSON bool
}

// Completer sends a request to a model and returns the raw text it produced.
type Completer func(ctx context.Context, req Request) (string, error)

// New returns the Completer for the configured provider.
func New(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return NewOpenAI(cfg), nil
	case config.LLMProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
