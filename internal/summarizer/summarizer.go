package summarizer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/config"
	"call-summary-bot/internal/llm"
	"call-summary-bot/internal/types"
)

// Summarizer asks a language model for a structured, descriptive summary of a call.
type Summarizer struct {
	complete    llm.Completer
	temperature float32
	maxTokens   int
	log         *zap.Logger
}

// New returns a Summarizer that sends its requests through complete.
func New(complete llm.Completer, cfg config.LLMConfig, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Summarizer{
		complete:    complete,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.Named("summarizer"),
	}
}

// Summarize builds the prompt for one transcript and parses the model's answer.
// Every failure is an apperrors summarization error; no partial summary is returned.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error) {
	start := time.Now()

	raw, err := s.complete(ctx, llm.Request{
		System:      systemInstruction,
		Prompt:      buildPrompt(transcript, durationSeconds, displayName),
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return types.ConversationSummary{}, apperrors.Summarization(err)
	}

	summary, err := ParseSummary(raw)
	if err != nil {
		s.log.Debug("unparseable model output", zap.Int("output_chars", len(raw)))
		return types.ConversationSummary{}, apperrors.Summarization(err)
	}

	s.log.Info("summary generated",
		zap.Int("output_chars", len(raw)),
		zap.Int("topics", len(summary.Topics)),
		zap.Int("highlights", len(summary.Highlights)),
		zap.Int("follow_ups", len(summary.FollowUps)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}
