package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"call-summary-bot/internal/config"
)

// NewGemini returns a Completer backed by the Gemini API.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (Completer, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := cfg.Model

	return func(ctx context.Context, req Request) (string, error) {
		genCfg := &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
			Temperature:       genai.Ptr(req.Temperature),
			MaxOutputTokens:   int32(req.MaxTokens),
		}
		if req.JSON {
			genCfg.ResponseMIMEType = "application/json"
		}

		result, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), genCfg)
		if err != nil {
			return "", fmt.Errorf("gemini generate content: %w", err)
		}
		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", errors.New("empty response from gemini")
		}

		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text += part.Text
			}
		}
		if text == "" {
			return "", errors.New("gemini response has no text parts")
		}
		return text, nil
	}, nil
}
