package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"call-summary-bot/internal/types"
)

// MoodNotRecorded replaces a missing or blank mood.
const MoodNotRecorded = "No registrado"

// No field is required: an absent list becomes empty and an absent mood
// becomes MoodNotRecorded. A present field of the wrong type is rejected.
var summarySchema = gojsonschema.NewGoLoader(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"temas_conversados":   stringList(),
		"momentos_destacados": stringList(),
		"temas_futuros":       stringList(),
		"estado_animo": map[string]interface{}{
			"type": []string{"string", "null"},
		},
	},
})

func stringList() map[string]interface{} {
	return map[string]interface{}{
		"type":  []string{"array", "null"},
		"items": map[string]interface{}{"type": "string"},
	}
}

// ParseSummary turns raw model output into a ConversationSummary. Output wrapped
// in a fenced code block is unwrapped first.
func ParseSummary(raw string) (types.ConversationSummary, error) {
	text := stripCodeFence(raw)

	var doc interface{}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return types.ConversationSummary{}, fmt.Errorf("decode model output: %w", err)
	}

	result, err := gojsonschema.Validate(summarySchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return types.ConversationSummary{}, fmt.Errorf("validate model output: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return types.ConversationSummary{}, fmt.Errorf("model output does not match summary schema: %s", strings.Join(errs, "; "))
	}

	var summary types.ConversationSummary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return types.ConversationSummary{}, fmt.Errorf("decode summary: %w", err)
	}
	return withDefaults(summary), nil
}

func withDefaults(s types.ConversationSummary) types.ConversationSummary {
	if s.Topics == nil {
		s.Topics = []string{}
	}
	if s.Highlights == nil {
		s.Highlights = []string{}
	}
	if s.FollowUps == nil {
		s.FollowUps = []string{}
	}
	if strings.TrimSpace(s.Mood) == "" {
		s.Mood = MoodNotRecorded
	}
	return s
}

// stripCodeFence removes a surrounding ``` fence and its optional language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}

	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(s[:nl]); tag != "" && !strings.ContainsAny(tag, "{[") {
			s = s[nl+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	return strings.TrimSpace(s)
}
