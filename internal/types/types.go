package types

import "strings"

// EventConversationEnded is the only event type the pipeline acts upon.
const EventConversationEnded = "conversation.ended"

// WebhookPayload is the body the voice provider posts when a conversation changes state.
type WebhookPayload struct {
	EventType       string         `json:"event_type"`
	ConversationID  string         `json:"conversation_id"`
	Transcript      string         `json:"transcript"`
	DurationSeconds int            `json:"duration_seconds"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// DisplayName returns metadata[key] when it is a non-blank string, def otherwise.
func (p WebhookPayload) DisplayName(key, def string) string {
	if v, ok := p.Metadata[key].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// ConversationSummary is the four-field structure the language model populates.
// The JSON keys match the ones requested in the prompt.
type ConversationSummary struct {
	Topics     []string `json:"temas_conversados"`
	Highlights []string `json:"momentos_destacados"`
	Mood       string   `json:"estado_animo"`
	FollowUps  []string `json:"temas_futuros"`
}

// Notification is one outbound email.
type Notification struct {
	From    string
	To      string
	Subject string
	HTML    string
}
