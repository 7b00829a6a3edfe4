package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/metrics"
	"call-summary-bot/internal/signature"
	"call-summary-bot/internal/types"
)

const (
	MessageNotProcessed = "event received but not processed"
	MessageSummarySent  = "summary sent"
)

// maxBodyBytes caps the webhook body; transcripts of long calls fit well below it.
const maxBodyBytes = 10 << 20

// WebhookHandler handles POST /webhook/{provider} deliveries.
type WebhookHandler struct {
	Secret             string
	SignatureHeader    string
	VerifySignature    bool
	DisplayNameKey     string
	DefaultDisplayName string

	Summarize func(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error)
	Notify    func(ctx context.Context, summary types.ConversationSummary, displayName, conversationID string, durationSeconds int) error
	Log       *zap.Logger
}

// Handle verifies the raw body, filters on the event type and, for ended
// conversations, summarizes the transcript and emails the result.
func (h WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	log := h.logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, log, metrics.OutcomeMalformed, apperrors.PayloadMalformed(err))
		return
	}
	log = log.With(zap.Int("payload_bytes", len(body)))

	sig := r.Header.Get(h.SignatureHeader)
	if h.VerifySignature {
		if !signature.Verify(body, sig, h.Secret) {
			h.fail(w, log, metrics.OutcomeUnauthorized, apperrors.SignatureInvalid())
			return
		}
	} else {
		log.Debug("signature verification disabled", zap.String("signature_prefix", prefix(sig, 20)))
	}

	eventType, err := decodeEventType(body)
	if err != nil {
		h.fail(w, log, metrics.OutcomeMalformed, apperrors.PayloadMalformed(err))
		return
	}
	log = log.With(zap.String("event_type", eventType))

	if eventType != types.EventConversationEnded {
		log.Info("event ignored")
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeIgnored).Inc()
		WriteJSON(w, http.StatusOK, map[string]string{"message": MessageNotProcessed})
		return
	}

	var payload types.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.fail(w, log, metrics.OutcomeMalformed, apperrors.PayloadMalformed(err))
		return
	}

	name := payload.DisplayName(h.DisplayNameKey, h.DefaultDisplayName)
	log = log.With(
		zap.String("conversation_id", payload.ConversationID),
		zap.Int("duration_seconds", payload.DurationSeconds),
		zap.Int("transcript_chars", len([]rune(payload.Transcript))),
	)
	log.Info("conversation ended")

	start := time.Now()
	summary, err := h.Summarize(r.Context(), payload.Transcript, payload.DurationSeconds, name)
	metrics.ObserveStage(metrics.StageSummarize, start)
	if err != nil {
		h.fail(w, log, metrics.OutcomeSummarizationFailed, err)
		return
	}

	start = time.Now()
	err = h.Notify(r.Context(), summary, name, payload.ConversationID, payload.DurationSeconds)
	metrics.ObserveStage(metrics.StageNotify, start)
	if err != nil {
		h.fail(w, log, metrics.OutcomeDeliveryFailed, err)
		return
	}

	log.Info("summary sent")
	metrics.WebhookRequests.WithLabelValues(metrics.OutcomeProcessed).Inc()
	WriteJSON(w, http.StatusOK, map[string]string{"message": MessageSummarySent})
}

func (h WebhookHandler) fail(w http.ResponseWriter, log *zap.Logger, outcome string, err error) {
	status := apperrors.HTTPStatus(err)
	fields := []zap.Field{zap.Error(err), zap.String("code", string(apperrors.CodeOf(err))), zap.Int("status", status)}
	if status == http.StatusUnauthorized {
		log.Warn("webhook rejected", fields...)
	} else {
		log.Error("webhook failed", fields...)
	}
	metrics.WebhookRequests.WithLabelValues(outcome).Inc()
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func (h WebhookHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// decodeEventType reads event_type from a JSON object body without decoding
// the rest of it. A missing or non-string event_type yields "".
func decodeEventType(body []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", err
	}
	if envelope == nil {
		return "", errors.New("payload is not a JSON object")
	}
	var eventType string
	if raw, ok := envelope["event_type"]; ok {
		_ = json.Unmarshal(raw, &eventType)
	}
	return eventType, nil
}

func prefix(s string, n int) string {
	if s == "" {
		return "(none)"
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
