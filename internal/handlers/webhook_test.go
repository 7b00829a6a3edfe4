package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/signature"
	"call-summary-bot/internal/types"
)

const (
	testSecret = "whsec_test"
	testHeader = "x-elevenlabs-signature"
)

const endedPayload = `{
  "event_type": "conversation.ended",
  "conversation_id": "conv_abc123456789",
  "transcript": "Agente: Hola Carmen\nUsuario: Hola, hoy he estado en el huerto",
  "duration_seconds": 125,
  "metadata": {"nombre": "Carmen"}
}`

type recorder struct {
	summarizeCalls int
	notifyCalls    int
	transcript     string
	duration       int
	name           string
	conversationID string
	summarizeErr   error
	notifyErr      error
}

func (rec *recorder) handler(log *zap.Logger) WebhookHandler {
	return WebhookHandler{
		Secret:             testSecret,
		SignatureHeader:    testHeader,
		VerifySignature:    true,
		DisplayNameKey:     "nombre",
		DefaultDisplayName: "Usuario",
		Summarize: func(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error) {
			rec.summarizeCalls++
			rec.transcript = transcript
			rec.duration = durationSeconds
			rec.name = displayName
			if rec.summarizeErr != nil {
				return types.ConversationSummary{}, rec.summarizeErr
			}
			return types.ConversationSummary{Topics: []string{"El huerto"}, Mood: "Tranquila"}, nil
		},
		Notify: func(ctx context.Context, summary types.ConversationSummary, displayName, conversationID string, durationSeconds int) error {
			rec.notifyCalls++
			rec.conversationID = conversationID
			return rec.notifyErr
		},
		Log: log,
	}
}

func post(h WebhookHandler, body, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/elevenlabs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set(testHeader, sig)
	}
	rr := httptest.NewRecorder()
	h.Handle(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHandleConversationEnded(t *testing.T) {
	rec := &recorder{}
	rr := post(rec.handler(zap.NewNop()), endedPayload, signature.Sign([]byte(endedPayload), testSecret))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, MessageSummarySent, decode(t, rr)["message"])
	assert.Equal(t, 1, rec.summarizeCalls)
	assert.Equal(t, 1, rec.notifyCalls)
	assert.Equal(t, "Carmen", rec.name)
	assert.Equal(t, 125, rec.duration)
	assert.Contains(t, rec.transcript, "huerto")
	assert.Equal(t, "conv_abc123456789", rec.conversationID)
}

func TestHandleDefaultDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
	}{
		{"no metadata", ``},
		{"missing key", `, "metadata": {"edad": 81}`},
		{"non-string name", `, "metadata": {"nombre": 42}`},
		{"blank name", `, "metadata": {"nombre": "  "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"event_type": "conversation.ended", "conversation_id": "c1", "transcript": "hola", "duration_seconds": 5` + tt.metadata + `}`
			rec := &recorder{}
			rr := post(rec.handler(nil), body, signature.Sign([]byte(body), testSecret))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "Usuario", rec.name)
		})
	}
}

func TestHandleIgnoredEvent(t *testing.T) {
	tests := []string{
		`{"event_type": "conversation.started", "conversation_id": "c1"}`,
		`{"conversation_id": "c1"}`,
		`{"event_type": "Conversation.Ended"}`,
		`{"event_type": "conversation.started", "duration_seconds": 12.5}`,
		`{"event_type": "conversation.started", "metadata": ["x"]}`,
		`{"event_type": 7, "transcript": ["x"]}`,
	}

	for _, body := range tests {
		rec := &recorder{}
		rr := post(rec.handler(nil), body, signature.Sign([]byte(body), testSecret))

		assert.Equal(t, http.StatusOK, rr.Code, body)
		assert.Equal(t, MessageNotProcessed, decode(t, rr)["message"])
		assert.Zero(t, rec.summarizeCalls)
		assert.Zero(t, rec.notifyCalls)
	}
}

func TestHandleInvalidSignature(t *testing.T) {
	tests := []struct {
		name string
		sig  string
	}{
		{"missing header", ""},
		{"wrong secret", signature.Sign([]byte(endedPayload), "other")},
		{"signature of another body", signature.Sign([]byte(`{}`), testSecret)},
		{"uppercase hex", strings.ToUpper(signature.Sign([]byte(endedPayload), testSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			rr := post(rec.handler(nil), endedPayload, tt.sig)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "invalid webhook signature", decode(t, rr)["error"])
			assert.Zero(t, rec.summarizeCalls)
			assert.Zero(t, rec.notifyCalls)
		})
	}
}

func TestHandleWithoutSecretIsPermissive(t *testing.T) {
	rec := &recorder{}
	h := rec.handler(nil)
	h.Secret = ""

	rr := post(h, endedPayload, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, rec.notifyCalls)
}

func TestHandleVerificationDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}
	h := rec.handler(zap.New(core))
	h.VerifySignature = false

	rr := post(h, endedPayload, "t=1700000000,v0=deadbeefcafebabe0123456789")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, rec.notifyCalls)

	entries := logs.FilterMessage("signature verification disabled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "t=1700000000,v0=dead", entries[0].ContextMap()["signature_prefix"])
}

func TestHandleMalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"not json", `event_type=conversation.ended`, "invalid character 'e' looking for beginning of value"},
		{"array", `[{"event_type": "conversation.ended"}]`, "cannot unmarshal array"},
		{"null", `null`, "payload is not a JSON object"},
		{"string", `"conversation.ended"`, "cannot unmarshal string"},
		{"duration is a string", `{"event_type": "conversation.ended", "duration_seconds": "125"}`, "duration_seconds"},
		{"duration is a float", `{"event_type": "conversation.ended", "duration_seconds": 12.5}`, "duration_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			rr := post(rec.handler(nil), tt.body, signature.Sign([]byte(tt.body), testSecret))

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			msg := decode(t, rr)["error"]
			assert.True(t, strings.HasPrefix(msg, "malformed payload: "), msg)
			assert.Contains(t, msg, tt.wantErr)
			assert.NotContains(t, msg, "goroutine")
			assert.Zero(t, rec.summarizeCalls)
		})
	}
}

func TestHandleSummarizationFailure(t *testing.T) {
	rec := &recorder{summarizeErr: apperrors.Summarization(errors.New("openai: 429 rate limited"))}
	rr := post(rec.handler(nil), endedPayload, signature.Sign([]byte(endedPayload), testSecret))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "summarization failed: openai: 429 rate limited", decode(t, rr)["error"])
	assert.Zero(t, rec.notifyCalls)
}

func TestHandleDeliveryFailure(t *testing.T) {
	rec := &recorder{notifyErr: apperrors.Delivery(errors.New("resend: status 422"))}
	rr := post(rec.handler(nil), endedPayload, signature.Sign([]byte(endedPayload), testSecret))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "notification delivery failed: resend: status 422", decode(t, rr)["error"])
	assert.Equal(t, 1, rec.notifyCalls)
}

func TestHandleUnclassifiedFailure(t *testing.T) {
	rec := &recorder{notifyErr: errors.New("boom")}
	rr := post(rec.handler(nil), endedPayload, signature.Sign([]byte(endedPayload), testSecret))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "boom", decode(t, rr)["error"])
}

func TestHandleLogsPayloadSize(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &recorder{}
	post(rec.handler(zap.New(core)), endedPayload, signature.Sign([]byte(endedPayload), testSecret))

	entries := logs.FilterMessage("conversation ended").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(len(endedPayload)), fields["payload_bytes"])
	assert.Equal(t, "conversation.ended", fields["event_type"])
	assert.Equal(t, "conv_abc123456789", fields["conversation_id"])
	assert.Equal(t, int64(125), fields["duration_seconds"])
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
