package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/types"
)

func TestNotifierSendsOnce(t *testing.T) {
	var sent []types.Notification
	send := func(ctx context.Context, n types.Notification) error {
		sent = append(sent, n)
		return nil
	}

	notify := NewNotifier(newTestFormatter(t, "UTC"), send)
	err := notify(context.Background(), types.ConversationSummary{Mood: "Animada"}, "Carmen", "conv_1", 30)
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "familia@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "Carmen")
	assert.Contains(t, sent[0].HTML, "Animada")
}

func TestNotifierPropagatesSendError(t *testing.T) {
	cause := errors.New("resend: status 422")
	calls := 0
	send := func(ctx context.Context, n types.Notification) error {
		calls++
		return cause
	}

	notify := NewNotifier(newTestFormatter(t, "UTC"), send)
	err := notify(context.Background(), types.ConversationSummary{}, "Carmen", "conv_1", 30)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperrors.CodeDeliveryFailed, apperrors.CodeOf(err))
	assert.Equal(t, 1, calls)
}
