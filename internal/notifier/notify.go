package notifier

import (
	"context"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/mailer"
	"call-summary-bot/internal/types"
)

// NotifyFunc formats and sends the email for one summarized conversation.
type NotifyFunc func(ctx context.Context, summary types.ConversationSummary, displayName, conversationID string, durationSeconds int) error

// NewNotifier returns a NotifyFunc that renders with f and delivers through send.
// Exactly one message is sent per call and nothing is retried.
func NewNotifier(f *Formatter, send mailer.Sender) NotifyFunc {
	return func(ctx context.Context, summary types.ConversationSummary, displayName, conversationID string, durationSeconds int) error {
		n, err := f.Format(summary, displayName, conversationID, durationSeconds)
		if err != nil {
			return apperrors.Delivery(err)
		}
		if err := send(ctx, n); err != nil {
			return apperrors.Delivery(err)
		}
		return nil
	}
}
