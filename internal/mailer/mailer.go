// Package mailer delivers rendered notifications through one of the supported
// email providers.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/types"
)

// Sender delivers a single notification. Implementations make one attempt.
type Sender func(ctx context.Context, n types.Notification) error

// New returns the Sender for cfg.Provider.
func New(ctx context.Context, cfg config.EmailConfig, log *zap.Logger) (Sender, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("mailer").With(zap.String("provider", cfg.Provider))

	switch cfg.Provider {
	case config.EmailProviderResend:
		return NewResend(cfg.Resend, log), nil
	case config.EmailProviderSES:
		return NewSES(ctx, cfg.SES, log)
	case config.EmailProviderSMTP:
		return NewSMTP(cfg.SMTP, log), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
}
