package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/types"
)

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// NewResend returns a Sender that posts to the Resend emails API.
// RetryMax is taken from cfg and is zero unless configured otherwise.
func NewResend(cfg config.ResendConfig, log *zap.Logger) Sender {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = cfg.RetryMax
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = 30 * time.Second

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/emails"

	return func(ctx context.Context, n types.Notification) error {
		payload, err := json.Marshal(resendEmail{
			From:    n.From,
			To:      []string{n.To},
			Subject: n.Subject,
			HTML:    n.HTML,
		})
		if err != nil {
			return err
		}

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		log.Debug("sending email", zap.String("from", n.From), zap.String("to", n.To), zap.String("subject", n.Subject))

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("resend request: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 300 {
			return fmt.Errorf("resend send failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var out resendResponse
		_ = json.Unmarshal(body, &out)
		log.Info("email sent", zap.String("to", n.To), zap.String("message_id", out.ID))
		return nil
	}
}
