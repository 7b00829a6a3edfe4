package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/llm"
	"call-summary-bot/internal/logger"
	"call-summary-bot/internal/mailer"
	mcpclient "call-summary-bot/internal/mcp"
	"call-summary-bot/internal/notifier"
	"call-summary-bot/internal/signature"
	"call-summary-bot/internal/summarizer"
	"call-summary-bot/internal/types"
)

func main() {
	var (
		configPath  string
		payloadPath string
		htmlPath    string
		mcpEndpoint string
		send        bool
		sign        bool
		timeout     time.Duration
	)
	flag.StringVar(&configPath, "config", "", "path to a config file (default: optional ./config.yaml)")
	flag.StringVar(&payloadPath, "payload", "-", "webhook payload file, or - for stdin")
	flag.StringVar(&htmlPath, "html", "", "write the rendered email to this file")
	flag.StringVar(&mcpEndpoint, "mcp", "", "summarize through a running summary MCP server (e.g. http://localhost:8081/mcp)")
	flag.BoolVar(&send, "send", false, "deliver the email through the configured provider")
	flag.BoolVar(&sign, "sign", false, "print the webhook signature of the payload and exit")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fail(err)
	}
	body, err := readPayload(payloadPath)
	if err != nil {
		fail(err)
	}

	if sign {
		if cfg.Webhook.Secret == "" {
			fail(fmt.Errorf("webhook.secret is not configured"))
		}
		fmt.Println(signature.Sign(body, cfg.Webhook.Secret))
		return
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fail(err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := run(ctx, cfg, log, body, htmlPath, mcpEndpoint, send); err != nil {
		fail(err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, body []byte, htmlPath, mcpEndpoint string, send bool) error {
	var payload types.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if payload.EventType != types.EventConversationEnded {
		fmt.Fprintf(os.Stderr, "event %q would not be processed\n", payload.EventType)
		return nil
	}
	name := payload.DisplayName(cfg.Webhook.DisplayNameKey, cfg.Webhook.DefaultDisplayName)

	summarize := mcpclient.NewRemoteSummarizer(mcpEndpoint)
	if mcpEndpoint == "" {
		complete, err := llm.New(ctx, cfg.LLM)
		if err != nil {
			return err
		}
		summarize = summarizer.New(complete, cfg.LLM, log).Summarize
	}
	summary, err := summarize(ctx, payload.Transcript, payload.DurationSeconds, name)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	formatter, err := notifier.NewFormatter(cfg.Email)
	if err != nil {
		return err
	}
	n, err := formatter.Format(summary, name, payload.ConversationID, payload.DurationSeconds)
	if err != nil {
		return err
	}

	if htmlPath != "" {
		if err := os.WriteFile(htmlPath, []byte(n.HTML), 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		fmt.Fprintf(os.Stderr, "email written to %s\n", htmlPath)
	}

	if send {
		sender, err := mailer.New(ctx, cfg.Email, log)
		if err != nil {
			return err
		}
		if err := sender(ctx, n); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "email sent to %s\n", n.To)
	}
	return nil
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "ERR:", err)
	os.Exit(1)
}
