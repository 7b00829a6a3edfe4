package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/handlers"
	"call-summary-bot/internal/httpserver"
	"call-summary-bot/internal/llm"
	"call-summary-bot/internal/logger"
	"call-summary-bot/internal/mailer"
	"call-summary-bot/internal/notifier"
	"call-summary-bot/internal/summarizer"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: optional ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	complete, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	send, err := mailer.New(ctx, cfg.Email, log)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	formatter, err := notifier.NewFormatter(cfg.Email)
	if err != nil {
		return fmt.Errorf("formatter: %w", err)
	}

	if cfg.Webhook.Secret == "" {
		log.Warn("webhook secret not configured: every request will be accepted unsigned")
	}
	if !cfg.Webhook.VerifySignature {
		log.Warn("webhook signature verification disabled")
	}

	handler := handlers.WebhookHandler{
		Secret:             cfg.Webhook.Secret,
		SignatureHeader:    cfg.Webhook.SignatureHeader,
		VerifySignature:    cfg.Webhook.VerifySignature,
		DisplayNameKey:     cfg.Webhook.DisplayNameKey,
		DefaultDisplayName: cfg.Webhook.DefaultDisplayName,
		Summarize:          summarizer.New(complete, cfg.LLM, log).Summarize,
		Notify:             notifier.NewNotifier(formatter, send),
		Log:                log.Named("webhook"),
	}

	srv := httpserver.NewServer(*cfg, handler, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("webhook_path", cfg.WebhookPath()),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", cfg.LLM.Model),
			zap.String("email_provider", cfg.Email.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
