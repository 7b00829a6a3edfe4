package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/types"
)

const smtpDialTimeout = 30 * time.Second

// NewSMTP returns a Sender that delivers over SMTP, upgrading with STARTTLS
// when cfg.UseTLS is set.
func NewSMTP(cfg config.SMTPConfig, log *zap.Logger) Sender {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return func(ctx context.Context, n types.Notification) error {
		msg, messageID, err := buildMessage(n, time.Now())
		if err != nil {
			return err
		}
		if err := sendSMTP(ctx, addr, cfg, auth, n.From, n.To, msg); err != nil {
			return err
		}
		log.Info("email sent", zap.String("to", n.To), zap.String("message_id", messageID))
		return nil
	}
}

func sendSMTP(ctx context.Context, addr string, cfg config.SMTPConfig, auth smtp.Auth, from, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.Host}); err != nil {
			return fmt.Errorf("start tls: %w", err)
		}
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient %s: %w", to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}
	return client.Quit()
}

// buildMessage renders n as a quoted-printable HTML message and returns it with its Message-ID.
func buildMessage(n types.Notification, now time.Time) ([]byte, string, error) {
	domain := "localhost"
	if at := strings.LastIndex(n.From, "@"); at >= 0 && at < len(n.From)-1 {
		domain = strings.TrimRight(n.From[at+1:], ">")
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.From)
	fmt.Fprintf(&b, "To: %s\r\n", n.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", n.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	if _, err := qp.Write([]byte(n.HTML)); err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return b.Bytes(), messageID, nil
}
