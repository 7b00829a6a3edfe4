// Package notifier renders a conversation summary as an HTML email and hands it
// to a mailer for delivery.
package notifier

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/types"
)

//go:embed templates/summary.html.tmpl
var templateFS embed.FS

const shortIDLen = 12

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

type section struct {
	Title       string
	Accent      template.CSS
	Items       []string
	Placeholder string
}

var summaryTemplate = template.Must(template.New("summary.html.tmpl").
	Funcs(template.FuncMap{
		"section": func(title, accent string, items []string, placeholder string) section {
			return section{Title: title, Accent: template.CSS(accent), Items: items, Placeholder: placeholder}
		},
	}).
	ParseFS(templateFS, "templates/summary.html.tmpl"))

type emailData struct {
	DisplayName    string
	Date           string
	Time           string
	Duration       string
	ConversationID string
	Brand          string
	Summary        types.ConversationSummary
}

// Formatter builds the notification email. Dates are rendered in its location.
type Formatter struct {
	from  string
	to    string
	brand string
	loc   *time.Location
	now   func() time.Time
}

// NewFormatter returns a Formatter for the configured sender, recipient and timezone.
func NewFormatter(cfg config.EmailConfig) (*Formatter, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Formatter{
		from:  cfg.From,
		to:    cfg.To,
		brand: cfg.Brand,
		loc:   loc,
		now:   time.Now,
	}, nil
}

// Format renders summary into a single Notification addressed to the configured recipient.
func (f *Formatter) Format(summary types.ConversationSummary, displayName, conversationID string, durationSeconds int) (types.Notification, error) {
	now := f.now().In(f.loc)
	date := FormatDate(now)

	var buf bytes.Buffer
	err := summaryTemplate.Execute(&buf, emailData{
		DisplayName:    displayName,
		Date:           date,
		Time:           now.Format("15:04"),
		Duration:       FormatDuration(durationSeconds),
		ConversationID: ShortID(conversationID),
		Brand:          f.brand,
		Summary:        summary,
	})
	if err != nil {
		return types.Notification{}, fmt.Errorf("render email: %w", err)
	}

	return types.Notification{
		From:    f.from,
		To:      f.to,
		Subject: fmt.Sprintf("💬 Conversación con %s - %s", displayName, date),
		HTML:    buf.String(),
	}, nil
}

// FormatDuration renders seconds as "N min S seg", or "S seg" under a minute.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if m := seconds / 60; m > 0 {
		return fmt.Sprintf("%d min %d seg", m, seconds%60)
	}
	return fmt.Sprintf("%d seg", seconds)
}

// FormatDate renders t as "19 de octubre de 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

// ShortID keeps the first 12 characters of id, marking the cut with "...".
func ShortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLen {
		return id
	}
	return string(r[:shortIDLen]) + "..."
}
