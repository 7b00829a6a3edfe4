package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook outcomes.
const (
	OutcomeProcessed           = "processed"
	OutcomeIgnored             = "ignored"
	OutcomeUnauthorized        = "unauthorized"
	OutcomeMalformed           = "malformed"
	OutcomeSummarizationFailed = "summarization_failed"
	OutcomeDeliveryFailed      = "delivery_failed"
)

// Pipeline stages.
const (
	StageSummarize = "summarize"
	StageNotify    = "notify"
)

var (
	// WebhookRequests counts webhook deliveries by outcome.
	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Total number of webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	// StageDuration records how long the summarize and notify stages take.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)
)

// ObserveStage records the time elapsed since start for stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
