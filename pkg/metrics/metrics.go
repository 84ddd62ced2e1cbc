package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thesisflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	// Milestone status transitions performed by the sequencer.
	MilestoneTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_milestone_transitions_total",
			Help: "Total number of milestone status transitions",
		},
		[]string{"from", "to"},
	)

	SubmissionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_submission_operations_total",
			Help: "Total number of submission operations",
		},
		[]string{"operation", "result"}, // operation: create, delete, review
	)

	AICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thesisflow_ai_call_latency_ms",
			Help:    "Generative model call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"flow", "status"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_notifications_total",
			Help: "Total number of notification e-mails by outcome",
		},
		[]string{"kind", "status"},
	)
)

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func RecordMilestoneTransition(from, to string) {
	MilestoneTransitions.WithLabelValues(from, to).Inc()
}

func RecordSubmissionOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failed"
	}
	SubmissionOperations.WithLabelValues(operation, result).Inc()
}

func RecordAICall(flow, status string, duration time.Duration) {
	AICallLatency.WithLabelValues(flow, status).Observe(float64(duration.Milliseconds()))
}

func RecordNotification(kind, status string) {
	NotificationsSent.WithLabelValues(kind, status).Inc()
}
