package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "managerate_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ReviewSubmissions counts review submissions and their outcome (created|conflict|rejected).
	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "managerate_review_submissions_total",
			Help: "Total number of review submission attempts",
		},
		[]string{"result"},
	)

	// VerificationOutcomes counts verification confirmations (confirmed|invalid_code).
	VerificationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "managerate_verification_outcomes_total",
			Help: "Total number of verification confirmation attempts",
		},
		[]string{"result"},
	)

	// VerificationRequests counts issued verification codes.
	VerificationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "managerate_verification_requests_total",
			Help: "Total number of verification codes issued",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "managerate_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
