package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records admin authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_auth_attempts_total",
			Help: "Total number of admin authentication attempts",
		},
		[]string{"result"},
	)

	// RSVPResponses counts guest self-service confirmations by outcome (confirm|decline).
	RSVPResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_rsvp_responses_total",
			Help: "Total number of RSVP confirmations and declines",
		},
		[]string{"outcome"},
	)

	// SeatAssignments counts table assignment operations and their outcome (assigned|rejected|unassigned).
	SeatAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wedding_seat_assignments_total",
			Help: "Total number of table seat assignment operations",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wedding_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
