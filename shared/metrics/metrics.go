package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// Allocation
	AllocationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_allocation_attempts_total",
			Help: "Allocation attempts by outcome kind",
		},
		[]string{"outcome"}, // "success" or a failure kind
	)

	AllocationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotel_allocation_duration_seconds",
			Help:    "Duration of the allocation transaction including retries",
			Buckets: prometheus.DefBuckets,
		},
	)

	TxRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_tx_retries_total",
			Help: "Transactions retried after a serialization failure or deadlock",
		},
		[]string{"sqlstate"},
	)

	// Lifecycle
	LifecycleTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_reservation_transitions_total",
			Help: "Reservation status transitions",
		},
		[]string{"from", "to"},
	)

	RoomStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_room_status_changes_total",
			Help: "Physical room status changes",
		},
		[]string{"status"},
	)

	ExpiredPending = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_pending_expired_total",
			Help: "Pending reservations cancelled by the sweeper",
		},
	)

	// Collaborators
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_events_published_total",
			Help: "Reservation events handed to the broker",
		},
		[]string{"type", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hotel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotel_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
