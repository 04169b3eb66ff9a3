package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Authentication backend metrics
	AuthUpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_upstream_requests_total",
			Help: "Requests to the external authentication service by outcome",
		},
		[]string{"operation", "outcome"},
	)

	AuthUpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_upstream_duration_seconds",
			Help:    "Latency of external authentication service calls",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	// WebSocket inbox metrics
	InboxConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inbox_connections_active",
			Help: "Number of active WebSocket inbox connections",
		},
	)

	InboxDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_deliveries_total",
			Help: "Total number of frames delivered to inbox connections",
		},
		[]string{"type"},
	)

	// Notification pipeline metrics
	NotificationEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_events_published_total",
			Help: "Total number of notification events published to the broker",
		},
	)

	NotificationEventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_events_consumed_total",
			Help: "Total number of notification events consumed, by result",
		},
		[]string{"result"},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation", "table"},
	)
)
