package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsInitialization(t *testing.T) {
	t.Run("http_metrics", func(t *testing.T) {
		assert.NotNil(t, HTTPRequestDuration)
		assert.NotNil(t, HTTPRequestsTotal)
	})

	t.Run("auth_upstream_metrics", func(t *testing.T) {
		assert.NotNil(t, AuthUpstreamRequests)
		assert.NotNil(t, AuthUpstreamDuration)
	})

	t.Run("inbox_metrics", func(t *testing.T) {
		assert.NotNil(t, InboxConnectionsActive)
		assert.NotNil(t, InboxDeliveriesTotal)
	})

	t.Run("notification_metrics", func(t *testing.T) {
		assert.NotNil(t, NotificationEventsPublished)
		assert.NotNil(t, NotificationEventsConsumed)
	})

	t.Run("database_metrics", func(t *testing.T) {
		assert.NotNil(t, DBQueryDuration)
	})
}

func TestMetricsAcceptExpectedLabels(t *testing.T) {
	t.Run("http_labels", func(t *testing.T) {
		assert.NotPanics(t, func() {
			HTTPRequestDuration.WithLabelValues("GET", "/messages", "200").Observe(0.05)
			HTTPRequestsTotal.WithLabelValues("POST", "/login", "401").Inc()
		})
	})

	t.Run("auth_upstream_labels", func(t *testing.T) {
		assert.NotPanics(t, func() {
			AuthUpstreamRequests.WithLabelValues("login", "rejected").Inc()
			AuthUpstreamRequests.WithLabelValues("signup", "success").Inc()
			AuthUpstreamDuration.WithLabelValues("login").Observe(0.1)
		})
	})

	t.Run("inbox_labels", func(t *testing.T) {
		assert.NotPanics(t, func() {
			InboxConnectionsActive.Inc()
			InboxConnectionsActive.Dec()
			InboxDeliveriesTotal.WithLabelValues("message").Inc()
			InboxDeliveriesTotal.WithLabelValues("notification").Inc()
		})
	})

	t.Run("notification_labels", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NotificationEventsPublished.Inc()
			for _, result := range []string{"ok", "invalid", "error"} {
				NotificationEventsConsumed.WithLabelValues(result).Inc()
			}
		})
	})

	t.Run("database_labels", func(t *testing.T) {
		assert.NotPanics(t, func() {
			for _, table := range []string{"conversations", "messages", "notifications"} {
				DBQueryDuration.WithLabelValues("insert", table).Observe(0.01)
			}
		})
	})
}

func TestMetricsAreCollectors(t *testing.T) {
	collectors := []prometheus.Collector{
		HTTPRequestDuration,
		HTTPRequestsTotal,
		AuthUpstreamRequests,
		AuthUpstreamDuration,
		InboxConnectionsActive,
		InboxDeliveriesTotal,
		NotificationEventsPublished,
		NotificationEventsConsumed,
		DBQueryDuration,
	}

	for _, c := range collectors {
		assert.NotNil(t, c)
	}
}
