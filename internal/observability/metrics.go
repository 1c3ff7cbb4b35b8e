// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kampus_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ActiveWebSockets is the gauge of currently open chat websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kampus_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kampus_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// MessagesSent counts chat messages accepted by the API.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kampus_chat_messages_sent_total",
		Help: "Total number of chat messages persisted",
	})

	// FeedSnapshots counts snapshots delivered to live feed subscribers by feed kind.
	FeedSnapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kampus_feed_snapshots_total",
		Help: "Total number of snapshots delivered to feed subscribers",
	}, []string{"feed"})
)
