package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events submitted to the broker",
		},
		[]string{"exchange", "routing_key", "status"}, // status: ok, failed
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed from queues",
		},
		[]string{"queue", "status"}, // status: ack, dropped
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message handling latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"queue"},
	)

	NotificationsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_routed_total",
			Help: "Notifications routed to users",
		},
		[]string{"mode"}, // mode: live, queued
	)

	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_live_connections",
			Help: "Currently open realtime connections",
		},
	)
)

func RecordPublish(exchange, routingKey, status string) {
	EventsPublished.WithLabelValues(exchange, routingKey, status).Inc()
}

func RecordConsume(queue, status string, duration time.Duration) {
	EventsConsumed.WithLabelValues(queue, status).Inc()
	MQConsumeLatency.WithLabelValues(queue).Observe(float64(duration.Milliseconds()))
}

func RecordRouted(mode string) {
	NotificationsRouted.WithLabelValues(mode).Inc()
}
