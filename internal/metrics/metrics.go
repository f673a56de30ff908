// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Rate limiter rejections by tier
// - Element store size and mutation throughput
// - Snapshot persistence
// - WebSocket connections and broadcast fan-out

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIAuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of rejected authentication attempts",
		},
		[]string{"reason"}, // "missing", "invalid", "origin"
	)

	// Rate Limiter Metrics
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"tier"}, // "standard", "strict"
	)

	// Element Store Metrics
	StoreElements = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_elements",
			Help: "Current number of elements in the store",
		},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of store mutations",
		},
		[]string{"operation"}, // "create", "update", "delete", "batch", "sync"
	)

	StoreCapacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_capacity_rejections_total",
			Help: "Total number of writes refused because the store is full",
		},
	)

	// Snapshot Persistence Metrics
	SnapshotFlushes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_flushes_total",
			Help: "Total number of snapshot writes to disk",
		},
	)

	SnapshotFlushErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_flush_errors_total",
			Help: "Total number of failed snapshot writes",
		},
	)

	SnapshotFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_flush_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotElementsSaved = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_elements_saved",
			Help: "Number of elements in the most recent snapshot",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket sessions",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"type"},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
		[]string{"type"},
	)

	WSBroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_broadcast_dropped_total",
			Help: "Total number of broadcast frames dropped on slow sessions",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the in-process bus",
		},
		[]string{"type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAuthFailure records a rejected admission attempt
func RecordAuthFailure(reason string) {
	APIAuthFailures.WithLabelValues(reason).Inc()
}

// RecordRateLimitRejection records a 429 response by limiter tier
func RecordRateLimitRejection(tier string) {
	RateLimitRejections.WithLabelValues(tier).Inc()
}

// RecordStoreOperation records a successful store mutation and the resulting size
func RecordStoreOperation(operation string, size int) {
	StoreOperationsTotal.WithLabelValues(operation).Inc()
	StoreElements.Set(float64(size))
}

// RecordSnapshotFlush records a snapshot write attempt
func RecordSnapshotFlush(duration time.Duration, elements int, err error) {
	SnapshotFlushDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotFlushErrors.Inc()
		return
	}
	SnapshotFlushes.Inc()
	SnapshotElementsSaved.Set(float64(elements))
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
