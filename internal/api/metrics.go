package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statusNetworkError labels requests that never produced an HTTP status.
const statusNetworkError = "network_error"

var (
	// RequestsTotal counts backend API requests by endpoint and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_api_requests_total",
		Help: "Total number of backend API requests",
	}, []string{"endpoint", "status"})

	// RequestDuration measures backend API request latency per endpoint.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "insight_api_request_duration_seconds",
		Help:    "Duration of backend API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

func observeRequest(endpoint, status string, start time.Time) {
	RequestsTotal.WithLabelValues(endpoint, status).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
