package webui

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	StatusOK      = "200"
	StatusBad     = "400"
	StatusLimited = "429"
	StatusError   = "500"
)

var (
	// HitsTotal counts dashboard page hits by route and HTTP status.
	HitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_webui_hits_total",
		Help: "Total number of dashboard web UI hits",
	}, []string{"route", "status"})

	// LatencyHistogram measures request latency.
	LatencyHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "insight_webui_latency_seconds",
		Help:    "Latency of dashboard web UI requests",
		Buckets: prometheus.DefBuckets,
	})
)
