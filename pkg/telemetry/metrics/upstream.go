package metrics

import (
	"time"

	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks calls to the upstream.
//
// Metrics:
//   - upstream_request_duration_seconds: latency by status class
//   - upstream_errors_total: transport failures by kind
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of upstream calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"status_class"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of upstream calls that received no response",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(um.duration, um.errors)

	return um
}

// RecordResponse records an upstream call that got a response.
func (um *UpstreamMetrics) RecordResponse(statusClass string, duration time.Duration) {
	um.duration.WithLabelValues(statusClass).Observe(duration.Seconds())
}

// RecordError records an upstream call that failed before a response.
func (um *UpstreamMetrics) RecordError(kind string, duration time.Duration) {
	um.errors.WithLabelValues(kind).Inc()
	um.duration.WithLabelValues("none").Observe(duration.Seconds())
}
