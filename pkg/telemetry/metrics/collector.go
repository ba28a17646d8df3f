package metrics

import (
	"strconv"
	"time"

	"mercator-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric of the relay. A nil *Collector is
// valid and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Relay metrics
	relayMetrics *RelayMetrics

	// Upstream metrics
	upstreamMetrics *UpstreamMetrics

	// Journal metrics
	journalMetrics *JournalMetrics
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "relay",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Set defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "relay"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Local upstream calls: 1ms - 10s
		cfg.DurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.relayMetrics = NewRelayMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.journalMetrics = NewJournalMetrics(cfg, registry)

	return c
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRelay records a finished relay request.
//
// Parameters:
//   - outcome: "success" or the error kind name
//   - status: HTTP status sent to the caller
//   - duration: total handling time
//   - entries: number of query entries materialized
func (c *Collector) RecordRelay(outcome string, status int, duration time.Duration, entries int) {
	if !c.enabled() {
		return
	}

	c.relayMetrics.RecordRequest(outcome, StatusClass(status), duration, entries)
}

// RecordUpstream records one upstream call. Status is zero when no response
// was received, in which case errorKind names the failure.
func (c *Collector) RecordUpstream(status int, errorKind string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if status == 0 {
		c.upstreamMetrics.RecordError(errorKind, duration)
		return
	}
	c.upstreamMetrics.RecordResponse(StatusClass(status), duration)
}

// RecordJournalWrite records the result of writing one journal record:
// "stored", "dropped" or "failed".
func (c *Collector) RecordJournalWrite(result string) {
	if !c.enabled() {
		return
	}

	c.journalMetrics.RecordWrite(result)
}

// RecordJournalPrune records records removed by retention.
func (c *Collector) RecordJournalPrune(deleted int64) {
	if !c.enabled() {
		return
	}

	c.journalMetrics.RecordPrune(deleted)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StatusClass maps a status code to its class label ("2xx", "4xx", ...).
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
