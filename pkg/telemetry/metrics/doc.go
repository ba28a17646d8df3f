// Package metrics provides Prometheus metrics for the relay.
//
// # Metrics
//
//   - <ns>_requests_total{outcome,status_class}: relay requests. Outcome is
//     "success" or the error kind (invalid_query, internal, ...).
//   - <ns>_request_duration_seconds{outcome}: handling time.
//   - <ns>_materialized_entries: query entries per request.
//   - <ns>_upstream_request_duration_seconds{status_class}: upstream latency.
//   - <ns>_upstream_errors_total{kind}: upstream calls with no response.
//   - <ns>_journal_writes_total{result}: journal writes (stored, dropped, failed).
//   - <ns>_journal_pruned_total: records removed by retention.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//	collector.RecordRelay("success", 200, elapsed, 3)
//
// A nil *Collector, or one whose config is disabled, records nothing, so
// callers never need to check.
package metrics
