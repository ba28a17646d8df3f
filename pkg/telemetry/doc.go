// Package telemetry groups the relay's observability packages.
//
//   - logging: slog setup, request-scoped attributes and credential redaction
//   - metrics: Prometheus collectors for relays, upstream calls and the journal
//   - tracing: OpenTelemetry spans with W3C trace context forwarded upstream
//   - health: concurrent readiness checks behind /ready
//
// Each subpackage is configured from the telemetry section of
// config.Config and wired by the run command.
package telemetry
