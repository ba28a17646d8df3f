package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Relay specific keys use the "relay." namespace; the HTTP
// keys follow the OpenTelemetry semantic conventions.
const (
	AttrRequestID  = "relay.request_id"
	AttrTarget     = "relay.target"
	AttrEntryCount = "relay.entry_count"
	AttrOutcome    = "relay.outcome"

	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrURLFull        = "url.full"
	AttrResponseBytes  = "http.response.body.size"

	AttrErrorMessage = "error.message"
)

// SetRequestAttributes tags the server span of a relay request.
func SetRequestAttributes(span trace.Span, requestID, method, target string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrTarget, target),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
}

// SetUpstreamAttributes tags the client span of an upstream call.
func SetUpstreamAttributes(span trace.Span, url string, status, bytes int) {
	span.SetAttributes(
		attribute.String(AttrURLFull, url),
		attribute.Int(AttrHTTPStatusCode, status),
		attribute.Int(AttrResponseBytes, bytes),
	)
}

// SetOutcome tags the span in ctx with how the relay request ended:
// "success" or the error kind.
func SetOutcome(ctx context.Context, outcome string, entries int) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrEntryCount, entries),
	)
}
