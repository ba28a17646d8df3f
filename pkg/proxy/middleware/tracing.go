package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// RelaySpanName names the server span of a relay request.
const RelaySpanName = "relay.request"

// TracingMiddleware continues the caller's trace (traceparent/tracestate)
// and wraps next in a server span. It must sit inside the mux route so the
// target wildcard is bound. A nil tracer disables the middleware.
//
// The trace ID of a sampled span is echoed in X-Trace-ID. 5xx responses
// mark the span as failed; 4xx do not.
func TracingMiddleware(tracer *tracing.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !tracer.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := tracing.Extract(r.Context(), r.Header)
			ctx, span := tracer.Start(ctx, RelaySpanName, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			tracing.SetRequestAttributes(span, logging.GetRequestID(ctx), r.Method, r.PathValue(proxy.TargetPathValue))
			if sc := span.SpanContext(); sc.IsSampled() {
				w.Header().Set(tracing.TraceIDHeader, sc.TraceID().String())
			}

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, rw.statusCode))
			if rw.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
			}
		})
	}
}
