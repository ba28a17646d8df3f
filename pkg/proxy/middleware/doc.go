// Package middleware provides HTTP middleware for the relay's cross-cutting
// concerns: request IDs, panic recovery, access logging, tracing and load
// shedding.
//
// # Middleware Chain
//
// The server wraps every route as
//
//	handler = RequestID(Recovery(Logging(mux)))
//
// and the relay route additionally as
//
//	relay = Tracing(Auth(RateLimit(Concurrency(relayHandler))))
//
// RequestID runs first so that every log line written further down the chain,
// including the panic log and the access log, carries the request ID.
//
// # Request ID
//
// RequestIDMiddleware reuses a well-formed X-Request-ID header from the client
// and otherwise generates a UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The ID is stored with logging.WithRequestID, so any slog call that passes the
// request context gets a request_id attribute.
//
// # Logging
//
// LoggingMiddleware writes one "request completed" record per request, at INFO
// for 1xx-3xx, WARN for 4xx and ERROR for 5xx, with method, path, status,
// bytes, latency_ms and remote_addr.
//
// # Recovery
//
// RecoveryMiddleware turns a handler panic into a plain-text 500 with the
// Internal error body and logs the stack trace.
//
// # Rate Limiting
//
// RateLimitMiddleware applies a global token bucket (golang.org/x/time/rate).
// Rejected requests get 429 Too Many Requests and a Retry-After header.
// ConcurrencyMiddleware caps requests in flight and answers 503 once every
// slot is held.
//
// # Tracing
//
// TracingMiddleware continues a caller's W3C trace context and opens the
// relay.request server span.
package middleware
