package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"mercator-hq/relay/pkg/proxy/types"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
	"mercator-hq/relay/pkg/upstream"
)

// UpstreamSpanName names the client span around the upstream call.
const UpstreamSpanName = "upstream.post"

// Upstream is the outbound side of a relay. *upstream.Client implements it.
type Upstream interface {
	// NewRequest builds a JSON POST to target carrying body.
	NewRequest(ctx context.Context, target string, body any) (*http.Request, error)

	// Do sends the request and returns whatever response arrives.
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Relay.
type Option func(*Relay)

// WithMaxResponseBytes caps the size of a buffered upstream body.
// Zero or a negative value means no limit.
func WithMaxResponseBytes(n int64) Option {
	return func(r *Relay) {
		r.maxResponseBytes = n
	}
}

// WithMetrics records upstream latency and failures on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Relay) {
		r.metrics = c
	}
}

// WithTracer wraps each upstream call in a client span and forwards the
// trace context to the upstream in traceparent.
func WithTracer(t *tracing.Tracer) Option {
	return func(r *Relay) {
		r.tracer = t
	}
}

// Relay forwards materialized documents to the upstream and hands back its
// response untouched. It holds no per-request state and is safe for
// concurrent use.
type Relay struct {
	upstream         Upstream
	maxResponseBytes int64
	metrics          *metrics.Collector
	tracer           *tracing.Tracer
}

// NewRelay creates a relay over up.
func NewRelay(up Upstream, opts ...Option) *Relay {
	r := &Relay{upstream: up}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relay sends body as a single JSON POST to target and returns the
// upstream's response. Any response that arrives is a success, whatever its
// status. Failures are returned as *types.AppError:
//
//   - an unusable target is KindInvalidPath
//   - an upstream failure classified as upstream.KindOther is KindOther
//   - everything else (encoding, timeouts, cancellation, connection
//     errors, unreadable bodies) is KindInternal
//
// There are no retries.
func (r *Relay) Relay(ctx context.Context, target string, body any) (*OutgoingResponse, error) {
	slog.DebugContext(ctx, "relaying request", "target", target, "body", body)

	req, err := r.upstream.NewRequest(ctx, target, body)
	if err != nil {
		var targetErr *upstream.TargetError
		if errors.As(err, &targetErr) {
			return nil, types.NewInvalidPathError(err)
		}
		return nil, types.NewInternalError("failed to build upstream request", err)
	}

	ctx, span := r.tracer.Start(ctx, UpstreamSpanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	req = req.WithContext(ctx)
	tracing.Inject(ctx, req.Header)

	start := time.Now()
	resp, err := r.upstream.Do(req)
	if err != nil {
		tracing.SetError(span, err)
		return nil, r.transportError(err, time.Since(start))
	}
	defer resp.Body.Close()

	out, err := r.readResponse(resp)
	r.metrics.RecordUpstream(resp.StatusCode, "", time.Since(start))
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}
	tracing.SetUpstreamAttributes(span, req.URL.Redacted(), out.StatusCode, len(out.Body))

	slog.DebugContext(ctx, "upstream responded",
		"status", out.StatusCode,
		"content_type", out.ContentType,
		"bytes", len(out.Body),
	)
	return out, nil
}

// transportError maps a failure to obtain a response onto the taxonomy.
func (r *Relay) transportError(err error, elapsed time.Duration) error {
	var upErr *upstream.Error
	if !errors.As(err, &upErr) {
		r.metrics.RecordUpstream(0, "unclassified", elapsed)
		return types.NewInternalError("", err)
	}

	r.metrics.RecordUpstream(0, upErr.Kind.String(), elapsed)
	if upErr.Kind == upstream.KindOther {
		return types.NewOtherError(err)
	}
	return types.NewInternalError("", err)
}

// readResponse copies status, content type and body out of resp.
func (r *Relay) readResponse(resp *http.Response) (*OutgoingResponse, error) {
	// A 1xx written as the final status would make net/http commit an implicit 200.
	if resp.StatusCode < http.StatusOK {
		return nil, types.NewInternalError(
			fmt.Sprintf("upstream sent informational status %d as final response", resp.StatusCode), nil)
	}
	out := &OutgoingResponse{StatusCode: resp.StatusCode}

	if values := resp.Header.Values("Content-Type"); len(values) > 0 {
		if !ValidHeaderValue(values[0]) {
			return nil, types.NewInternalError(
				fmt.Sprintf("upstream sent an invalid Content-Type header %q", values[0]), nil)
		}
		out.ContentType = values[0]
	}

	var reader io.Reader = resp.Body
	if r.maxResponseBytes > 0 {
		reader = io.LimitReader(resp.Body, r.maxResponseBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, types.NewInternalError("failed to read upstream response body", err)
	}
	if r.maxResponseBytes > 0 && int64(len(body)) > r.maxResponseBytes {
		return nil, types.NewInternalError(
			fmt.Sprintf("upstream response body exceeds %d bytes", r.maxResponseBytes), nil)
	}
	out.Body = body

	return out, nil
}

// ValidHeaderValue reports whether v may be sent as an HTTP header value:
// no control characters other than horizontal tab.
func ValidHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if (b < ' ' && b != '\t') || b == 0x7f {
			return false
		}
	}
	return true
}
