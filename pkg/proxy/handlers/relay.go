package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/proxy/types"
	"mercator-hq/relay/pkg/telemetry/logging"
	"mercator-hq/relay/pkg/telemetry/metrics"
	"mercator-hq/relay/pkg/telemetry/tracing"
)

// Relayer performs the upstream call. *proxy.Relay implements it.
type Relayer interface {
	Relay(ctx context.Context, target string, body any) (*proxy.OutgoingResponse, error)
}

// Recorder receives every finished exchange. *recorder.Recorder implements
// it.
type Recorder interface {
	Record(ctx context.Context, req *proxy.RequestMetadata, resp *proxy.ResponseMetadata) bool
}

// RelayHandler serves the relay route: it materializes the query string
// into a JSON document, relays it to the target taken from the path and
// mirrors the upstream response back.
type RelayHandler struct {
	relay    Relayer
	grammar  materialize.Grammar
	recorder Recorder
	metrics  *metrics.Collector
}

// NewRelayHandler creates a relay handler. recorder and collector may be
// nil.
func NewRelayHandler(relay Relayer, grammar materialize.Grammar, recorder Recorder, collector *metrics.Collector) *RelayHandler {
	return &RelayHandler{
		relay:    relay,
		grammar:  grammar,
		recorder: recorder,
		metrics:  collector,
	}
}

// ServeHTTP implements http.Handler. The route must bind the wildcard
// {target...}.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	meta := proxy.ExtractRequestMetadata(r, logging.GetRequestID(ctx))

	var resp *proxy.ResponseMetadata
	defer func() {
		h.finish(ctx, meta, resp)
	}()

	fail := func(err error) {
		appErr := proxy.WriteError(w, r.WithContext(ctx), err)
		resp = proxy.ResponseFromError(appErr, time.Since(start))
	}

	target, err := proxy.ExtractTarget(r)
	if err != nil {
		fail(err)
		return
	}
	ctx = logging.WithTarget(ctx, target)

	entries, err := materialize.ParseQuery(r.URL.RawQuery)
	if err != nil {
		fail(proxy.MaterializeError(err))
		return
	}
	meta.EntryCount = len(entries)

	document, err := materialize.Materialize(entries, h.grammar)
	if err != nil {
		fail(proxy.MaterializeError(err))
		return
	}
	meta.Document = document

	out, err := h.relay.Relay(ctx, target, document)
	if err != nil {
		fail(err)
		return
	}

	if err := out.WriteResponse(w); err != nil {
		// Headers are already out; the caller went away mid-body.
		slog.WarnContext(ctx, "failed to write relayed response",
			"status", out.StatusCode,
			"error", err,
		)
	}
	resp = proxy.ResponseFromOutgoing(out, time.Since(start))
}

func (h *RelayHandler) finish(ctx context.Context, meta *proxy.RequestMetadata, resp *proxy.ResponseMetadata) {
	if resp == nil {
		// A panic unwound the handler; recovery middleware answers.
		resp = proxy.ResponseFromError(types.NewInternalError("handler aborted", nil), time.Since(meta.Timestamp))
	}

	h.metrics.RecordRelay(resp.Outcome(), resp.StatusCode, resp.Latency, meta.EntryCount)
	tracing.SetOutcome(ctx, resp.Outcome(), meta.EntryCount)

	slog.DebugContext(ctx, "relay finished",
		"outcome", resp.Outcome(),
		"status", resp.StatusCode,
		"entries", meta.EntryCount,
		"latency_ms", resp.Latency.Milliseconds(),
	)

	if h.recorder != nil {
		h.recorder.Record(ctx, meta, resp)
	}
}
