// Package tracing provides OpenTelemetry tracing for the relay.
//
// When enabled, every relay request gets a server span that continues the
// caller's W3C trace context, and every upstream call gets a client span
// whose context is forwarded to the device in the traceparent header:
//
//	caller --traceparent--> relay.request --> upstream.post --traceparent--> device
//
// Spans are exported over OTLP/gRPC in batches. Sampling is "always",
// "never" or "ratio", each wrapped in ParentBased so an upstream sampling
// decision wins over the local one.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(version))
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "operation")
//	defer span.End()
//
// A nil or disabled *Tracer hands out noop spans, so callers never branch
// on whether tracing is configured.
package tracing
