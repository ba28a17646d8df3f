package tracing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/relay/pkg/config"
)

func newTestTracer(t *testing.T, sampler string) (*Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		ServiceName: "relay-test",
		Sampler:     sampler,
	}, WithExporter(exp), WithServiceVersion("test"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, exp
}

func flushed(t *testing.T, tracer *Tracer, exp *tracetest.InMemoryExporter) tracetest.SpanStubs {
	t.Helper()
	if err := tracer.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush() error = %v", err)
	}
	return exp.GetSpans()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *config.TracingConfig
		wantErr     bool
		wantEnabled bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "disabled", config: &config.TracingConfig{}, wantEnabled: false},
		{
			name:        "always sampler",
			config:      &config.TracingConfig{Enabled: true, ServiceName: "relay", Sampler: SamplerAlways},
			wantEnabled: true,
		},
		{
			name:    "ratio out of range",
			config:  &config.TracingConfig{Enabled: true, Sampler: SamplerRatio, SampleRatio: 2},
			wantErr: true,
		},
		{
			name:    "unknown sampler",
			config:  &config.TracingConfig{Enabled: true, Sampler: "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, WithExporter(tracetest.NewInMemoryExporter()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer tracer.Shutdown(context.Background())
			if tracer.Enabled() != tt.wantEnabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.wantEnabled)
			}
		})
	}
}

func TestTracer_NilAndDisabledAreNoop(t *testing.T) {
	disabled, err := New(&config.TracingConfig{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for name, tracer := range map[string]*Tracer{"nil": nil, "disabled": disabled} {
		t.Run(name, func(t *testing.T) {
			ctx, span := tracer.Start(context.Background(), "op")
			span.End()
			if span.SpanContext().IsValid() {
				t.Error("noop span has a valid span context")
			}
			if TraceID(ctx) != "" || SpanID(ctx) != "" {
				t.Errorf("TraceID/SpanID = %q/%q, want empty", TraceID(ctx), SpanID(ctx))
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
			if tracer.Enabled() {
				t.Error("Enabled() = true")
			}
		})
	}
}

func TestTracer_StartRecordsSpans(t *testing.T) {
	tracer, exp := newTestTracer(t, SamplerAlways)

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.End()
	parent.End()

	spans := flushed(t, tracer, exp)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "child" || spans[1].Name != "parent" {
		t.Errorf("span names = %q, %q", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("child is not parented to parent")
	}
	if TraceID(ctx) != spans[1].SpanContext.TraceID().String() {
		t.Errorf("TraceID(ctx) = %q, want parent trace", TraceID(ctx))
	}
	if SpanID(ctx) != spans[1].SpanContext.SpanID().String() {
		t.Errorf("SpanID(ctx) = %q, want parent span", SpanID(ctx))
	}

	var service string
	for _, kv := range spans[1].Resource.Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	if service != "relay-test" {
		t.Errorf("service.name = %q, want relay-test", service)
	}
}

func TestTracer_NeverSamplerDropsRootSpans(t *testing.T) {
	tracer, exp := newTestTracer(t, SamplerNever)

	_, span := tracer.Start(context.Background(), "dropped")
	span.End()

	if spans := flushed(t, tracer, exp); len(spans) != 0 {
		t.Errorf("got %d spans, want 0", len(spans))
	}
}

func TestSetError(t *testing.T) {
	tracer, exp := newTestTracer(t, SamplerAlways)

	_, ok := tracer.Start(context.Background(), "ok")
	SetError(ok, nil)
	ok.End()

	_, failed := tracer.Start(context.Background(), "failed")
	SetError(failed, errors.New("connection refused"))
	failed.End()

	spans := flushed(t, tracer, exp)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("ok span status = %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "connection refused" {
		t.Errorf("failed span status = %+v", spans[1].Status)
	}
	if len(spans[1].Events) == 0 || spans[1].Events[0].Name != "exception" {
		t.Errorf("failed span events = %+v, want an exception event", spans[1].Events)
	}
}

func TestInjectExtract(t *testing.T) {
	tracer, _ := newTestTracer(t, SamplerAlways)

	ctx, span := tracer.Start(context.Background(), "client")
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	traceparent := headers.Get("traceparent")
	if traceparent == "" {
		t.Fatal("Inject() wrote no traceparent")
	}
	want := "00-" + TraceID(ctx) + "-" + SpanID(ctx) + "-01"
	if traceparent != want {
		t.Errorf("traceparent = %q, want %q", traceparent, want)
	}

	remote := Extract(context.Background(), headers)
	sc := SpanContext(remote)
	if !sc.IsRemote() || sc.TraceID().String() != TraceID(ctx) {
		t.Errorf("extracted span context = %+v", sc)
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
		wantDesc string
	}{
		{strategy: SamplerAlways, wantDesc: "ParentBased{root:AlwaysOnSampler"},
		{strategy: "", wantDesc: "ParentBased{root:AlwaysOnSampler"},
		{strategy: SamplerNever, wantDesc: "ParentBased{root:AlwaysOffSampler"},
		{strategy: SamplerRatio, ratio: 0.25, wantDesc: "ParentBased{root:TraceIDRatioBased{0.25}"},
		{strategy: SamplerRatio, ratio: -0.1, wantErr: true},
		{strategy: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			sampler, err := createSampler(tt.strategy, tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("createSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := sampler.Description(); !strings.HasPrefix(got, tt.wantDesc) {
				t.Errorf("Description() = %q, want prefix %q", got, tt.wantDesc)
			}
		})
	}
}
