package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	return m, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetrics_RecordsCacheActivity(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordFetch(ctx, "/api/products", "ok", 10*time.Millisecond)
	m.RecordFetch(ctx, "/api/products", "error", 5*time.Millisecond)
	m.RecordHit(ctx, "/api/products")
	m.RecordShared(ctx, "/api/products")
	m.RecordShared(ctx, "/api/products")
	m.RecordInvalidation(ctx, 3)
	m.RecordInvalidation(ctx, 0)

	tests := []struct {
		name string
		want int64
	}{
		{"pagination.fetch.total", 2},
		{"pagination.cache.hits", 1},
		{"pagination.cache.shared", 2},
		{"pagination.cache.invalidations", 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := sumOf(t, reader, tc.name); got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordFetch(ctx, "s", "ok", time.Millisecond)
	m.RecordHit(ctx, "s")
	m.RecordShared(ctx, "s")
	m.RecordInvalidation(ctx, 1)
	m.RecordRequest(ctx, "/", "GET", 200, time.Millisecond)
}

func TestMetrics_RecordRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordRequest(context.Background(), "/api/products", "GET", 200, time.Millisecond)
	if got := sumOf(t, reader, "http.request.total"); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
}

func TestStartSpan_RecordsError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), SpanPageFetch)
	SetSpanError(ctx, context.DeadlineExceeded)
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanPageFetch {
		t.Errorf("expected span %q, got %q", SpanPageFetch, spans[0].Name)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected the error event, got %d events", len(spans[0].Events))
	}
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.Interval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected sample rate error")
	}

	tc := cfg.TracerConfig("svc", "1.2.3", "test")
	if tc.ServiceName != "svc" || tc.Endpoint != cfg.Endpoint {
		t.Errorf("unexpected tracer config %+v", tc)
	}
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tc := range tests {
		if got := samplerFor(tc.rate).Description(); got != tc.want {
			t.Errorf("rate %v: expected %q, got %q", tc.rate, tc.want, got)
		}
	}
}
