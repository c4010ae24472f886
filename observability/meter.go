package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scrollfeed/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider must be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the page cache and the HTTP server.
type Metrics struct {
	fetchTotal      metric.Int64Counter
	fetchDuration   metric.Float64Histogram
	cacheHits       metric.Int64Counter
	cacheShared     metric.Int64Counter
	invalidations   metric.Int64Counter
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	fetchTotal, err := meter.Int64Counter("pagination.fetch.total",
		metric.WithDescription("Page fetches issued to the fetcher, by status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagination.fetch.total counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram("pagination.fetch.duration",
		metric.WithDescription("Duration of page fetches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagination.fetch.duration histogram: %w", err)
	}

	cacheHits, err := meter.Int64Counter("pagination.cache.hits",
		metric.WithDescription("Page reads served from the cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagination.cache.hits counter: %w", err)
	}

	cacheShared, err := meter.Int64Counter("pagination.cache.shared",
		metric.WithDescription("Page reads that joined an in-flight fetch"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagination.cache.shared counter: %w", err)
	}

	invalidations, err := meter.Int64Counter("pagination.cache.invalidations",
		metric.WithDescription("Cache entries dropped by invalidation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pagination.cache.invalidations counter: %w", err)
	}

	requestTotal, err := meter.Int64Counter("http.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("http.request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http.request.duration histogram: %w", err)
	}

	return &Metrics{
		fetchTotal:      fetchTotal,
		fetchDuration:   fetchDuration,
		cacheHits:       cacheHits,
		cacheShared:     cacheShared,
		invalidations:   invalidations,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
	}, nil
}

// RecordFetch records a completed page fetch.
func (m *Metrics) RecordFetch(ctx context.Context, source, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	))
	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("source", source),
	))
}

// RecordHit records a read served from the cache.
func (m *Metrics) RecordHit(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordShared records a read that joined an in-flight fetch.
func (m *Metrics) RecordShared(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.cacheShared.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

// RecordInvalidation records n dropped cache entries.
func (m *Metrics) RecordInvalidation(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.invalidations.Add(ctx, int64(n))
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
		attribute.Int("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("method", method),
	))
}
