package observability

import (
	"fmt"
	"time"
)

// Config selects which OpenTelemetry exporters are started.
type Config struct {
	// TracingEnabled starts the OTLP trace exporter.
	TracingEnabled bool `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	// MetricsEnabled starts the OTLP metric exporter.
	MetricsEnabled bool `yaml:"metrics_enabled" mapstructure:"metrics_enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability: sample_rate must be within [0, 1], got %v", c.SampleRate)
	}
	return nil
}

// TracerConfig derives the tracer settings for a service.
func (c *Config) TracerConfig(service, version, env string) TracerConfig {
	return TracerConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		SampleRate:     c.SampleRate,
	}
}

// MeterConfig derives the meter settings for a service.
func (c *Config) MeterConfig(service, version, env string) MeterConfig {
	return MeterConfig{
		ServiceName:    service,
		ServiceVersion: version,
		Environment:    env,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
		Interval:       c.Interval,
	}
}
