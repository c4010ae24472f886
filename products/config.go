package products

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/scrollfeed/httpclient"
)

// BreakerConfig configures the circuit breaker in front of the upstream.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `yaml:"max_requests" mapstructure:"max_requests"`
	// Interval clears the closed-state counts periodically.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Timeout is how long the breaker stays open.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// MinRequests is the number of requests before the ratio is considered.
	MinRequests uint32 `yaml:"min_requests" mapstructure:"min_requests"`
	// FailureRatio trips the breaker once reached.
	FailureRatio float64 `yaml:"failure_ratio" mapstructure:"failure_ratio"`
}

// Config configures an HTTP client for a product listing endpoint.
type Config struct {
	HTTP    httpclient.Config `yaml:"http" mapstructure:"http"`
	Breaker BreakerConfig     `yaml:"breaker" mapstructure:"breaker"`
	// Select lists the product attributes requested from the upstream.
	Select []string `yaml:"select" mapstructure:"select"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
	if c.Breaker.Interval <= 0 {
		c.Breaker.Interval = 5 * time.Second
	}
	if c.Breaker.Timeout <= 0 {
		c.Breaker.Timeout = 3 * time.Second
	}
	if c.Breaker.MinRequests == 0 {
		c.Breaker.MinRequests = 3
	}
	if c.Breaker.FailureRatio <= 0 {
		c.Breaker.FailureRatio = 0.6
	}
	if len(c.Select) == 0 {
		c.Select = []string{"title", "price"}
	}
	c.HTTP.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.BaseURL) == "" {
		return fmt.Errorf("products: base_url is required")
	}
	if c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("products: failure_ratio must be <= 1")
	}
	return c.HTTP.Validate()
}
