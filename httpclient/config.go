package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/scrollfeed/resilience"
)

const (
	defaultTimeout = 10 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retry != nil {
		c.Retry.ApplyDefaults()
		c.Retry.RetryIf = IsRetryable
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	return nil
}
