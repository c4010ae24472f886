package redis

import (
	"fmt"
	"time"
)

// Config holds Redis connection configuration.
type Config struct {
	// Enabled selects Redis as the deletion store backend.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr"`

	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`

	// PoolSize is the maximum number of socket connections.
	PoolSize     int `yaml:"pool_size" mapstructure:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
	MaxRetries   int `yaml:"max_retries" mapstructure:"max_retries"`

	// DialTimeout is the timeout for establishing new connections (e.g. "5s").
	DialTimeout  string `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  string `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout" mapstructure:"write_timeout"`

	// KeyPrefix is prepended to every stored key.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// TTL bounds how long a session's ids are kept (e.g. "24h").
	TTL string `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "productfeed"
	}
	if c.TTL == "" {
		c.TTL = "24h"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	for name, v := range map[string]string{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"ttl":           c.TTL,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// SessionTTL returns the parsed TTL.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}
