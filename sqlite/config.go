package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// Config configures the SQLite deletion store backend.
type Config struct {
	// Enabled selects SQLite as the deletion store backend.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Path is the database file.
	Path string `yaml:"path" mapstructure:"path"`
	// TTL bounds how long a session's ids are kept (e.g. "24h"). Empty keeps them.
	TTL string `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "productfeed.db"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("sqlite path is required")
	}
	if c.TTL != "" {
		if _, err := time.ParseDuration(c.TTL); err != nil {
			return fmt.Errorf("invalid ttl %q: %w", c.TTL, err)
		}
	}
	return nil
}

// SessionTTL returns the parsed TTL, zero when unset.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}
