package commands

import (
	"fmt"

	"github.com/kbukum/scrollfeed/config"
	"github.com/kbukum/scrollfeed/feed"
	"github.com/kbukum/scrollfeed/observability"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/redis"
	"github.com/kbukum/scrollfeed/server"
	"github.com/kbukum/scrollfeed/sqlite"
	"github.com/kbukum/scrollfeed/version"
)

const serviceName = "productfeed"

// CatalogConfig controls the in-process mock of the upstream listing.
type CatalogConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Size    int  `yaml:"size" mapstructure:"size"`
}

// AppConfig is the productfeed configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server  server.Config `yaml:"server" mapstructure:"server"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	// Upstream is the product listing the API routes proxy.
	Upstream products.Config `yaml:"upstream" mapstructure:"upstream"`
	// API is the feed API the scroll command pages through.
	API           products.Config      `yaml:"api" mapstructure:"api"`
	Feed          feed.Config          `yaml:"feed" mapstructure:"feed"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	SQLite        sqlite.Config        `yaml:"sqlite" mapstructure:"sqlite"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills in zero-value fields. The base URLs default to this
// server, which serves the catalog itself.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.Get().String()
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Catalog.Size == 0 {
		c.Catalog.Size = products.DefaultCatalogSize
	}

	local := fmt.Sprintf("http://127.0.0.1:%d", c.Server.Port)
	if c.Upstream.HTTP.BaseURL == "" {
		c.Upstream.HTTP.BaseURL = local
	}
	if c.API.HTTP.BaseURL == "" {
		c.API.HTTP.BaseURL = local
	}
	c.Upstream.ApplyDefaults()
	c.API.ApplyDefaults()

	if c.Feed.Store == "" {
		switch {
		case c.Redis.Enabled:
			c.Feed.Store = feed.StoreRedis
		case c.SQLite.Enabled:
			c.Feed.Store = feed.StoreSQLite
		}
	}
	c.Feed.ApplyDefaults()
	c.Redis.Enabled = c.Feed.Store == feed.StoreRedis
	c.SQLite.Enabled = c.Feed.Store == feed.StoreSQLite
	c.Redis.ApplyDefaults()
	c.SQLite.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Catalog.Size < 0 {
		return fmt.Errorf("catalog.size must be non-negative (got: %d)", c.Catalog.Size)
	}
	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream: %w", err)
	}
	if err := c.API.Validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Feed.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return c.Observability.Validate()
}

// loadConfig reads the config file, .env and environment into an AppConfig.
// Defaults and validation are applied by bootstrap.NewApp.
func loadConfig(path string) (*AppConfig, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
