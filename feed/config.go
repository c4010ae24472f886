package feed

import (
	"time"

	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/validation"
)

// Pagination strategies.
const (
	StrategyOffset = "offset"
	StrategyCursor = "cursor"
)

// Deletion store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config configures a Feed.
type Config struct {
	// Strategy is "offset" (page/limit) or "cursor".
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	// Source names the sequence in cache keys. Defaults to the API route
	// of the strategy.
	Source   string `yaml:"source" mapstructure:"source"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`

	// Prefetch loads the first page directly from the upstream at
	// construction, with PrefetchLimit items. Offset strategy only.
	Prefetch      bool `yaml:"prefetch" mapstructure:"prefetch"`
	PrefetchLimit int  `yaml:"prefetch_limit" mapstructure:"prefetch_limit"`

	// Store selects the deletion store backend: memory, redis or sqlite.
	Store      string        `yaml:"store" mapstructure:"store"`
	StoreID    string        `yaml:"store_id" mapstructure:"store_id"`
	SessionTTL time.Duration `yaml:"session_ttl" mapstructure:"session_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyOffset
	}
	if c.Source == "" {
		c.Source = products.RoutePage
		if c.Strategy == StrategyCursor {
			c.Source = products.RouteCursor
		}
	}
	if c.PageSize == 0 {
		c.PageSize = 10
	}
	if c.PrefetchLimit == 0 {
		c.PrefetchLimit = 20
	}
	if c.Store == "" {
		c.Store = StoreMemory
	}
	if c.StoreID == "" {
		c.StoreID = exclusion.DefaultStoreID
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.New().
		OneOf("feed.strategy", c.Strategy, []string{StrategyOffset, StrategyCursor}).
		Min("feed.page_size", c.PageSize, 1).
		Min("feed.prefetch_limit", c.PrefetchLimit, 1).
		OneOf("feed.store", c.Store, []string{StoreMemory, StoreRedis, StoreSQLite}).
		Required("feed.source", c.Source).
		Validate(); err != nil {
		return err
	}
	return nil
}
