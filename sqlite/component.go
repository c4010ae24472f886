package sqlite

import (
	"context"
	"fmt"

	"github.com/kbukum/scrollfeed/component"
	"github.com/kbukum/scrollfeed/logger"
)

// Component opens and closes the SQLite KV with the component registry.
type Component struct {
	cfg Config
	kv  *KV
	log *logger.Logger
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a SQLite component.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: logger.OrGlobal(log, "sqlite")}
}

// KV returns the opened store, or nil if not started.
func (c *Component) KV() *KV { return c.kv }

// Name returns the component name.
func (c *Component) Name() string { return "sqlite" }

// Start opens the database file.
func (c *Component) Start(ctx context.Context) error {
	kv, err := Open(c.cfg.Path, c.cfg.SessionTTL())
	if err != nil {
		return fmt.Errorf("sqlite start: %w", err)
	}
	c.kv = kv
	c.log.Info("SQLite store opened", logger.Fields("path", c.cfg.Path))
	return nil
}

// Stop closes the database.
func (c *Component) Stop(_ context.Context) error {
	if c.kv == nil {
		return nil
	}
	return c.kv.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.kv == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "sqlite not opened"}
	}
	if err := c.kv.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup display.
func (c *Component) Describe() component.Description {
	return component.Description{Name: "SQLite", Type: "sqlite", Details: c.cfg.Path}
}
