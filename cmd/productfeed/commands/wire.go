package commands

import (
	"context"

	"github.com/kbukum/scrollfeed/bootstrap"
	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/feed"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/redis"
	"github.com/kbukum/scrollfeed/sqlite"
)

type app = bootstrap.App[*AppConfig]

// storeBackend registers the component behind the configured deletion store
// and returns an accessor for its KV, valid once the app has started.
func storeBackend(a *app) (func() exclusion.KV, error) {
	cfg := a.Cfg
	switch cfg.Feed.Store {
	case feed.StoreRedis:
		c := redis.NewComponent(cfg.Redis, a.Logger)
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
		return func() exclusion.KV { return c.TextStore() }, nil
	case feed.StoreSQLite:
		c := sqlite.NewComponent(cfg.SQLite, a.Logger)
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
		return func() exclusion.KV { return c.KV() }, nil
	default:
		kv := exclusion.NewMemoryKV(cfg.Feed.SessionTTL)
		return func() exclusion.KV { return kv }, nil
	}
}

// initTelemetry starts the configured exporters, shut down with the app, and
// returns the metric instruments on the global meter.
func initTelemetry(ctx context.Context, a *app) (*observability.Metrics, error) {
	cfg := a.Cfg
	obs := cfg.Observability
	if obs.TracingEnabled {
		tp, err := observability.InitTracer(ctx, obs.TracerConfig(cfg.Name, cfg.Version, cfg.Environment))
		if err != nil {
			return nil, err
		}
		a.OnStop(tp.Shutdown)
	}
	if obs.MetricsEnabled {
		mp, err := observability.InitMeter(ctx, obs.MeterConfig(cfg.Name, cfg.Version, cfg.Environment))
		if err != nil {
			return nil, err
		}
		a.OnStop(mp.Shutdown)
	}
	return observability.NewMetrics(observability.Meter(serviceName))
}

// newSource returns the feed source: the feed API, or the upstream listing
// itself when direct is set.
func newSource(cfg *AppConfig, direct bool, log *logger.Logger) (feed.Source, error) {
	if direct {
		up, err := products.NewUpstream(cfg.Upstream, log)
		if err != nil {
			return nil, err
		}
		return up, nil
	}
	api, err := products.NewAPIClient(cfg.API, log)
	if err != nil {
		return nil, err
	}
	return api, nil
}
