package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/scrollfeed/bootstrap"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/server"
)

// NewServeCommand runs the HTTP server.
func NewServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the product API, and the mock upstream listing when enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			srv, err := newServer(cmd.Context(), a)
			if err != nil {
				return err
			}
			if err := a.RegisterComponent(server.NewComponent(srv)); err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

// newServer builds the server with every route registered.
func newServer(ctx context.Context, a *app) (*server.Server, error) {
	cfg := a.Cfg
	metrics, err := initTelemetry(ctx, a)
	if err != nil {
		return nil, err
	}
	upstream, err := products.NewUpstream(cfg.Upstream, a.Logger)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, a.Logger)
	srv.ApplyMiddleware(metrics)
	if cfg.Catalog.Enabled {
		srv.RegisterCatalog(products.NewCatalog(cfg.Catalog.Size))
	}
	srv.RegisterAPI(upstream)
	srv.RegisterDefaultEndpoints(cfg.Name, a.Components.HealthAll)
	return srv, nil
}
