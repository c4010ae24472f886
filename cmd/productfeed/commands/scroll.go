package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/scrollfeed/bootstrap"
	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/feed"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
	"github.com/kbukum/scrollfeed/products"
)

type scrollOptions struct {
	pages   int
	all     bool
	deletes []int64
	session string
	direct  bool
	clear   bool
}

// NewScrollCommand pages through the feed like a scrolling client and prints
// the visible products.
func NewScrollCommand(configFile *string) *cobra.Command {
	var opts scrollOptions

	cmd := &cobra.Command{
		Use:   "scroll",
		Short: "Page through the feed and print the visible products",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := bootstrap.NewApp(cfg)
			if err != nil {
				return err
			}
			backend, err := storeBackend(a)
			if err != nil {
				return err
			}
			metrics, err := initTelemetry(cmd.Context(), a)
			if err != nil {
				return err
			}
			return a.RunTask(cmd.Context(), func(ctx context.Context) error {
				return scroll(ctx, a.Cfg, opts, backend(), cmd.OutOrStdout(), a.Logger, metrics)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.pages, "pages", "n", 1, "number of pages to request")
	cmd.Flags().BoolVar(&opts.all, "all", false, "scroll until the end")
	cmd.Flags().Int64SliceVarP(&opts.deletes, "delete", "d", nil, "product ids to delete after scrolling")
	cmd.Flags().StringVar(&opts.session, "session", "", "session id of the deletion store (new when empty)")
	cmd.Flags().BoolVar(&opts.direct, "direct", false, "read the upstream listing instead of the feed API")
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "forget the session's deletions first")
	return cmd
}

func scroll(ctx context.Context, cfg *AppConfig, opts scrollOptions, kv exclusion.KV, out io.Writer, log *logger.Logger, metrics *observability.Metrics) error {
	src, err := newSource(cfg, opts.direct, log)
	if err != nil {
		return err
	}
	session := opts.session
	if session == "" {
		session = feed.NewSessionID()
	}
	store := exclusion.NewStore(kv, session, cfg.Feed.StoreID, log)
	if opts.clear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
	}

	f, err := feed.New(ctx, cfg.Feed, src, store, feed.WithLogger(log), feed.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer f.Close()

	visible, err := f.Load(ctx)
	for i := 1; err == nil && !f.IsAtEnd() && (opts.all || i < opts.pages); i++ {
		visible, err = f.LoadMore(ctx)
	}
	for _, id := range opts.deletes {
		if err != nil {
			break
		}
		visible, err = f.Delete(ctx, id)
	}

	fmt.Fprintf(out, "session: %s\n", session)
	render(out, visible, f, err)
	return err
}

func render(out io.Writer, visible []products.Product, f *feed.Feed, err error) {
	fmt.Fprintln(out, "Infinite scroll example")
	for _, p := range visible {
		fmt.Fprintf(out, "%4d  %-24s %8.2f\n", p.ID, p.Title, p.Price)
	}
	switch {
	case err != nil:
		fmt.Fprintln(out, "Error occurred")
	case f.IsAtEnd():
		fmt.Fprintln(out, "Reached to the end")
	default:
		fmt.Fprintf(out, "pages loaded: %d, more available\n", f.Size())
	}
}
