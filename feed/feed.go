package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
	"github.com/kbukum/scrollfeed/overlay"
	"github.com/kbukum/scrollfeed/pagination"
	"github.com/kbukum/scrollfeed/products"
)

// Source serves both page shapes a feed can read.
type Source interface {
	products.PageSource
	products.CursorSource
}

// Option configures a Feed.
type Option func(*options)

type options struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// WithLogger sets the feed logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records cache metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// NewSessionID returns a fresh session id for keying the deletion store.
func NewSessionID() string {
	return uuid.NewString()
}

// Feed is one user's view of the product sequence.
type Feed struct {
	cfg   Config
	cache *pagination.Cache[products.Product]
	ctrl  *pagination.Controller[products.Product]
	store exclusion.Store
	log   *logger.Logger

	mu       sync.RWMutex
	excluded *exclusion.Set
}

// New builds a feed over src and loads the persisted deletions from store.
// A store that cannot be read leaves the feed with no deletions.
func New(ctx context.Context, cfg Config, src Source, store exclusion.Store, opts ...Option) (*Feed, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.OrGlobal(o.log, "feed")

	f := &Feed{cfg: cfg, store: store, log: log}

	var err error
	switch cfg.Strategy {
	case StrategyCursor:
		f.cache = pagination.NewCache(products.CursorFetcher(src),
			pagination.WithLogger(o.log), pagination.WithMetrics(o.metrics))
		f.ctrl, err = pagination.UseCursorPagination(f.cache, cfg.Source, cfg.PageSize)
	default:
		f.cache = pagination.NewCache(products.OffsetFetcher(src),
			pagination.WithLogger(o.log), pagination.WithMetrics(o.metrics))
		f.ctrl, err = pagination.UsePagination(f.cache, cfg.Source, cfg.PageSize, f.prefetch(ctx, src)...)
	}
	if err != nil {
		return nil, err
	}

	f.excluded = f.loadExcluded(ctx)
	log.Info("feed ready", logger.Fields(
		logger.FieldStrategy, cfg.Strategy,
		logger.FieldSource, cfg.Source,
		logger.FieldSize, f.ctrl.Size(),
		"excluded", f.excluded.Len(),
	))
	return f, nil
}

// prefetch returns the first page read directly from the upstream, if
// configured and available.
func (f *Feed) prefetch(ctx context.Context, src Source) []*pagination.Page[products.Product] {
	if !f.cfg.Prefetch {
		return nil
	}
	items, err := src.Page(ctx, 0, f.cfg.PrefetchLimit)
	if err != nil {
		f.log.Warn("prefetch failed, loading on demand", logger.ErrorFields("prefetch", err))
		return nil
	}
	return []*pagination.Page[products.Product]{{Items: items}}
}

func (f *Feed) loadExcluded(ctx context.Context) *exclusion.Set {
	if f.store == nil {
		return exclusion.NewSet()
	}
	set, err := f.store.Load(ctx)
	if err != nil {
		f.log.Warn("deletion store unavailable, starting empty", logger.ErrorFields("load", err))
		return exclusion.NewSet()
	}
	return set
}

func (f *Feed) set() *exclusion.Set {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.excluded
}

// Visible returns the loaded products that were not deleted.
func (f *Feed) Visible() []products.Product {
	return overlay.Project(f.ctrl.Flattened(), f.set())
}

// Load requests pages until something is visible or the sequence ended.
func (f *Feed) Load(ctx context.Context) ([]products.Product, error) {
	return overlay.AutoAdvance[products.Product](ctx, f.ctrl, f.set())
}

// LoadMore requests the next page, then keeps advancing while nothing is
// visible.
func (f *Feed) LoadMore(ctx context.Context) ([]products.Product, error) {
	if err := f.ctrl.RequestMore(ctx); err != nil {
		return f.Visible(), err
	}
	return f.Load(ctx)
}

// Delete hides id: it is persisted first, then added to the in-memory set.
// A store failure is logged and the id stays hidden for this feed only.
// Pages are requested afterwards if nothing is left visible.
func (f *Feed) Delete(ctx context.Context, id int64) ([]products.Product, error) {
	if id <= 0 {
		return f.Visible(), apperrors.InvalidInput("id", fmt.Sprintf("must be positive (got %d)", id))
	}
	if f.store != nil {
		if err := f.store.Add(ctx, id); err != nil {
			f.log.Warn("deletion not persisted", logger.Fields(
				logger.FieldItemID, id,
				logger.FieldError, err.Error(),
			))
		}
	}
	f.set().Add(id)
	f.log.Debug("product deleted", logger.Fields(logger.FieldItemID, id))
	return f.Load(ctx)
}

// ClearDeleted forgets every deletion, persisted and in memory.
func (f *Feed) ClearDeleted(ctx context.Context) error {
	if f.store != nil {
		if err := f.store.Clear(ctx); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.excluded = exclusion.NewSet()
	f.mu.Unlock()
	return nil
}

// Refresh drops every loaded page and loads the sequence again.
func (f *Feed) Refresh(ctx context.Context) ([]products.Product, error) {
	f.ctrl.InvalidateAll()
	return f.Load(ctx)
}

// Close detaches the feed from its controller.
func (f *Feed) Close() {
	f.ctrl.Detach()
}

// Deleted returns the deleted ids in deletion order.
func (f *Feed) Deleted() []int64 { return f.set().IDs() }

// State returns the controller state.
func (f *Feed) State() pagination.State { return f.ctrl.State() }

// IsAtEnd reports whether the sequence is complete.
func (f *Feed) IsAtEnd() bool { return f.ctrl.IsAtEnd() }

// IsLoading reports whether a next page is in flight.
func (f *Feed) IsLoading() bool { return f.ctrl.IsLoading() }

// Err returns the last fetch error while in the error state.
func (f *Feed) Err() error { return f.ctrl.Err() }

// Size returns the number of requested pages.
func (f *Feed) Size() int { return f.ctrl.Size() }

// Stats returns the page cache counters.
func (f *Feed) Stats() pagination.Stats { return f.cache.Stats() }
