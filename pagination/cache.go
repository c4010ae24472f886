package pagination

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/observability"
)

// Stats counts cache activity since creation.
type Stats struct {
	// Fetches is the number of calls made to the fetcher.
	Fetches int64
	// Hits is the number of reads served from a cached page.
	Hits int64
	// Shared is the number of reads that joined a fetch already in flight.
	Shared int64
	// Failures is the number of fetches that ended in an error.
	Failures int64
	// Entries is the number of keys currently holding a page or a failure.
	Entries int
}

// CacheOption configures a Cache.
type CacheOption func(*cacheOptions)

type cacheOptions struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// WithLogger sets the logger used by the cache and its controllers.
func WithLogger(l *logger.Logger) CacheOption {
	return func(o *cacheOptions) { o.log = l }
}

// WithMetrics records cache activity on the given instruments.
func WithMetrics(m *observability.Metrics) CacheOption {
	return func(o *cacheOptions) { o.metrics = m }
}

type entry[T any] struct {
	page *Page[T]
	err  error
}

// Cache maps keys to fetched pages. Each key is fetched at most once until
// it is invalidated; a failed fetch is kept as a failure and fetched again
// on the next Get for that key.
type Cache[T any] struct {
	fetcher Fetcher[T]
	log     *logger.Logger
	metrics *observability.Metrics
	group   singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry[T]
	// generation of each key, bumped on invalidation so that a fetch started
	// before the invalidation does not repopulate the entry.
	generation map[string]uint64
	// order lists keys by first request since the last truncation.
	order     []string
	positions map[string]int
	stats     Stats
}

// NewCache creates a cache over fetcher.
func NewCache[T any](fetcher Fetcher[T], opts ...CacheOption) *Cache[T] {
	var o cacheOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{
		fetcher:    fetcher,
		log:        logger.OrGlobal(o.log, "pagination.cache"),
		metrics:    o.metrics,
		entries:    make(map[string]*entry[T]),
		generation: make(map[string]uint64),
		positions:  make(map[string]int),
	}
}

// Get returns the page for key, fetching it if it is not cached. Concurrent
// callers for the same key share one fetch. The fetch is not tied to ctx:
// when ctx ends first Get returns ctx.Err() and the fetch still fills the
// cache for the next reader.
func (c *Cache[T]) Get(ctx context.Context, key Key) (*Page[T], error) {
	id := key.String()

	c.mu.Lock()
	c.track(id)
	if e, ok := c.entries[id]; ok && e.err == nil {
		c.stats.Hits++
		c.mu.Unlock()
		c.metrics.RecordHit(ctx, key.Source)
		return e.page, nil
	}
	gen := c.generation[id]
	c.mu.Unlock()

	var leader bool
	ch := c.group.DoChan(id, func() (interface{}, error) {
		leader = true
		return c.fetch(context.WithoutCancel(ctx), key, id, gen)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if !leader {
			c.mu.Lock()
			c.stats.Shared++
			c.mu.Unlock()
			c.metrics.RecordShared(ctx, key.Source)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Page[T]), nil
	}
}

func (c *Cache[T]) fetch(ctx context.Context, key Key, id string, gen uint64) (*Page[T], error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPageFetch, trace.WithAttributes(
		attribute.String(observability.AttrPageKey, id),
		attribute.String(observability.AttrSource, key.Source),
		attribute.Int(observability.AttrPageIndex, key.Page),
	))
	defer span.End()

	start := time.Now()
	page, err := c.fetcher.Fetch(ctx, key)
	switch {
	case err != nil:
		if _, ok := apperrors.AsAppError(err); !ok {
			err = apperrors.FetchFailed(id, err)
		}
	case page == nil:
		err = apperrors.MalformedPage(id, "fetcher returned no page")
	}
	elapsed := time.Since(start)

	c.mu.Lock()
	c.stats.Fetches++
	if err != nil {
		c.stats.Failures++
	}
	if c.generation[id] == gen {
		c.entries[id] = &entry[T]{page: page, err: err}
	}
	c.mu.Unlock()

	if err != nil {
		observability.SetSpanError(ctx, err)
		c.metrics.RecordFetch(ctx, key.Source, "error", elapsed)
		c.log.Warn("page fetch failed", logger.Fields(
			logger.FieldKey, id,
			logger.FieldError, err.Error(),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		return nil, err
	}

	span.SetAttributes(attribute.Int(observability.AttrPageItems, page.Len()))
	c.metrics.RecordFetch(ctx, key.Source, "ok", elapsed)
	c.log.Debug("page fetched", logger.Fields(
		logger.FieldKey, id,
		logger.FieldItems, page.Len(),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return page, nil
}

// Peek returns the cached state of key without fetching. ok is false when
// nothing is cached; err is the stored failure of the last fetch, if any.
func (c *Cache[T]) Peek(key Key) (page *Page[T], err error, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[key.String()]
	if !found {
		return nil, nil, false
	}
	return e.page, e.err, true
}

// Seed stores page for key unless the key already holds a page.
func (c *Cache[T]) Seed(key Key, page *Page[T]) {
	if page == nil {
		return
	}
	id := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.track(id)
	if e, ok := c.entries[id]; ok && e.err == nil {
		return
	}
	c.entries[id] = &entry[T]{page: page}
}

// MutateLocal replaces the cached page for key with update(current) without
// fetching. It returns false when key holds no page. A nil result from update
// leaves the entry unchanged.
func (c *Cache[T]) MutateLocal(key Key, update func(*Page[T]) *Page[T]) bool {
	id := key.String()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || e.err != nil {
		return false
	}
	if next := update(e.page); next != nil {
		c.entries[id] = &entry[T]{page: next}
	}
	return true
}

// Invalidate drops the entry for key; the next Get fetches it again.
func (c *Cache[T]) Invalidate(key Key) {
	id := key.String()
	c.mu.Lock()
	n := c.drop(id)
	c.mu.Unlock()
	c.metrics.RecordInvalidation(context.Background(), n)
}

// InvalidateFrom drops every entry at or after sequence position pos.
// Positions follow the order in which keys were first requested.
func (c *Cache[T]) InvalidateFrom(pos int) {
	if pos < 0 {
		pos = 0
	}
	c.mu.Lock()
	n := 0
	if pos < len(c.order) {
		for _, id := range c.order[pos:] {
			n += c.drop(id)
			delete(c.positions, id)
		}
		c.order = c.order[:pos]
	}
	c.mu.Unlock()
	c.metrics.RecordInvalidation(context.Background(), n)
	c.log.Debug("cache truncated", logger.Fields(logger.FieldPage, pos, "dropped", n))
}

// InvalidateAll drops every entry.
func (c *Cache[T]) InvalidateAll() {
	c.InvalidateFrom(0)
}

// Stats returns a snapshot of cache counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// drop removes id and makes in-flight fetches for it stale. Callers hold mu.
func (c *Cache[T]) drop(id string) int {
	c.generation[id]++
	c.group.Forget(id)
	if _, ok := c.entries[id]; ok {
		delete(c.entries, id)
		return 1
	}
	return 0
}

// track records the sequence position of id on first request. Callers hold mu.
func (c *Cache[T]) track(id string) {
	if _, ok := c.positions[id]; ok {
		return
	}
	c.positions[id] = len(c.order)
	c.order = append(c.order, id)
}
