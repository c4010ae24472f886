package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/kbukum/scrollfeed/logger"
)

// ErrDetached is returned by a controller whose consumer has detached.
var ErrDetached = errors.New("pagination: controller detached")

// State is the controller's position in its load cycle.
type State int

const (
	// StateIdle means no fetch is outstanding and more pages may exist.
	StateIdle State = iota
	// StateLoadingNext means the fetch for page Size()-1 is outstanding.
	StateLoadingNext
	// StateError means the last fetch failed; RequestMore retries it.
	StateError
	// StateEnd means the strategy has no key for the next page.
	StateEnd
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingNext:
		return "loading_next"
	case StateError:
		return "error"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent read of a controller.
type Snapshot[T any] struct {
	Pages []*Page[T]
	Items []T
	Size  int
	State State
	Err   error
}

// Controller grows a page sequence one page at a time. Page i+1 is only
// requested after page i resolved, and at most one fetch is outstanding.
type Controller[T any] struct {
	cache    *Cache[T]
	strategy Strategy[T]
	log      *logger.Logger

	mu       sync.Mutex
	pages    []*Page[T]
	keys     []Key
	size     int
	state    State
	err      error
	detached bool
	// epoch is bumped by InvalidateAll; results from an older epoch are dropped.
	epoch uint64
	// pending is the key being fetched while in StateLoadingNext.
	pending *Key
}

// ControllerOption configures a Controller.
type ControllerOption[T any] func(*Controller[T])

// WithFallback starts the controller with page already resolved as its first
// page and seeds the cache with it.
func WithFallback[T any](page *Page[T]) ControllerOption[T] {
	return func(c *Controller[T]) {
		if page == nil {
			return
		}
		key, ok := c.strategy.NextKey(0, nil)
		if !ok {
			return
		}
		c.cache.Seed(key, page)
		c.pages = []*Page[T]{page}
		c.keys = []Key{key}
		c.size = 1
		c.state = c.stateAfter(page)
	}
}

// NewController creates a controller drawing pages from cache in the order
// given by strategy.
func NewController[T any](cache *Cache[T], strategy Strategy[T], opts ...ControllerOption[T]) *Controller[T] {
	c := &Controller[T]{
		cache:    cache,
		strategy: strategy,
		log:      cache.log.WithComponent("pagination.controller"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestMore loads the next page. It is a no-op while a page is loading or
// after the end was reached. On failure the size is restored, the state
// becomes StateError and the error is returned; calling RequestMore again
// retries the same key. When ctx ends first the controller returns to the
// state it had before the call.
func (c *Controller[T]) RequestMore(ctx context.Context) error {
	c.mu.Lock()
	if c.detached {
		c.mu.Unlock()
		return ErrDetached
	}
	if c.state == StateLoadingNext || c.state == StateEnd {
		c.mu.Unlock()
		return nil
	}
	var prev *Page[T]
	if n := len(c.pages); n > 0 {
		prev = c.pages[n-1]
	}
	key, ok := c.strategy.NextKey(len(c.pages), prev)
	if !ok {
		c.state = StateEnd
		c.mu.Unlock()
		return nil
	}
	prevState := c.state
	epoch := c.epoch
	c.size++
	c.state = StateLoadingNext
	c.pending = &key
	c.mu.Unlock()

	page, err := c.cache.Get(ctx, key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return nil
	}
	c.pending = nil
	if c.detached {
		return ErrDetached
	}
	if err != nil {
		c.size--
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			c.state = prevState
			return err
		}
		c.state = StateError
		c.err = err
		c.log.Warn("next page failed", logger.Fields(
			logger.FieldKey, key.String(),
			logger.FieldSize, c.size,
			logger.FieldError, err.Error(),
		))
		return err
	}

	c.pages = append(c.pages, page)
	c.keys = append(c.keys, key)
	c.err = nil
	c.state = c.stateAfter(page)
	c.log.Debug("page appended", logger.Fields(
		logger.FieldKey, key.String(),
		logger.FieldPage, len(c.pages)-1,
		logger.FieldItems, page.Len(),
		logger.FieldState, c.state.String(),
	))
	return nil
}

// stateAfter is the state once last has been appended. Callers hold mu or
// own c exclusively.
func (c *Controller[T]) stateAfter(last *Page[T]) State {
	if _, more := c.strategy.NextKey(len(c.pages), last); more {
		return StateIdle
	}
	return StateEnd
}

// Detach stops delivery to this controller. Fetches in flight still fill the
// cache; their results are not appended and RequestMore returns ErrDetached.
func (c *Controller[T]) Detach() {
	c.mu.Lock()
	c.detached = true
	c.mu.Unlock()
}

// InvalidateAll drops the cache entries of this sequence and resets the
// controller to an empty sequence. A fetch in flight is not delivered and
// its result is not cached.
func (c *Controller[T]) InvalidateAll() {
	c.mu.Lock()
	keys := c.keys
	if c.pending != nil {
		keys = append(keys[:len(keys):len(keys)], *c.pending)
		c.pending = nil
	}
	c.pages = nil
	c.keys = nil
	c.size = 0
	c.state = StateIdle
	c.err = nil
	c.epoch++
	c.mu.Unlock()

	for _, k := range keys {
		c.cache.Invalidate(k)
	}
	c.log.Debug("sequence reset", logger.Fields(logger.FieldPage, len(keys)))
}

// Pages returns the resolved pages in request order.
func (c *Controller[T]) Pages() []*Page[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Page[T](nil), c.pages...)
}

// Flattened returns the items of all resolved pages in order. Items repeated
// across pages are kept.
func (c *Controller[T]) Flattened() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return flatten(c.pages)
}

// Size is the number of pages requested, including one that is loading.
func (c *Controller[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// State returns the current state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsAtEnd reports whether the sequence is complete.
func (c *Controller[T]) IsAtEnd() bool { return c.State() == StateEnd }

// IsLoading reports whether the next page is being fetched.
func (c *Controller[T]) IsLoading() bool { return c.State() == StateLoadingNext }

// Err returns the error of the last failed fetch while in StateError.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateError {
		return nil
	}
	return c.err
}

// Snapshot returns pages, items and state read under one lock.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot[T]{
		Pages: append([]*Page[T](nil), c.pages...),
		Items: flatten(c.pages),
		Size:  c.size,
		State: c.state,
	}
	if c.state == StateError {
		s.Err = c.err
	}
	return s
}

func flatten[T any](pages []*Page[T]) []T {
	n := 0
	for _, p := range pages {
		n += p.Len()
	}
	out := make([]T, 0, n)
	for _, p := range pages {
		out = append(out, p.Items...)
	}
	return out
}
