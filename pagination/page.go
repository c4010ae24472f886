package pagination

import "context"

// Item is a record identified by id alone.
type Item interface {
	ItemID() int64
}

// Page is the payload fetched for one key. Offset pages leave the cursor
// fields zero.
type Page[T any] struct {
	Items         []T
	NextCursor    string
	HasNextCursor bool
}

// Len returns the number of items, zero for a nil page.
func (p *Page[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// Fetcher loads the page for a key. Implementations own transport concerns
// such as timeouts and retries.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, key Key) (*Page[T], error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[T any] func(ctx context.Context, key Key) (*Page[T], error)

// Fetch calls f(ctx, key).
func (f FetcherFunc[T]) Fetch(ctx context.Context, key Key) (*Page[T], error) {
	return f(ctx, key)
}
