package products

import (
	"context"

	"github.com/kbukum/scrollfeed/pagination"
)

// PageSource serves offset pages.
type PageSource interface {
	Page(ctx context.Context, page, limit int) ([]Product, error)
}

// CursorSource serves cursor pages.
type CursorSource interface {
	Cursor(ctx context.Context, cursor string, limit int) (*CursorPage, error)
}

var (
	_ PageSource   = (*Upstream)(nil)
	_ PageSource   = (*APIClient)(nil)
	_ CursorSource = (*Upstream)(nil)
	_ CursorSource = (*APIClient)(nil)
)

// OffsetFetcher reads offset keys from src.
func OffsetFetcher(src PageSource) pagination.Fetcher[Product] {
	return pagination.FetcherFunc[Product](func(ctx context.Context, key pagination.Key) (*pagination.Page[Product], error) {
		items, err := src.Page(ctx, key.Page, key.Limit)
		if err != nil {
			return nil, err
		}
		return &pagination.Page[Product]{Items: items}, nil
	})
}

// CursorFetcher reads cursor keys from src. A key carrying an empty cursor
// follows a page that had no next cursor; it resolves to an empty page
// without a request, which ends the sequence.
func CursorFetcher(src CursorSource) pagination.Fetcher[Product] {
	return pagination.FetcherFunc[Product](func(ctx context.Context, key pagination.Key) (*pagination.Page[Product], error) {
		if key.HasCursor && key.Cursor == "" {
			return &pagination.Page[Product]{}, nil
		}
		page, err := src.Cursor(ctx, key.Cursor, key.Limit)
		if err != nil {
			return nil, err
		}
		return &pagination.Page[Product]{
			Items:         page.Data,
			NextCursor:    page.NextCursor,
			HasNextCursor: page.NextCursor != "",
		}, nil
	})
}
