package pagination

import (
	"fmt"
	"net/url"
)

// Kind names a key derivation strategy.
type Kind string

const (
	KindOffset Kind = "offset"
	KindCursor Kind = "cursor"
)

// Key identifies one page request. Its String form is the cache identity.
type Key struct {
	Source string
	Kind   Kind
	// Page is the sequence position the key was derived for.
	Page  int
	Limit int
	// Cursor is only meaningful for cursor keys with HasCursor set.
	Cursor    string
	HasCursor bool
}

// Skip is the number of items before an offset page.
func (k Key) Skip() int {
	return k.Page * k.Limit
}

// String returns the canonical form of the key:
//
//	offset:        <source>?page=<i>&limit=<L>
//	cursor, first: <source>?limit=<L>
//	cursor, later: <source>?cursor=<C>&limit=<L>
//	cursor, empty: <source>?cursor=&page=<i>&limit=<L>
//
// An empty cursor says nothing about the position, so the page index keeps
// keys derived after a page without a next cursor distinct.
func (k Key) String() string {
	if k.Kind == KindCursor {
		if !k.HasCursor {
			return fmt.Sprintf("%s?limit=%d", k.Source, k.Limit)
		}
		if k.Cursor == "" {
			return fmt.Sprintf("%s?cursor=&page=%d&limit=%d", k.Source, k.Page, k.Limit)
		}
		return fmt.Sprintf("%s?cursor=%s&limit=%d", k.Source, url.QueryEscape(k.Cursor), k.Limit)
	}
	return fmt.Sprintf("%s?page=%d&limit=%d", k.Source, k.Page, k.Limit)
}
