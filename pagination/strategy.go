package pagination

import (
	apperrors "github.com/kbukum/scrollfeed/errors"
)

// Strategy derives the key of page pageIndex from the page before it.
// It returns false when no further page should be requested. Implementations
// are pure: the same inputs always produce the same key.
type Strategy[T any] interface {
	Kind() Kind
	NextKey(pageIndex int, prev *Page[T]) (Key, bool)
}

// OffsetStrategy pages by position. A page shorter than the page size,
// including an empty one, is the last page.
type OffsetStrategy[T any] struct {
	source   string
	pageSize int
}

// NewOffsetStrategy creates an offset/limit strategy.
func NewOffsetStrategy[T any](source string, pageSize int) (*OffsetStrategy[T], error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}
	return &OffsetStrategy[T]{source: source, pageSize: pageSize}, nil
}

// Kind returns KindOffset.
func (s *OffsetStrategy[T]) Kind() Kind { return KindOffset }

// NextKey implements Strategy.
func (s *OffsetStrategy[T]) NextKey(pageIndex int, prev *Page[T]) (Key, bool) {
	if prev != nil && prev.Len() < s.pageSize {
		return Key{}, false
	}
	return Key{Source: s.source, Kind: KindOffset, Page: pageIndex, Limit: s.pageSize}, true
}

// CursorStrategy follows the opaque cursor of the previous page. Only an
// empty page ends the sequence; a missing cursor does not.
type CursorStrategy[T any] struct {
	source   string
	pageSize int
}

// NewCursorStrategy creates an opaque-cursor strategy.
func NewCursorStrategy[T any](source string, pageSize int) (*CursorStrategy[T], error) {
	if err := checkPageSize(pageSize); err != nil {
		return nil, err
	}
	return &CursorStrategy[T]{source: source, pageSize: pageSize}, nil
}

// Kind returns KindCursor.
func (s *CursorStrategy[T]) Kind() Kind { return KindCursor }

// NextKey implements Strategy.
func (s *CursorStrategy[T]) NextKey(pageIndex int, prev *Page[T]) (Key, bool) {
	if prev != nil && prev.Len() == 0 {
		return Key{}, false
	}
	key := Key{Source: s.source, Kind: KindCursor, Page: pageIndex, Limit: s.pageSize}
	if pageIndex == 0 || prev == nil {
		return key, true
	}
	key.Cursor = prev.NextCursor
	key.HasCursor = true
	return key, true
}

func checkPageSize(pageSize int) error {
	if pageSize <= 0 {
		return apperrors.InvalidInput("page_size", "must be positive")
	}
	return nil
}
