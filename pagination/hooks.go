package pagination

// UsePagination returns an offset/limit controller over source. An optional
// fallback page is used as the already-resolved first page.
func UsePagination[T any](cache *Cache[T], source string, pageSize int, fallback ...*Page[T]) (*Controller[T], error) {
	strategy, err := NewOffsetStrategy[T](source, pageSize)
	if err != nil {
		return nil, err
	}
	var opts []ControllerOption[T]
	if len(fallback) > 0 {
		opts = append(opts, WithFallback(fallback[0]))
	}
	return NewController[T](cache, strategy, opts...), nil
}

// UseCursorPagination returns a cursor controller over source.
func UseCursorPagination[T any](cache *Cache[T], source string, pageSize int) (*Controller[T], error) {
	strategy, err := NewCursorStrategy[T](source, pageSize)
	if err != nil {
		return nil, err
	}
	return NewController[T](cache, strategy), nil
}
