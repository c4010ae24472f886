// Package pagination implements an incremental, cache-backed page sequence
// for scrolling lists.
//
// A Strategy derives the fetch key of page i from the page before it, a Cache
// fetches each key at most once (concurrent readers share one fetch), and a
// Controller grows the sequence one page at a time:
//
//	cache := pagination.NewCache[products.Product](fetcher, pagination.WithLogger(log))
//	ctrl, err := pagination.UsePagination(cache, "/api/products", 10)
//	if err := ctrl.RequestMore(ctx); err != nil { ... }
//	items := ctrl.Flattened()
//
// The loaded sequence is append-only. InvalidateAll is the one explicit reset.
package pagination
