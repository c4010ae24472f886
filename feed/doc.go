// Package feed is the product feed a user scrolls through.
//
// A Feed pages products through a pagination.Controller, hides the ids the
// user deleted (persisted in an exclusion.Store) and keeps requesting pages
// while everything loaded so far is hidden.
//
//	f, err := feed.New(ctx, cfg, upstream, store, feed.WithLogger(log))
//	visible, err := f.Load(ctx)
//	visible, err = f.Delete(ctx, visible[0].ID)
//	visible, err = f.LoadMore(ctx)
package feed
