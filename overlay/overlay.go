// Package overlay derives the visible list from loaded items and an exclusion
// set, and keeps requesting pages while that list is empty.
package overlay

import (
	"context"

	"github.com/kbukum/scrollfeed/pagination"
)

// Excluded reports whether an id is hidden.
type Excluded interface {
	Contains(id int64) bool
}

// Project returns items whose ids are not excluded, in their original order.
// It does not modify items.
func Project[T pagination.Item](items []T, excluded Excluded) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if excluded != nil && excluded.Contains(it.ItemID()) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ShouldAdvance reports whether another page must be requested: nothing is
// visible and the sequence can still grow.
func ShouldAdvance(visible int, state pagination.State) bool {
	return visible == 0 && state != pagination.StateEnd && state != pagination.StateError
}

// Pager is the part of a pagination controller used for auto-advance.
type Pager[T any] interface {
	RequestMore(ctx context.Context) error
	Snapshot() pagination.Snapshot[T]
}

// AutoAdvance requests pages until the projection is non-empty, the end is
// reached or a fetch fails. It returns the final projection and the error of
// the failing request, if any. A pager already in StateError with nothing
// visible reports its stored error.
func AutoAdvance[T pagination.Item](ctx context.Context, pager Pager[T], excluded Excluded) ([]T, error) {
	for {
		snap := pager.Snapshot()
		visible := Project(snap.Items, excluded)
		if !ShouldAdvance(len(visible), snap.State) {
			if len(visible) == 0 && snap.State == pagination.StateError {
				return visible, snap.Err
			}
			return visible, nil
		}
		if snap.State == pagination.StateLoadingNext {
			// Another caller owns the outstanding request.
			return visible, nil
		}
		if err := pager.RequestMore(ctx); err != nil {
			return Project(pager.Snapshot().Items, excluded), err
		}
	}
}
