package pagination

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/kbukum/scrollfeed/errors"
)

func cursorKey(page, limit int, cursor string) Key {
	k := Key{Source: "/api/products/cursor", Kind: KindCursor, Page: page, Limit: limit}
	if page > 0 {
		k.Cursor, k.HasCursor = cursor, true
	}
	return k
}

func TestController_OffsetShortPageEnds(t *testing.T) {
	f := newScriptedFetcher().
		set(offsetKey(0, 10), &Page[item]{Items: items(1, 10)}).
		set(offsetKey(1, 10), &Page[item]{Items: items(11, 10)}).
		set(offsetKey(2, 10), &Page[item]{Items: items(21, 4)})
	ctrl, err := UsePagination(newTestCache(f), "/api/products", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	var previous []item
	for i := 0; i < 3; i++ {
		if err := ctrl.RequestMore(ctx); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		current := ctrl.Flattened()
		for j := range previous {
			if current[j] != previous[j] {
				t.Fatalf("request %d: item %d changed from %v to %v", i, j, previous[j], current[j])
			}
		}
		previous = current
	}

	if got := len(ctrl.Flattened()); got != 24 {
		t.Errorf("expected 24 items, got %d", got)
	}
	if !ctrl.IsAtEnd() {
		t.Errorf("expected end, got state %s", ctrl.State())
	}
	if ctrl.Size() != 3 || len(ctrl.Pages()) != 3 {
		t.Errorf("expected 3 pages, got size %d", ctrl.Size())
	}

	if err := ctrl.RequestMore(ctx); err != nil {
		t.Fatalf("expected no-op at end, got %v", err)
	}
	if n := f.callCount(); n != 3 {
		t.Errorf("expected 3 fetches, got %d", n)
	}
}

func TestController_CursorEmptyPageEnds(t *testing.T) {
	f := newScriptedFetcher().
		set(cursorKey(0, 5, ""), &Page[item]{Items: items(1, 5), NextCursor: "c1", HasNextCursor: true}).
		set(cursorKey(1, 5, "c1"), &Page[item]{})
	ctrl, err := UseCursorPagination(newTestCache(f), "/api/products/cursor", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := ctrl.RequestMore(ctx); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if !ctrl.IsAtEnd() {
		t.Errorf("expected end, got state %s", ctrl.State())
	}
	if got := len(ctrl.Flattened()); got != 5 {
		t.Errorf("expected 5 items, got %d", got)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls[1] != "/api/products/cursor?cursor=c1&limit=5" {
		t.Errorf("expected second fetch to carry c1, got %q", f.calls[1])
	}
}

func TestController_CursorWithoutNextCursorFetchesEachPage(t *testing.T) {
	var keys []string
	f := FetcherFunc[item](func(ctx context.Context, key Key) (*Page[item], error) {
		keys = append(keys, key.String())
		if len(keys) > 3 {
			return &Page[item]{}, nil
		}
		return &Page[item]{Items: items(len(keys)*10, 2)}, nil
	})
	ctrl, err := UseCursorPagination(newTestCache(f), "/c", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 6 && !ctrl.IsAtEnd(); i++ {
		if err := ctrl.RequestMore(ctx); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
	}

	if !ctrl.IsAtEnd() {
		t.Fatalf("expected end, got state %s with %v", ctrl.State(), ctrl.Flattened())
	}
	want := []item{{10}, {11}, {20}, {21}, {30}, {31}}
	got := ctrl.Flattened()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	wantKeys := []string{"/c?limit=2", "/c?cursor=&page=1&limit=2", "/c?cursor=&page=2&limit=2", "/c?cursor=&page=3&limit=2"}
	if len(keys) != len(wantKeys) {
		t.Fatalf("expected fetches %v, got %v", wantKeys, keys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] {
			t.Errorf("fetch %d: expected %q, got %q", i, wantKeys[i], keys[i])
		}
	}
}

func TestController_FlattenedKeepsDuplicates(t *testing.T) {
	f := newScriptedFetcher().
		set(offsetKey(0, 2), &Page[item]{Items: []item{{1}, {2}}}).
		set(offsetKey(1, 2), &Page[item]{Items: []item{{2}, {3}}})
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 2)

	_ = ctrl.RequestMore(context.Background())
	_ = ctrl.RequestMore(context.Background())

	got := ctrl.Flattened()
	want := []item{{1}, {2}, {2}, {3}}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestController_ErrorThenRetrySameKey(t *testing.T) {
	f := newScriptedFetcher().
		set(offsetKey(0, 10), &Page[item]{Items: items(1, 10)}).
		set(offsetKey(1, 10), &Page[item]{Items: items(11, 3)})
	f.fail[offsetKey(1, 10).String()] = 1
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 10)
	ctx := context.Background()

	if err := ctrl.RequestMore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := ctrl.RequestMore(ctx)
	if !apperrors.IsFetchError(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if ctrl.State() != StateError || ctrl.IsAtEnd() {
		t.Fatalf("expected error state distinct from end, got %s", ctrl.State())
	}
	if ctrl.Err() == nil {
		t.Error("expected Err to be set")
	}
	if ctrl.Size() != 1 || len(ctrl.Flattened()) != 10 {
		t.Errorf("expected loaded data to stay visible, got size %d and %d items", ctrl.Size(), len(ctrl.Flattened()))
	}

	if err := ctrl.RequestMore(ctx); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if ctrl.Err() != nil || !ctrl.IsAtEnd() || len(ctrl.Flattened()) != 13 {
		t.Errorf("unexpected state after retry: %s, %d items", ctrl.State(), len(ctrl.Flattened()))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls[1] != f.calls[2] {
		t.Errorf("expected retry of the same key, got %q then %q", f.calls[1], f.calls[2])
	}
}

func TestController_RequestMoreWhileLoadingIsNoop(t *testing.T) {
	f := newScriptedFetcher().set(offsetKey(0, 10), &Page[item]{Items: items(1, 10)})
	f.block()
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 10)

	done := make(chan error, 1)
	go func() { done <- ctrl.RequestMore(context.Background()) }()
	<-f.started

	if !ctrl.IsLoading() || ctrl.Size() != 1 {
		t.Fatalf("expected loading with size 1, got %s and %d", ctrl.State(), ctrl.Size())
	}
	if err := ctrl.RequestMore(context.Background()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	f.release()
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.callCount(); n != 1 {
		t.Errorf("expected one fetch, got %d", n)
	}
}

func TestController_DetachDropsInFlightResult(t *testing.T) {
	key := offsetKey(0, 10)
	f := newScriptedFetcher().set(key, &Page[item]{Items: items(1, 10)})
	f.block()
	cache := newTestCache(f)
	ctrl, _ := UsePagination(cache, "/api/products", 10)

	done := make(chan error, 1)
	go func() { done <- ctrl.RequestMore(context.Background()) }()
	<-f.started
	ctrl.Detach()
	f.release()

	if err := <-done; !errors.Is(err, ErrDetached) {
		t.Fatalf("expected ErrDetached, got %v", err)
	}
	if len(ctrl.Pages()) != 0 {
		t.Error("expected no page delivered to a detached controller")
	}
	if _, err, ok := cache.Peek(key); !ok || err != nil {
		t.Error("expected the fetch to populate the cache")
	}
	if err := ctrl.RequestMore(context.Background()); !errors.Is(err, ErrDetached) {
		t.Errorf("expected ErrDetached, got %v", err)
	}

	// A new consumer reuses the cached page.
	next, _ := UsePagination(cache, "/api/products", 10)
	if err := next.RequestMore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.callCount(); n != 1 {
		t.Errorf("expected cached page reuse, got %d fetches", n)
	}
}

func TestController_CancelRestoresState(t *testing.T) {
	f := newScriptedFetcher().set(offsetKey(0, 10), &Page[item]{Items: items(1, 10)})
	f.block()
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.RequestMore(ctx) }()
	<-f.started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ctrl.State() != StateIdle || ctrl.Size() != 0 || ctrl.Err() != nil {
		t.Errorf("expected idle with size 0, got %s with size %d", ctrl.State(), ctrl.Size())
	}
	f.release()
}

func TestController_InvalidateAllResets(t *testing.T) {
	f := newScriptedFetcher().set(offsetKey(0, 10), &Page[item]{Items: items(1, 10)})
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 10)
	ctx := context.Background()

	_ = ctrl.RequestMore(ctx)
	ctrl.InvalidateAll()

	if ctrl.Size() != 0 || len(ctrl.Flattened()) != 0 || ctrl.State() != StateIdle {
		t.Fatalf("expected reset, got size %d state %s", ctrl.Size(), ctrl.State())
	}
	if err := ctrl.RequestMore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.callCount(); n != 2 {
		t.Errorf("expected a refetch after reset, got %d fetches", n)
	}
}

func TestController_InvalidateAllDuringFetchRefetches(t *testing.T) {
	var (
		mu      sync.Mutex
		version int
		calls   int
	)
	gate := make(chan struct{})
	started := make(chan struct{}, 1)
	f := FetcherFunc[item](func(ctx context.Context, key Key) (*Page[item], error) {
		mu.Lock()
		calls++
		first := version*100 + 1
		blocking := calls == 1
		mu.Unlock()
		if blocking {
			started <- struct{}{}
			<-gate
		}
		return &Page[item]{Items: items(first, 10)}, nil
	})
	ctrl, _ := UsePagination(newTestCache(f), "/api/products", 10)

	done := make(chan error, 1)
	go func() { done <- ctrl.RequestMore(context.Background()) }()
	<-started

	mu.Lock()
	version = 1
	mu.Unlock()
	ctrl.InvalidateAll()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctrl.Pages()) != 0 {
		t.Fatal("expected the in-flight page to be dropped after reset")
	}

	if err := ctrl.RequestMore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ctrl.Flattened()
	if len(got) == 0 || got[0].id != 101 {
		t.Errorf("expected a fresh page starting at 101, got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 2 {
		t.Errorf("expected a refetch after reset, got %d fetches", calls)
	}
}

func TestController_Fallback(t *testing.T) {
	f := newScriptedFetcher().set(offsetKey(1, 10), &Page[item]{Items: items(11, 2)})
	fallback := &Page[item]{Items: items(1, 10)}
	ctrl, err := UsePagination(newTestCache(f), "/api/products", 10, fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := ctrl.Snapshot()
	if snap.Size != 1 || len(snap.Items) != 10 || snap.State != StateIdle {
		t.Fatalf("unexpected initial snapshot %+v", snap)
	}
	if f.callCount() != 0 {
		t.Fatal("expected no fetch for the fallback page")
	}

	if err := ctrl.RequestMore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctrl.Flattened()) != 12 || !ctrl.IsAtEnd() {
		t.Errorf("expected 12 items at end, got %d in %s", len(ctrl.Flattened()), ctrl.State())
	}
}

func TestController_ShortFallbackEndsImmediately(t *testing.T) {
	ctrl, _ := UsePagination(newTestCache(newScriptedFetcher()), "/api/products", 10, &Page[item]{Items: items(1, 3)})
	if !ctrl.IsAtEnd() {
		t.Errorf("expected end, got %s", ctrl.State())
	}
}

func TestUsePagination_InvalidPageSize(t *testing.T) {
	if _, err := UsePagination(newTestCache(newScriptedFetcher()), "/s", 0); err == nil {
		t.Error("expected error for page size 0")
	}
	if _, err := UseCursorPagination(newTestCache(newScriptedFetcher()), "/s", 0); err == nil {
		t.Error("expected error for page size 0")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:        "idle",
		StateLoadingNext: "loading_next",
		StateError:       "error",
		StateEnd:         "end",
		State(42):        "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}
