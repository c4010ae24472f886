package pagination

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/scrollfeed/logger"
)

type item struct{ id int64 }

func items(from, n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: int64(from + i)}
	}
	return out
}

// scriptedFetcher serves pages by key string and records every call.
type scriptedFetcher struct {
	mu    sync.Mutex
	pages map[string]*Page[item]
	fail  map[string]int // remaining failures per key
	calls []string

	// gate, when set, blocks each fetch until it is closed.
	gate    chan struct{}
	started chan string
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{pages: map[string]*Page[item]{}, fail: map[string]int{}}
}

func (f *scriptedFetcher) set(key Key, page *Page[item]) *scriptedFetcher {
	f.pages[key.String()] = page
	return f
}

func (f *scriptedFetcher) Fetch(ctx context.Context, key Key) (*Page[item], error) {
	id := key.String()
	f.mu.Lock()
	f.calls = append(f.calls, id)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- id
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] > 0 {
		f.fail[id]--
		return nil, fmt.Errorf("upstream unavailable")
	}
	page, ok := f.pages[id]
	if !ok {
		return &Page[item]{}, nil
	}
	return page, nil
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *scriptedFetcher) block() {
	f.mu.Lock()
	f.gate = make(chan struct{})
	f.started = make(chan string, 8)
	f.mu.Unlock()
}

func (f *scriptedFetcher) release() {
	f.mu.Lock()
	close(f.gate)
	f.gate = nil
	f.started = nil
	f.mu.Unlock()
}

func offsetKey(page, limit int) Key {
	return Key{Source: "/api/products", Kind: KindOffset, Page: page, Limit: limit}
}

func newTestCache(f Fetcher[item]) *Cache[item] {
	return NewCache[item](f, WithLogger(logger.Nop()))
}
