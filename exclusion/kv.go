package exclusion

import (
	"context"
	"sync"
	"time"
)

// KV is session-scoped text storage. Implementations live next to their
// drivers (redis, sqlite); MemoryKV is the in-process default.
type KV interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// MemoryKV is an in-memory KV whose entries expire ttl after their last write.
// A zero ttl keeps entries for the life of the process.
type MemoryKV struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memEntry
	now   func() time.Time
}

type memEntry struct {
	val       string
	expiresAt time.Time // zero means no expiration
}

// NewMemoryKV creates an in-memory KV.
func NewMemoryKV(ttl time.Duration) *MemoryKV {
	return &MemoryKV{
		ttl:   ttl,
		items: make(map[string]memEntry),
		now:   time.Now,
	}
}

// Get implements KV. Expired entries are removed on read.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.val, true, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memEntry{val: value}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.items[key] = entry
	return nil
}

// Delete implements KV.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Len returns the number of entries, including expired ones not yet read.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ KV = (*MemoryKV)(nil)
