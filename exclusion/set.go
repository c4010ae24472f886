package exclusion

import "sync"

// Set is an insertion-ordered set of item ids. It is safe for concurrent use;
// concurrent adds are last-writer-wins.
type Set struct {
	mu    sync.RWMutex
	ids   []int64
	index map[int64]struct{}
}

// NewSet creates a set holding ids, ignoring duplicates.
func NewSet(ids ...int64) *Set {
	s := &Set{index: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s *Set) Add(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is in the set. A nil set is empty.
func (s *Set) Contains(id int64) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// IDs returns the ids in insertion order.
func (s *Set) IDs() []int64 {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.ids...)
}

// Len returns the number of ids.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
