package exclusion

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "github.com/kbukum/scrollfeed/errors"
	"github.com/kbukum/scrollfeed/logger"
)

// DefaultStoreID names the stored id list when none is configured.
const DefaultStoreID = "deletedIdsState"

// Store loads and grows the persisted exclusion set.
type Store interface {
	// Load returns the persisted ids; an absent key is an empty set.
	Load(ctx context.Context) (*Set, error)
	// Add persists id in addition to the ids already stored.
	Add(ctx context.Context, id int64) error
	// Clear removes the stored key.
	Clear(ctx context.Context) error
}

// KVStore is a Store over a KV backend.
type KVStore struct {
	kv  KV
	key string
	log *logger.Logger
	mu  sync.Mutex
}

// NewStore creates a store keyed by "<session>:<storeID>". An empty storeID
// uses DefaultStoreID; an empty session uses the store id alone.
func NewStore(kv KV, session, storeID string, log *logger.Logger) *KVStore {
	if storeID == "" {
		storeID = DefaultStoreID
	}
	key := storeID
	if session != "" {
		key = session + ":" + storeID
	}
	return &KVStore{kv: kv, key: key, log: logger.OrGlobal(log, "exclusion")}
}

// Key returns the storage key.
func (s *KVStore) Key() string { return s.key }

// Load implements Store.
func (s *KVStore) Load(ctx context.Context) (*Set, error) {
	ids, err := s.read(ctx)
	if err != nil {
		return nil, apperrors.StorageFailure("load", err)
	}
	return NewSet(ids...), nil
}

// Add implements Store.
func (s *KVStore) Add(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.read(ctx)
	if err != nil {
		return apperrors.StorageFailure("add", err)
	}
	set := NewSet(ids...)
	if !set.Add(id) {
		return nil
	}
	raw, err := json.Marshal(set.IDs())
	if err != nil {
		return apperrors.StorageFailure("add", err)
	}
	if err := s.kv.Set(ctx, s.key, string(raw)); err != nil {
		return apperrors.StorageFailure("add", err)
	}
	s.log.Debug("id excluded", logger.Fields(logger.FieldKey, s.key, logger.FieldItemID, id))
	return nil
}

// Clear implements Store.
func (s *KVStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return apperrors.StorageFailure("clear", err)
	}
	return nil
}

func (s *KVStore) read(ctx context.Context) ([]int64, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil || !ok {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ Store = (*KVStore)(nil)
