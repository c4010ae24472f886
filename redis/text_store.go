package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/scrollfeed/exclusion"
)

// TextStore stores deletion store values as Redis strings. Each write
// refreshes the key's TTL so a session's ids live as long as the session.
type TextStore struct {
	client    *Client
	keyPrefix string
	ttl       time.Duration
}

var _ exclusion.KV = (*TextStore)(nil)

// NewTextStore creates a TextStore. Keys are prefixed with keyPrefix and a
// colon; a zero ttl keeps keys without expiration.
func NewTextStore(client *Client, keyPrefix string, ttl time.Duration) *TextStore {
	return &TextStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *TextStore) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Get implements exclusion.KV.
func (s *TextStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.client.Get(ctx, s.fullKey(key))
	if err != nil {
		return "", false, fmt.Errorf("text store get %q: %w", key, err)
	}
	return v, ok, nil
}

// Set implements exclusion.KV.
func (s *TextStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.fullKey(key), value, s.ttl); err != nil {
		return fmt.Errorf("text store set %q: %w", key, err)
	}
	return nil
}

// Delete implements exclusion.KV.
func (s *TextStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("text store delete %q: %w", key, err)
	}
	return nil
}
