package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kbukum/scrollfeed/exclusion"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// KV is an exclusion.KV stored in a single SQLite table.
type KV struct {
	sqlDB *sql.DB
	ttl   time.Duration
	now   func() time.Time
}

var _ exclusion.KV = (*KV)(nil)

// Open opens the database at path and creates the table if needed. Entries
// expire ttl after their last write; zero ttl keeps them.
func Open(path string, ttl time.Duration) (*KV, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &KV{sqlDB: sqlDB, ttl: ttl, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (k *KV) Close() error {
	if k == nil || k.sqlDB == nil {
		return nil
	}
	return k.sqlDB.Close()
}

// Ping checks the connection.
func (k *KV) Ping(ctx context.Context) error {
	return k.sqlDB.PingContext(ctx)
}

// Get implements exclusion.KV. Expired entries are removed on read.
func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var expiresAt int64
	err := k.sqlDB.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	if expiresAt > 0 && k.now().UnixMilli() > expiresAt {
		if err := k.Delete(ctx, key); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return value, true, nil
}

// Set implements exclusion.KV.
func (k *KV) Set(ctx context.Context, key, value string) error {
	var expiresAt int64
	if k.ttl > 0 {
		expiresAt = k.now().Add(k.ttl).UnixMilli()
	}
	_, err := k.sqlDB.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete implements exclusion.KV.
func (k *KV) Delete(ctx context.Context, key string) error {
	if _, err := k.sqlDB.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
