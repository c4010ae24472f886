package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/scrollfeed/component"
	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/logger"
)

func openTestKV(t *testing.T, ttl time.Duration) *KV {
	t.Helper()
	kv, err := Open(filepath.Join(t.TempDir(), "feed.db"), ttl)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := kv.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return kv
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", 0); err == nil {
		t.Fatal("expected error")
	}
}

func TestKV_SetGetDelete(t *testing.T) {
	kv := openTestKV(t, 0)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "k", "[1]"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set(ctx, "k", "[1,2]"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || v != "[1,2]" {
		t.Fatalf("unexpected get %q %v %v", v, ok, err)
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("expected key to be deleted")
	}
}

func TestKV_Expiry(t *testing.T) {
	kv := openTestKV(t, time.Minute)
	now := time.Now()
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	_ = kv.Set(ctx, "k", "[1]")
	now = now.Add(2 * time.Minute)
	if _, ok, err := kv.Get(ctx, "k"); err != nil || ok {
		t.Errorf("expected expired key, got ok=%v err=%v", ok, err)
	}
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.db")
	ctx := context.Background()

	first, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := exclusion.NewStore(first, "sess", "", logger.Nop()).Add(ctx, 42); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = first.Close()

	second, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()

	set, err := exclusion.NewStore(second, "sess", "", logger.Nop()).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !set.Contains(42) {
		t.Errorf("expected id 42 after reopen, got %v", set.IDs())
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent(Config{Enabled: true, Path: filepath.Join(t.TempDir(), "c.db")}, logger.Nop())
	ctx := context.Background()

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}
	if comp.KV() == nil {
		t.Error("expected KV after start")
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Enabled: true, TTL: "soon"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid ttl error")
	}
	cfg.TTL = "1h"
	if err := cfg.Validate(); err != nil || cfg.SessionTTL() != time.Hour {
		t.Errorf("unexpected result %v %v", err, cfg.SessionTTL())
	}
}
