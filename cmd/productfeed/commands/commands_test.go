package commands

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/scrollfeed/bootstrap"
	"github.com/kbukum/scrollfeed/exclusion"
	"github.com/kbukum/scrollfeed/feed"
	"github.com/kbukum/scrollfeed/httpclient"
	"github.com/kbukum/scrollfeed/logger"
	"github.com/kbukum/scrollfeed/products"
	"github.com/kbukum/scrollfeed/redis"
	"github.com/kbukum/scrollfeed/server"
)

// feedAPI serves a catalog of n products and the API routes on httptest.
func feedAPI(t *testing.T, n int) string {
	t.Helper()
	cfg := server.Config{}
	cfg.ApplyDefaults()
	srv := server.New(cfg, logger.Nop())
	srv.RegisterCatalog(products.NewCatalog(n))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	up, err := products.NewUpstream(products.Config{
		HTTP: httpclient.Config{BaseURL: ts.URL, Timeout: 2 * time.Second},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv.RegisterAPI(up)
	return ts.URL
}

func testAppConfig(t *testing.T, baseURL string) *AppConfig {
	t.Helper()
	cfg := &AppConfig{}
	cfg.Upstream.HTTP.BaseURL = baseURL
	cfg.API.HTTP.BaseURL = baseURL
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	return cfg
}

func productLine(id int64) string {
	return fmt.Sprintf("%4d  Product %d ", id, id)
}

func runScroll(t *testing.T, cfg *AppConfig, opts scrollOptions, kv exclusion.KV) string {
	t.Helper()
	var out bytes.Buffer
	if err := scroll(context.Background(), cfg, opts, kv, &out, logger.Nop(), nil); err != nil {
		t.Fatalf("scroll: %v\n%s", err, out.String())
	}
	return out.String()
}

func TestScroll_AllPages(t *testing.T) {
	cfg := testAppConfig(t, feedAPI(t, 24))

	out := runScroll(t, cfg, scrollOptions{all: true}, exclusion.NewMemoryKV(time.Hour))

	if !strings.Contains(out, "Reached to the end") {
		t.Errorf("missing end message:\n%s", out)
	}
	for _, id := range []int64{1, 10, 24} {
		if !strings.Contains(out, productLine(id)) {
			t.Errorf("missing product %d:\n%s", id, out)
		}
	}
}

func TestScroll_FirstPageOnly(t *testing.T) {
	cfg := testAppConfig(t, feedAPI(t, 24))

	out := runScroll(t, cfg, scrollOptions{pages: 1}, exclusion.NewMemoryKV(time.Hour))

	if !strings.Contains(out, "pages loaded: 1, more available") {
		t.Errorf("unexpected footer:\n%s", out)
	}
	if strings.Contains(out, productLine(11)) {
		t.Errorf("second page printed:\n%s", out)
	}
}

func TestScroll_CursorStrategy(t *testing.T) {
	cfg := testAppConfig(t, feedAPI(t, 24))
	cfg.Feed = feed.Config{Strategy: feed.StrategyCursor}
	cfg.Feed.ApplyDefaults()

	out := runScroll(t, cfg, scrollOptions{all: true}, exclusion.NewMemoryKV(time.Hour))

	if !strings.Contains(out, "Reached to the end") || !strings.Contains(out, productLine(24)) {
		t.Errorf("cursor scroll incomplete:\n%s", out)
	}
}

func TestScroll_DeletionsPersistPerSession(t *testing.T) {
	cfg := testAppConfig(t, feedAPI(t, 24))
	kv := exclusion.NewMemoryKV(time.Hour)

	out := runScroll(t, cfg, scrollOptions{pages: 1, session: "s1", deletes: []int64{3}}, kv)
	if strings.Contains(out, productLine(3)) {
		t.Errorf("deleted product printed:\n%s", out)
	}

	out = runScroll(t, cfg, scrollOptions{pages: 1, session: "s1"}, kv)
	if strings.Contains(out, productLine(3)) {
		t.Errorf("deletion not persisted:\n%s", out)
	}

	out = runScroll(t, cfg, scrollOptions{pages: 1, session: "s2"}, kv)
	if !strings.Contains(out, productLine(3)) {
		t.Errorf("deletion leaked into another session:\n%s", out)
	}

	out = runScroll(t, cfg, scrollOptions{pages: 1, session: "s1", clear: true}, kv)
	if !strings.Contains(out, productLine(3)) {
		t.Errorf("clear did not restore product 3:\n%s", out)
	}
}

func TestScroll_Direct(t *testing.T) {
	cfg := testAppConfig(t, feedAPI(t, 24))

	out := runScroll(t, cfg, scrollOptions{all: true, direct: true}, exclusion.NewMemoryKV(time.Hour))
	if !strings.Contains(out, "Reached to the end") {
		t.Errorf("missing end message:\n%s", out)
	}
}

func TestScroll_UpstreamDown(t *testing.T) {
	base := feedAPI(t, 24)
	cfg := testAppConfig(t, base+"/missing")

	var out bytes.Buffer
	err := scroll(context.Background(), cfg, scrollOptions{pages: 1}, exclusion.NewMemoryKV(time.Hour), &out, logger.Nop(), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(out.String(), "Error occurred") {
		t.Errorf("missing error message:\n%s", out.String())
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	cfg := &AppConfig{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Name != serviceName {
		t.Errorf("name = %q", cfg.Name)
	}
	if cfg.Upstream.HTTP.BaseURL != "http://127.0.0.1:8080" || cfg.API.HTTP.BaseURL != "http://127.0.0.1:8080" {
		t.Errorf("base urls = %q, %q", cfg.Upstream.HTTP.BaseURL, cfg.API.HTTP.BaseURL)
	}
	if cfg.Feed.Store != feed.StoreMemory || cfg.Redis.Enabled || cfg.SQLite.Enabled {
		t.Errorf("store = %q redis=%v sqlite=%v", cfg.Feed.Store, cfg.Redis.Enabled, cfg.SQLite.Enabled)
	}
	if cfg.Catalog.Size != products.DefaultCatalogSize {
		t.Errorf("catalog size = %d", cfg.Catalog.Size)
	}
}

func TestAppConfig_StoreSelection(t *testing.T) {
	tests := []struct {
		name       string
		cfg        AppConfig
		wantStore  string
		wantRedis  bool
		wantSQLite bool
	}{
		{"redis enabled", AppConfig{Redis: redisEnabled()}, feed.StoreRedis, true, false},
		{"explicit sqlite", AppConfig{Feed: feed.Config{Store: feed.StoreSQLite}}, feed.StoreSQLite, false, true},
		{"explicit memory wins", AppConfig{Feed: feed.Config{Store: feed.StoreMemory}, Redis: redisEnabled()}, feed.StoreMemory, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if cfg.Feed.Store != tt.wantStore || cfg.Redis.Enabled != tt.wantRedis || cfg.SQLite.Enabled != tt.wantSQLite {
				t.Errorf("store = %q redis=%v sqlite=%v", cfg.Feed.Store, cfg.Redis.Enabled, cfg.SQLite.Enabled)
			}
		})
	}
}

func redisEnabled() redis.Config {
	return redis.Config{Enabled: true, Addr: "localhost:6379"}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	yml := `name: productfeed-test
environment: staging
server:
  port: 9090
feed:
  strategy: cursor
  page_size: 5
upstream:
  http:
    base_url: http://upstream.local
    timeout: 3s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Name != "productfeed-test" || cfg.Environment != "staging" {
		t.Errorf("service = %q/%q", cfg.Name, cfg.Environment)
	}
	if cfg.Feed.Strategy != feed.StrategyCursor || cfg.Feed.PageSize != 5 || cfg.Feed.Source != products.RouteCursor {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.Upstream.HTTP.BaseURL != "http://upstream.local" || cfg.Upstream.HTTP.Timeout != 3*time.Second {
		t.Errorf("upstream = %+v", cfg.Upstream.HTTP)
	}
	if cfg.API.HTTP.BaseURL != "http://127.0.0.1:9090" {
		t.Errorf("api base url = %q", cfg.API.HTTP.BaseURL)
	}
}

func TestStoreBackend_SQLite(t *testing.T) {
	cfg := &AppConfig{}
	cfg.Feed.Store = feed.StoreSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "feed.db")

	a, err := bootstrap.NewApp(cfg, bootstrap.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	backend, err := storeBackend(a)
	if err != nil {
		t.Fatalf("storeBackend: %v", err)
	}

	err = a.RunTask(context.Background(), func(ctx context.Context) error {
		store := exclusion.NewStore(backend(), "s1", "", logger.Nop())
		if err := store.Add(ctx, 7); err != nil {
			return err
		}
		set, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if !set.Contains(7) {
			t.Error("id 7 not persisted")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}
}

func TestInitTelemetry_Disabled(t *testing.T) {
	a, err := bootstrap.NewApp(&AppConfig{}, bootstrap.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	metrics, err := initTelemetry(context.Background(), a)
	if err != nil {
		t.Fatalf("initTelemetry: %v", err)
	}
	if metrics == nil {
		t.Error("expected metric instruments on the global meter")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Error("expected version output")
	}
}
