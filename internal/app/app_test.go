package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	hash, err := auth.HashPassword("admin-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cfg := config.Default()
	cfg.Storage.SQLite.Path = filepath.Join(dir, "realty.db")
	cfg.Images.Local.Dir = filepath.Join(dir, "uploads")
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Admin.PasswordHash = hash
	cfg.Admin.JWTSecret = "0123456789abcdef0123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg
}

func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	srv, closeFn, err := NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewServer() = %v", err)
	}
	t.Cleanup(func() {
		if err := closeFn(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func getStatus(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			t.Errorf("close body: %v", cerr)
		}
	}()
	return resp.StatusCode
}

func TestNewServerCacheDrivers(t *testing.T) {
	mr := miniredis.RunT(t)

	for _, driver := range []string{config.CacheNone, config.CacheMemory, config.CacheFile, config.CacheRedis} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Cache.Driver = driver
			cfg.Cache.Redis.Addr = mr.Addr()

			ts := startServer(t, cfg)
			if code := getStatus(t, ts.URL+"/health"); code != http.StatusOK {
				t.Errorf("/health = %d", code)
			}
			if code := getStatus(t, ts.URL+"/api/properties"); code != http.StatusOK {
				t.Errorf("/api/properties = %d", code)
			}
		})
	}
}

func TestNewServerRedisCachesCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Cache.Driver = config.CacheRedis
	cfg.Cache.Redis.Addr = mr.Addr()
	cfg.Cache.Redis.Prefix = "test:"

	ts := startServer(t, cfg)
	if code := getStatus(t, ts.URL+"/api/properties"); code != http.StatusOK {
		t.Fatalf("/api/properties = %d", code)
	}
	if !mr.Exists("test:" + catalogKey) {
		t.Errorf("expected catalog in redis, keys = %v", mr.Keys())
	}
}

func TestNewServerRedisUnreachable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Driver = config.CacheRedis
	cfg.Cache.Redis.Addr = "127.0.0.1:1"

	if _, _, err := NewServer(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unreachable redis")
	}
}

func TestNewServerBadPasswordHash(t *testing.T) {
	cfg := testConfig(t)
	cfg.Admin.PasswordHash = "not-bcrypt"

	_, _, err := NewServer(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "admin") {
		t.Fatalf("err = %v, want admin auth error", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}
