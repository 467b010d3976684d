package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"assetwatch/internal/domain/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Snapshot.FireTime != "23:58" {
		t.Errorf("fire_time = %q, want 23:58", cfg.Snapshot.FireTime)
	}
	if cfg.Snapshot.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q", cfg.Snapshot.Timezone)
	}
	if cfg.Snapshot.Workers != 6 {
		t.Errorf("workers = %d, want 6", cfg.Snapshot.Workers)
	}
	if cfg.Fetch.MaxAttempts != 2 {
		t.Errorf("max_attempts = %d, want 2", cfg.Fetch.MaxAttempts)
	}
	if cfg.Cache.Backend != "memory" || cfg.Storage.Driver != "sqlite" {
		t.Errorf("backend = %q, driver = %q", cfg.Cache.Backend, cfg.Storage.Driver)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[app]
listen_addr = ":8080"

[fetch]
timeout = "3s"
retry_wait = "500ms"
max_attempts = 2

[cache]
backend = "memory"
default_ttl = "10m"

[cache.ttl]
jp_stock = "5m"
us_stock = "5m"
gold = "1h"
crypto = "3m"
fund = "6h"

[snapshot]
fire_time = "23:58"
timezone = "Asia/Tokyo"
workers = 8
run_timeout = "4m"

[keepalive]
url = "https://example.com/ping"
interval = "10m"
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Fetch.Timeout.Std() != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Fetch.Timeout.Std())
	}

	ttls := cfg.KindTTLs()
	if ttls[model.KindGold] != time.Hour {
		t.Errorf("gold ttl = %v, want 1h", ttls[model.KindGold])
	}
	if ttls[model.KindCrypto] != 3*time.Minute {
		t.Errorf("crypto ttl = %v, want 3m", ttls[model.KindCrypto])
	}

	if cfg.Location().String() != "Asia/Tokyo" {
		t.Errorf("location = %s", cfg.Location())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown kind ttl":       "[cache.ttl]\nstocks = \"5m\"\n",
		"bad fire time":          "[snapshot]\nfire_time = \"25:00\"\n",
		"bad timezone":           "[snapshot]\ntimezone = \"Mars/Olympus\"\n",
		"redis without addr":     "[cache]\nbackend = \"redis\"\n",
		"postgres without dsn":   "[storage]\ndriver = \"postgres\"\n",
		"unknown cache backend":  "[cache]\nbackend = \"memcached\"\n",
		"unknown storage driver": "[storage]\ndriver = \"oracle\"\n",
		"too many workers":       "[snapshot]\nworkers = 64\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: Load should fail", name)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@host/db")
	t.Setenv("REDIS_URL", "redis-host:6379")
	t.Setenv("KEEPALIVE_URL", "https://app.example.com/")
	t.Setenv("PORT", "10000")

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("driver = %q, want postgres", cfg.Storage.Driver)
	}
	if cfg.Storage.PostgresDSN != "postgresql://u:p@host/db" {
		t.Errorf("dsn = %q, legacy scheme should be rewritten", cfg.Storage.PostgresDSN)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis-host:6379" {
		t.Errorf("cache = %q %q", cfg.Cache.Backend, cfg.Cache.RedisAddr)
	}
	if cfg.KeepAlive.URL != "https://app.example.com/ping" {
		t.Errorf("keepalive url = %q", cfg.KeepAlive.URL)
	}
	if cfg.App.ListenAddr != ":10000" {
		t.Errorf("listen addr = %q", cfg.App.ListenAddr)
	}
}
