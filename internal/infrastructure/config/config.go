package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"assetwatch/internal/domain/model"
)

// Duration lets TOML carry durations as strings ("5m", "4h30m").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	App struct {
		ListenAddr string `toml:"listen_addr"`
	} `toml:"app"`

	Fetch struct {
		Timeout     Duration `toml:"timeout"`
		UserAgent   string   `toml:"user_agent"`
		RetryWait   Duration `toml:"retry_wait"`
		MaxAttempts int      `toml:"max_attempts"`
	} `toml:"fetch"`

	Cache struct {
		Backend    string              `toml:"backend"` // "memory" or "redis"
		RedisAddr  string              `toml:"redis_addr"`
		DefaultTTL Duration            `toml:"default_ttl"`
		TTL        map[string]Duration `toml:"ttl"` // per asset kind
	} `toml:"cache"`

	Snapshot struct {
		FireTime   string   `toml:"fire_time"` // "23:58"
		Timezone   string   `toml:"timezone"`  // "Asia/Tokyo"
		Workers    int      `toml:"workers"`
		RunTimeout Duration `toml:"run_timeout"`
	} `toml:"snapshot"`

	KeepAlive struct {
		URL      string   `toml:"url"`
		Interval Duration `toml:"interval"`
	} `toml:"keepalive"`

	Storage struct {
		Driver      string `toml:"driver"` // "sqlite" or "postgres"
		SQLitePath  string `toml:"sqlite_path"`
		PostgresDSN string `toml:"postgres_dsn"`
	} `toml:"storage"`

	FX struct {
		FallbackRate float64 `toml:"fallback_rate"` // USD/JPY used when the feed is down
	} `toml:"fx"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets the deploy host override file settings, the way hosted
// platforms inject DATABASE_URL and friends.
func applyEnv(cfg *Config) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		// some platforms still hand out the legacy postgres:// scheme
		cfg.Storage.PostgresDSN = strings.Replace(dsn, "postgres://", "postgresql://", 1)
		cfg.Storage.Driver = "postgres"
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		cfg.Cache.RedisAddr = addr
		cfg.Cache.Backend = "redis"
	}
	if url := os.Getenv("KEEPALIVE_URL"); url != "" {
		cfg.KeepAlive.URL = strings.TrimRight(url, "/") + "/ping"
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.App.ListenAddr = ":" + port
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.ListenAddr == "" {
		cfg.App.ListenAddr = ":9080"
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = Duration(5 * time.Second)
	}
	if cfg.Fetch.RetryWait <= 0 {
		cfg.Fetch.RetryWait = Duration(2 * time.Second)
	}
	if cfg.Fetch.MaxAttempts <= 0 {
		cfg.Fetch.MaxAttempts = 2
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.DefaultTTL <= 0 {
		cfg.Cache.DefaultTTL = Duration(5 * time.Minute)
	}
	if cfg.Snapshot.FireTime == "" {
		cfg.Snapshot.FireTime = "23:58"
	}
	if cfg.Snapshot.Timezone == "" {
		cfg.Snapshot.Timezone = "Asia/Tokyo"
	}
	if cfg.Snapshot.Workers <= 0 {
		cfg.Snapshot.Workers = 6
	}
	if cfg.Snapshot.RunTimeout <= 0 {
		cfg.Snapshot.RunTimeout = Duration(4 * time.Minute)
	}
	if cfg.KeepAlive.Interval <= 0 {
		cfg.KeepAlive.Interval = Duration(10 * time.Minute)
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/assetwatch.db"
	}
	if cfg.FX.FallbackRate <= 0 {
		cfg.FX.FallbackRate = 150.0
	}
}

func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Cache.RedisAddr) == "" {
			return errors.New("cache.redis_addr is empty but backend is redis")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", cfg.Cache.Backend)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.PostgresDSN) == "" {
			return errors.New("storage.postgres_dsn is empty but driver is postgres")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}

	if _, err := time.Parse("15:04", cfg.Snapshot.FireTime); err != nil {
		return fmt.Errorf("snapshot.fire_time %q is not HH:MM", cfg.Snapshot.FireTime)
	}
	if _, err := time.LoadLocation(cfg.Snapshot.Timezone); err != nil {
		return fmt.Errorf("snapshot.timezone %q: %w", cfg.Snapshot.Timezone, err)
	}
	if cfg.Snapshot.Workers > 32 {
		return fmt.Errorf("snapshot.workers %d exceeds 32", cfg.Snapshot.Workers)
	}

	for name := range cfg.Cache.TTL {
		if _, ok := model.ParseAssetKind(name); !ok {
			return fmt.Errorf("cache.ttl: unknown asset kind %q", name)
		}
	}
	return nil
}

// KindTTLs converts the per-kind TTL table to model keys.
func (cfg *Config) KindTTLs() map[model.AssetKind]time.Duration {
	out := make(map[model.AssetKind]time.Duration, len(cfg.Cache.TTL))
	for name, d := range cfg.Cache.TTL {
		if kind, ok := model.ParseAssetKind(name); ok {
			out[kind] = d.Std()
		}
	}
	return out
}

// Location resolves the snapshot timezone; validate guarantees it loads.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
