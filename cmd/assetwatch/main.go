package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"assetwatch/internal/application/port"
	"assetwatch/internal/application/scheduler"
	"assetwatch/internal/application/service"
	"assetwatch/internal/infrastructure/cache"
	"assetwatch/internal/infrastructure/config"
	"assetwatch/internal/infrastructure/logger"
	"assetwatch/internal/infrastructure/source"
	"assetwatch/internal/infrastructure/storage/postgres"
	"assetwatch/internal/infrastructure/storage/sqlite"
	"assetwatch/internal/server"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// storage collaborator
	var store port.AssetStore
	switch cfg.Storage.Driver {
	case "postgres":
		store, err = postgres.New(cfg.Storage.PostgresDSN)
	default:
		store, err = sqlite.New(cfg.Storage.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open asset store failed")
	}
	defer store.Close()

	// quote cache
	var quoteCache port.QuoteCache
	if cfg.Cache.Backend == "redis" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		quoteCache = cache.NewRedis(rdb, "assetwatch")
	} else {
		quoteCache = cache.NewMemory()
	}

	// source adapters
	client := source.NewClient(cfg.Fetch.Timeout.Std(), cfg.Fetch.UserAgent)

	prices := service.NewPriceService(service.PriceServiceDeps{
		Cache:          quoteCache,
		Sources:        source.Registry(client),
		TTLs:           cfg.KindTTLs(),
		DefaultTTL:     cfg.Cache.DefaultTTL.Std(),
		MaxAttempts:    cfg.Fetch.MaxAttempts,
		RetryWait:      cfg.Fetch.RetryWait.Std(),
		FX:             source.NewFX(client, ""),
		FXFallbackRate: decimal.NewFromFloat(cfg.FX.FallbackRate),
	})

	snapshots := service.NewSnapshotService(service.SnapshotServiceDeps{
		Prices:  prices,
		Store:   store,
		Workers: cfg.Snapshot.Workers,
		Timeout: cfg.Snapshot.RunTimeout.Std(),
	})

	sched, err := scheduler.New(scheduler.Deps{
		Snapshots: snapshots,
		Pinger:    scheduler.NewPinger(cfg.KeepAlive.URL, cfg.KeepAlive.Interval.Std()),
		FireTime:  cfg.Snapshot.FireTime,
		Location:  cfg.Location(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build scheduler failed")
	}
	sched.Start()
	defer sched.Stop()

	log.Info().
		Str("config", *configPath).
		Str("storage", cfg.Storage.Driver).
		Str("cache", cfg.Cache.Backend).
		Str("fire_time", cfg.Snapshot.FireTime).
		Msg("assetwatch started")

	if err := server.Serve(ctx, cfg.App.ListenAddr, server.NewMux(prices)); err != nil {
		log.Error().Err(err).Msg("http server exited")
	}
}
