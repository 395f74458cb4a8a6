package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shopvision/internal/cache"
	"shopvision/internal/config"
	"shopvision/internal/events"
	"shopvision/internal/http/handlers"
	applog "shopvision/internal/log"
	"shopvision/internal/repos"
	"shopvision/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		applog.Logger().Fatal().Err(err).Msg("config")
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			applog.Logger().Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			out = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(cfg.Env, cfg.LogLevel, out)
	logger := applog.Logger()

	db, err := repos.OpenDB(cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	defer db.Close()

	var snap cache.SnapshotStore = cache.NewMemorySnapshot()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, snapshot saves will fail until it recovers")
		}
		cancel()
		snap = cache.NewRedisSnapshot(rdb, cfg.Redis.SnapshotTTL)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing ledger events")
	}
	defer pub.Close()

	deps := handlers.NewDeps(db, cfg, snap, pub)
	app := handlers.NewApp(deps, handlers.AppConfig{Views: web.Engine()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("driver", cfg.DB.Driver).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
}
