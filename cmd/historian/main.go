// cmd/historian is a background worker that drains lobby action records from
// the Redis queue into Postgres and marks quiet matches abandoned.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mamathon/triviawager/internal/cache"
	"github.com/mamathon/triviawager/internal/config"
	"github.com/mamathon/triviawager/internal/database"
	"github.com/mamathon/triviawager/internal/historian"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.Logger()
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer database.Close()
	if err := database.EnsureSchema(ctx); err != nil {
		logger.Fatalf("schema: %v", err)
	}

	if err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer cache.Rdb.Close()

	svc := historian.New(
		cache.NewActionQueue(cache.Rdb, cfg.ActionQueue),
		database.ActionStore{},
		historian.Config{
			BatchSize:     cfg.HistorianBatchSize,
			FlushInterval: cfg.HistorianFlushInterval,
			Inactivity:    cfg.MatchInactivityTimeout,
		},
	)
	logger.WithField("queue", cfg.ActionQueue).Info("trivia historian running")
	svc.Run(ctx)
}
