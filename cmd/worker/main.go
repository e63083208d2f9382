package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studentattendance/internal/audit"
	"studentattendance/internal/config"
	"studentattendance/internal/logging"
	"studentattendance/internal/queue"
	"studentattendance/internal/store"
)

// Worker consumes attendance change events from Redis and writes the audit log.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "worker")
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App, logger *slog.Logger) error {
	if cfg.QueueBackend != "redis" {
		return fmt.Errorf("worker needs QUEUE_BACKEND=redis, got %q", cfg.QueueBackend)
	}

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	rdb, err := store.NewRedis(startCtx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer rdb.Close()

	q := queue.NewRedisQueue(rdb.Client, cfg.QueueKey, logger)
	return audit.NewConsumer(logger).Run(ctx, q)
}
