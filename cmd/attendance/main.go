package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"studentattendance/internal/attendance"
	"studentattendance/internal/audit"
	"studentattendance/internal/config"
	"studentattendance/internal/handler"
	"studentattendance/internal/httpmiddleware"
	"studentattendance/internal/logging"
	"studentattendance/internal/queue"
	"studentattendance/internal/server"
	"studentattendance/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "attendance")
	slog.SetDefault(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("attendance service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	mongo, err := store.NewMongo(startCtx, cfg.MongoURI(), cfg.Mongo.DB, cfg.Mongo.MaxPool)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect", "error", err)
		}
	}()

	repo := attendance.NewMongoRepository(mongo.DB.Collection(cfg.Mongo.Collection))
	if err := repo.EnsureIndexes(startCtx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	checks := map[string]handler.HealthChecker{"mongo": mongo}
	var rdb *redis.Client
	if cfg.QueueBackend == "redis" || cfg.RateLimitBackend == "redis" {
		r, err := store.NewRedis(startCtx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer r.Close()
		checks["redis"] = r
		rdb = r.Client
	}

	var events queue.Publisher
	switch cfg.QueueBackend {
	case "none", "":
		events = queue.Discard{}
	case "memory":
		q := queue.NewInMemory(256)
		events = q
		go func() {
			if err := audit.NewConsumer(logger).Run(ctx, q); err != nil {
				logger.Error("in-process audit consumer", "error", err)
			}
		}()
	case "redis":
		events = queue.NewRedisQueue(rdb, cfg.QueueKey, logger)
	default:
		return fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	limiter, err := httpmiddleware.NewLimiter(cfg.RateLimitBackend, cfg.RateLimitPerMin, rdb, "ratelimit:attendance")
	if err != nil {
		return err
	}

	r := handler.NewEngine(handler.EngineOptions{
		Service: "attendance",
		Title:   "Attendance Log",
		Logger:  logger,
		Limiter: limiter,
		Checks:  checks,
	})
	handler.NewAttendanceHandler(attendance.NewService(repo, events, logger), logger).Register(r)

	return server.Run(ctx, server.New(cfg.AttendancePort, r), cfg.ShutdownTimeout, logger)
}
