package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"studentattendance/internal/config"
	"studentattendance/internal/handler"
	"studentattendance/internal/httpmiddleware"
	"studentattendance/internal/logging"
	"studentattendance/internal/server"
	"studentattendance/internal/store"
	"studentattendance/internal/student"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "directory")
	slog.SetDefault(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("directory service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.App, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := store.NewDB(startCtx, cfg.PostgresURL(), cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := student.NewPostgresRepository(db.Client)
	if err := repo.EnsureSchema(startCtx); err != nil {
		return err
	}

	checks := map[string]handler.HealthChecker{"postgres": db}
	var rdb *redis.Client
	if cfg.RateLimitBackend == "redis" {
		r, err := store.NewRedis(startCtx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer r.Close()
		checks["redis"] = r
		rdb = r.Client
	}
	limiter, err := httpmiddleware.NewLimiter(cfg.RateLimitBackend, cfg.RateLimitPerMin, rdb, "ratelimit:directory")
	if err != nil {
		return err
	}

	r := handler.NewEngine(handler.EngineOptions{
		Service: "directory",
		Title:   "Student Directory",
		Logger:  logger,
		Limiter: limiter,
		Checks:  checks,
	})
	handler.NewStudentHandler(student.NewService(repo, logger), logger).Register(r)

	return server.Run(ctx, server.New(cfg.DirectoryPort, r), cfg.ShutdownTimeout, logger)
}
