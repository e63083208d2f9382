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
	"studentattendance/internal/config"
	"studentattendance/internal/handler"
	"studentattendance/internal/httpmiddleware"
	"studentattendance/internal/logging"
	"studentattendance/internal/report"
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
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", "report")
	slog.SetDefault(logger)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("report service failed", "error", err)
		os.Exit(1)
	}
}

// run wires the aggregator straight to both stores; it owns no data.
func run(ctx context.Context, cfg config.App, logger *slog.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := store.NewDB(startCtx, cfg.PostgresURL(), cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer db.Close()

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

	checks := map[string]handler.HealthChecker{"postgres": db, "mongo": mongo}
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
	limiter, err := httpmiddleware.NewLimiter(cfg.RateLimitBackend, cfg.RateLimitPerMin, rdb, "ratelimit:report")
	if err != nil {
		return err
	}

	students := student.NewService(student.NewPostgresRepository(db.Client), logger)
	records := attendance.NewService(
		attendance.NewMongoRepository(mongo.DB.Collection(cfg.Mongo.Collection)), nil, logger)
	builder := report.NewService(students, records, cfg.ReportFanoutLimit, logger)
	if cfg.ReportFanoutLimit > 0 {
		logger.Info("report fan-out bounded", "limit", cfg.ReportFanoutLimit)
	}

	r := handler.NewEngine(handler.EngineOptions{
		Service: "report",
		Title:   "Attendance Report",
		Logger:  logger,
		Limiter: limiter,
		Checks:  checks,
	})
	handler.NewReportHandler(builder, logger).Register(r)

	if err := server.Run(ctx, server.New(cfg.ReportPort, r), cfg.ShutdownTimeout, logger); err != nil {
		return fmt.Errorf("report server: %w", err)
	}
	return nil
}
