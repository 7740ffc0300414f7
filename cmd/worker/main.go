package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/bookpulse/bookpulse/internal/analytics"
	"github.com/bookpulse/bookpulse/internal/app"
	"github.com/bookpulse/bookpulse/internal/ledger"
	"github.com/bookpulse/bookpulse/internal/platform/cache"
	"github.com/bookpulse/bookpulse/internal/platform/db"
	"github.com/bookpulse/bookpulse/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisClient.Close()

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	ledgerRepo := ledger.NewRepository(pool)
	analyticsService := analytics.NewService(ledgerRepo, analyticsCache, logger)

	warmup := jobs.NewAnalyticsWarmupJob(analyticsService, logger)

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmup.Handle},
		},
	})

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
