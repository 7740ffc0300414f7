package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bookpulse/bookpulse/internal/analytics"
	"github.com/bookpulse/bookpulse/internal/app"
	"github.com/bookpulse/bookpulse/internal/auth"
	"github.com/bookpulse/bookpulse/internal/books"
	"github.com/bookpulse/bookpulse/internal/ingest"
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
		logger.Warn("redis unavailable, aggregates uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(logger, authService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, analyticsCache, logger)
	salesHandler := ledger.NewHandler(logger, ledgerService)

	booksRepo := books.NewRepository(pool)
	booksService := books.NewService(booksRepo, ledgerRepo, analyticsCache, logger)
	booksHandler := books.NewHandler(logger, booksService)

	analyticsService := analytics.NewService(ledgerRepo, analyticsCache, logger)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	var enqueuer ingest.Enqueuer
	if redisClient != nil {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := asynqClient.Close(); err != nil {
				logger.Warn("asynq close", slog.Any("error", err))
			}
		}()
		enqueuer = jobs.NewClient(asynqClient)
	}

	ingestor := ingest.NewIngestor(ledgerRepo, logger)
	uploadHandler := ingest.NewHandler(logger, ingestor, booksService, analyticsCache, enqueuer, cfg.UploadMaxBytes)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		BooksHandler:     booksHandler,
		SalesHandler:     salesHandler,
		UploadHandler:    uploadHandler,
		AnalyticsHandler: analyticsHandler,
		Pool:             pool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
