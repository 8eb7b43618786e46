package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/cache"
	"github.com/hoopsight/points-api/internal/config"
	"github.com/hoopsight/points-api/internal/features"
	"github.com/hoopsight/points-api/internal/fetch"
	"github.com/hoopsight/points-api/internal/forecast"
	"github.com/hoopsight/points-api/internal/handlers"
	"github.com/hoopsight/points-api/internal/logic"
	"github.com/hoopsight/points-api/internal/nba"
	"github.com/hoopsight/points-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache: redis when configured, in-process otherwise.
	var cacheStore cache.Store
	var redisPing handlers.Pinger
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			sugar.Fatalw("Failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		cacheStore = redisCache
		redisPing = redisCache.Ping
		sugar.Info("Connected to redis")
	} else {
		cacheStore = cache.NewMemory()
		sugar.Warn("REDIS_URL not set, using in-process cache")
	}

	// Report history: optional.
	var reportStore logic.ReportStore
	var postgresPing handlers.Pinger
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			sugar.Fatalw("Failed to connect to postgres", "error", err)
		}
		defer pool.Close()

		rs := store.NewReportStore(pool, logger)
		if err := rs.Migrate(ctx); err != nil {
			sugar.Fatalw("Failed to migrate report store", "error", err)
		}
		reportStore = rs
		postgresPing = func(ctx context.Context) error { return pool.Ping(ctx) }
		sugar.Info("Connected to postgres, report history enabled")
	} else {
		sugar.Warn("POSTGRES_URL not set, report history disabled")
	}

	source := nba.NewClient(cfg.StatsBaseURL, cfg.FetchTimeout, logger)
	fetcher := fetch.New(source, cacheStore, fetch.Config{
		Seasons:      cfg.Seasons,
		CacheTTL:     cfg.CacheTTL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	pool := fetch.NewPool(fetcher, cfg.PoolSize, logger)
	engineer := features.NewEngineer(cfg.RollingWindows)
	trainer := forecast.NewTrainer(forecast.Config{
		TestFraction: cfg.TestFraction,
		Seed:         cfg.Seed,
	}, logger)

	analysis := logic.NewAnalysisService(
		source, fetcher, pool, engineer, trainer,
		cacheStore, cfg.CacheTTL, logger,
	)

	handler := handlers.New(handlers.Config{
		Analysis:     analysis,
		Reports:      reportStore,
		RedisPing:    redisPing,
		PostgresPing: postgresPing,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.Routes(cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // roster-wide analysis is slow
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("Server listening",
			"port", cfg.Port,
			"seasons", cfg.Seasons,
			"pool_size", cfg.PoolSize,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Shutdown error", "error", err)
	}
	sugar.Info("Server stopped")
}
