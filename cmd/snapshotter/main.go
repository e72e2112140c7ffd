package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/cache"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting portfolio snapshotter",
		zap.Duration("interval", cfg.Snapshot.Interval),
		zap.Int("workers", cfg.Snapshot.Workers),
	)

	if cfg.Storage.Driver == storage.DriverMemory {
		logger.Fatal("The snapshotter needs shared storage, use STORAGE_DRIVER=postgres or SNAPSHOT_EMBEDDED in the API")
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open storage
	store, err := storage.Open(ctx, cfg.Storage, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	// Redis only shares the FX rate with the API
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis, cfg.Pricing.FXCacheTTL, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	priceService := services.NewPriceServiceFromConfig(cfg.Pricing, redisCache, logger)
	portfolioService := services.NewPortfolioService(store.Holdings, priceService, cfg.Pricing.Concurrency, logger)
	historyService := services.NewHistoryService(portfolioService, store.History, logger)

	scheduler := services.NewSnapshotScheduler(historyService, store.Holdings, cfg.Snapshot, logger)
	scheduler.Start(ctx)

	// Start metrics server
	go startMetricsServer(cfg.Snapshot.MetricsPort, scheduler, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping snapshotter...")

	// Graceful shutdown
	scheduler.Stop()

	stats := scheduler.GetStats()
	logger.Info("Snapshotter stopped",
		zap.Int64("runs", stats.Runs),
		zap.Int64("snapshots_recorded", stats.SnapshotsRecorded),
		zap.Int64("errors", stats.ErrorCount),
	)
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}

func startMetricsServer(port int, scheduler *services.SnapshotScheduler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		stats := scheduler.GetStats()
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK runs=%d recorded=%d errors=%d\n", stats.Runs, stats.SnapshotsRecorded, stats.ErrorCount)
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
