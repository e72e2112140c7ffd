package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/portfolio-tracker/internal/application/services"
	"github.com/bimakw/portfolio-tracker/internal/config"
	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/authprovider"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/cache"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/storage"
	"github.com/bimakw/portfolio-tracker/internal/presentation/handlers"
	"github.com/bimakw/portfolio-tracker/internal/presentation/middleware"
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

	logger.Info("Starting portfolio-tracker API",
		zap.Int("port", cfg.API.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open storage
	store, err := storage.Open(ctx, cfg.Storage, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	// Connect to Redis cache (optional)
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

	// Create services
	priceService := services.NewPriceServiceFromConfig(cfg.Pricing, redisCache, logger)
	holdingService := services.NewHoldingService(store.Holdings, priceService, logger)
	portfolioService := services.NewPortfolioService(store.Holdings, priceService, cfg.Pricing.Concurrency, logger)
	historyService := services.NewHistoryService(portfolioService, store.History, logger)
	authService := services.NewAuthService(
		store.Users,
		store.Sessions,
		authprovider.NewClient(cfg.Auth.SessionDataURL, cfg.Auth.ProviderTimeout, nil),
		cfg.Auth.SessionTTL,
		logger,
	)

	// Memory storage is process-local, so snapshots must be taken here
	var scheduler *services.SnapshotScheduler
	if cfg.Snapshot.Embedded || store.Driver == storage.DriverMemory {
		scheduler = services.NewSnapshotScheduler(historyService, store.Holdings, cfg.Snapshot, logger)
		scheduler.Start(ctx)
	}

	// Create handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.CookieSecure, logger)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, historyService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(store, store.Driver, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.API.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no rate limiting)
	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(authService, logger)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

		authHandler.RegisterRoutes(r, requireAuth, middleware.CredentialRateLimiter(cfg.API.AuthRateLimit))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			for _, kind := range entities.HoldingKinds {
				handlers.NewHoldingHandler(holdingService, kind, logger).RegisterRoutes(r)
			}
			portfolioHandler.RegisterRoutes(r)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not found"}`))
		})
	})

	// Frontend build, if any
	if cfg.API.FrontendDir != "" {
		logger.Info("Serving frontend", zap.String("dir", cfg.API.FrontendDir))
		r.NotFound(handlers.NewSPAHandler(cfg.API.FrontendDir).ServeHTTP)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
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
