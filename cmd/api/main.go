package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-balances/internal/application/services"
	"github.com/bimakw/wallet-balances/internal/config"
	"github.com/bimakw/wallet-balances/internal/infrastructure/cache"
	"github.com/bimakw/wallet-balances/internal/infrastructure/database"
	"github.com/bimakw/wallet-balances/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-balances/internal/logger"
	"github.com/bimakw/wallet-balances/internal/presentation/handlers"
	"github.com/bimakw/wallet-balances/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting wallet-balances API",
		zap.Int("port", cfg.API.Port),
		zap.Int("max_concurrency", cfg.Aggregator.MaxConcurrency),
		zap.Duration("rpc_request_timeout", cfg.RPC.RequestTimeout),
	)

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	// Connect to Redis cache (optional)
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(cfg.Redis, log)
		if err != nil {
			log.Warn("Failed to connect to Redis, finished queries are kept in memory only", zap.Error(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	// Create repositories
	chainRepo := database.NewChainRepo(db.DB())
	walletRepo := database.NewWalletRepo(db.DB())

	// Balance clients are pooled per endpoint across submissions
	clientPool, err := ethereum.NewClientPool(cfg.Aggregator.ClientPoolSize, cfg.RPC, log)
	if err != nil {
		log.Fatal("Failed to create client pool", zap.Error(err))
	}
	defer clientPool.Close()

	var snapshotCache services.SnapshotCache
	if redisCache != nil {
		snapshotCache = redisCache
	}
	aggregator := services.NewBalanceAggregator(clientPool, snapshotCache, cfg.Aggregator, log)

	// Create services
	settingsService := services.NewSettingsService(chainRepo, walletRepo, log)
	balanceService := services.NewBalanceService(aggregator, chainRepo, walletRepo, log)

	// Create handlers
	chainHandler := handlers.NewChainHandler(settingsService, log)
	walletHandler := handlers.NewWalletHandler(settingsService, log)
	balanceHandler := handlers.NewBalanceHandler(balanceService, middleware.SubmitLimiter(cfg.API.SubmitPerMinute), log)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker, aggregator)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle(cfg.API.MetricsPath, promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))
		chainHandler.RegisterRoutes(r)
		walletHandler.RegisterRoutes(r)
		balanceHandler.RegisterRoutes(r)
	})

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
		log.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Stop dispatching queued balance queries and wait for in-flight ones
	aggregator.Close()

	log.Info("Server stopped")
}
