package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"zonecheck/internal/api"
	"zonecheck/internal/config"
	"zonecheck/internal/logging"
	"zonecheck/internal/postgres"
	"zonecheck/internal/redis"
	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/lookup"
	"zonecheck/internal/service/zone"
	"zonecheck/internal/standards"
	"zonecheck/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		// The logger depends on config, so this is the one place we print raw
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := initializeDatabaseAndCache(cfg, logger)
	defer closeConnections(logger)

	catalog, svc := initializeServices(ctx, cfg, cache, logger)

	stopWorkers := worker.StartAllWorkers(ctx, logger, catalog, cfg.ReloadInterval)
	defer stopWorkers()

	reportMemoryStats(ctx, logger)

	runAPIServer(ctx, cfg, svc, catalog, logger)
}

func initializeDatabaseAndCache(cfg config.Config, logger *zap.Logger) *redis.Cache {
	if cfg.DBUrl == "" {
		logger.Fatal("DB_URL is required")
	}

	// Initialize PostgreSQL
	if _, err := postgres.Init(cfg.DBUrl, logger); err != nil {
		logger.Fatal("Failed to initialize PostgreSQL", zap.Error(err))
	}

	// Initialize Redis; the lookup cache is optional
	if cfg.RedisUrl == "" {
		logger.Info("REDIS_URL not set, lookup cache disabled")
		return redis.NewCache(nil, 0, config.StoreTimeout)
	}
	client, err := redis.Init(cfg.RedisUrl, logger)
	if err != nil {
		logger.Warn("Redis unavailable, lookup cache disabled", zap.Error(err))
		return redis.NewCache(nil, 0, config.StoreTimeout)
	}
	return redis.NewCache(client, cfg.LookupCacheTTL, config.StoreTimeout)
}

func initializeServices(ctx context.Context, cfg config.Config, cache *redis.Cache, logger *zap.Logger) (*jurisdiction.Catalog, *lookup.Service) {
	table, err := standards.Load(cfg.StandardsFile)
	if err != nil {
		logger.Fatal("Failed to load standards table", zap.String("file", cfg.StandardsFile), zap.Error(err))
	}
	logger.Info("Standards table loaded", zap.Int("zones", table.Len()))

	policy, err := zone.ParseTieBreak(cfg.TieBreak)
	if err != nil {
		logger.Fatal("Invalid TIE_BREAK", zap.Error(err))
	}

	source := postgres.NewSource(postgres.GetDB(), logger)
	catalog := jurisdiction.NewCatalog(source, policy, logger)

	// A partial failure still serves the jurisdictions that did load
	if err := catalog.LoadAll(ctx); err != nil {
		logger.Error("Some jurisdictions failed to load", zap.Error(err))
	}

	svc := lookup.NewService(catalog, table, cache, logger, lookup.Options{
		BatchWorkers:   cfg.BatchWorkers,
		BatchMaxPoints: cfg.BatchMaxPoints,
	})
	return catalog, svc
}

func runAPIServer(ctx context.Context, cfg config.Config, svc *lookup.Service, catalog *jurisdiction.Catalog, logger *zap.Logger) {
	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())

	// Configure API routes
	api.SetupRouter(r, svc, catalog, logger)

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown failed", zap.Error(err))
		}
	}()

	// Start the server
	logger.Info("API server listening", zap.String("addr", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("API server failed", zap.Error(err))
	}
}

func reportMemoryStats(ctx context.Context, logger *zap.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)
				logger.Debug("memory stats",
					zap.Uint64("alloc_mib", m.Alloc/1024/1024),
					zap.Uint64("total_alloc_mib", m.TotalAlloc/1024/1024),
					zap.Uint64("sys_mib", m.Sys/1024/1024),
					zap.Uint32("num_gc", m.NumGC))
			}
		}
	}()
}

func closeConnections(logger *zap.Logger) {
	if err := postgres.Close(); err != nil {
		logger.Error("Error closing PostgreSQL connection", zap.Error(err))
	}

	if err := redis.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}

	logger.Info("PostgreSQL and Redis connections closed")
}
