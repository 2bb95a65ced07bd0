package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/okani-health/okani/internal/cache"
	cacheRedis "github.com/okani-health/okani/internal/cache/redis"
	"github.com/okani-health/okani/internal/config"
	"github.com/okani-health/okani/internal/db/postgres"
	logpkg "github.com/okani-health/okani/internal/logger"
	"github.com/okani-health/okani/internal/metrics"
	announcementrepo "github.com/okani-health/okani/internal/repository/announcement"
	facilityrepo "github.com/okani-health/okani/internal/repository/facility"
	searchrepo "github.com/okani-health/okani/internal/repository/search"
	chiTransport "github.com/okani-health/okani/internal/transport/chi"
	alertsuc "github.com/okani-health/okani/internal/usecase/alerts"
	healthuc "github.com/okani-health/okani/internal/usecase/health"
	nearbyuc "github.com/okani-health/okani/internal/usecase/nearby"
	searchuc "github.com/okani-health/okani/internal/usecase/search"
	"github.com/okani-health/okani/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting okani discovery API",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Relational store
	store, err := postgres.NewStore(postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMin) * time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Cache. A failed or disabled cache never blocks startup: the
	// services treat every fault as a miss.
	var discoveryCache cache.Cache = cache.Noop{}
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		redisCache, err := cacheRedis.New(cacheRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache client", zap.Error(err))
		}
		defer redisCache.Close()
		discoveryCache = redisCache
		cachePinger = redisCache
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	} else {
		logger.Warn("Cache disabled, every request recomputes")
	}

	// Register discovery metrics explicitly (no init())
	metrics.RegisterDiscoveryMetrics()

	// Repositories
	facRepo := facilityrepo.New(store.DB())
	annRepo := announcementrepo.New(store.DB())
	srchRepo := searchrepo.New(store.DB())

	// Use case services
	alertsSvc := alertsuc.New(annRepo, discoveryCache, logger).
		WithTTL(time.Duration(cfg.Discovery.AlertsTTLSec) * time.Second).
		WithCacheMetrics(metrics.DiscoveryCacheTotal)
	nearbySvc := nearbyuc.New(facRepo, discoveryCache, logger).
		WithTTL(time.Duration(cfg.Discovery.NearbyTTLSec) * time.Second).
		WithCacheMetrics(metrics.DiscoveryCacheTotal)
	searchSvc := searchuc.New(srchRepo, discoveryCache, logger).
		WithTTL(time.Duration(cfg.Discovery.SearchTTLSec) * time.Second).
		WithCacheMetrics(metrics.DiscoveryCacheTotal)
	healthSvc := healthuc.New(store, cachePinger)

	server := chiTransport.NewServer(
		alertsSvc, nearbySvc, searchSvc, healthSvc,
		cfg.Discovery.SearchRatePerMin, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
