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

	"github.com/kailas-cloud/alprsearch/internal/config"
	dbRedis "github.com/kailas-cloud/alprsearch/internal/db/redis"
	"github.com/kailas-cloud/alprsearch/internal/domain/edm"
	logpkg "github.com/kailas-cloud/alprsearch/internal/logger"
	"github.com/kailas-cloud/alprsearch/internal/metrics"
	auditrepo "github.com/kailas-cloud/alprsearch/internal/repository/audit"
	hotlistrepo "github.com/kailas-cloud/alprsearch/internal/repository/hotlist"
	recentrepo "github.com/kailas-cloud/alprsearch/internal/repository/recent"
	chiTransport "github.com/kailas-cloud/alprsearch/internal/transport/chi"
	"github.com/kailas-cloud/alprsearch/internal/transport/upstream"
	edmuc "github.com/kailas-cloud/alprsearch/internal/usecase/edm"
	healthuc "github.com/kailas-cloud/alprsearch/internal/usecase/health"
	hotlistuc "github.com/kailas-cloud/alprsearch/internal/usecase/hotlist"
	qualityuc "github.com/kailas-cloud/alprsearch/internal/usecase/quality"
	searchuc "github.com/kailas-cloud/alprsearch/internal/usecase/search"
	"github.com/kailas-cloud/alprsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting alprsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Int("agencies", len(cfg.Search.Agencies)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
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

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	api := upstream.NewClient(&upstream.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Token:     cfg.Upstream.Token,
		Timeout:   time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
		RateLimit: cfg.Upstream.RateLimit,
		RateBurst: cfg.Upstream.RateBurst,
		Logger:    logger,
	})

	// Repositories
	recentRepo := recentrepo.New(store, cfg.Recent.Size)
	hotlistRepo := hotlistrepo.New(store, time.Duration(cfg.Hotlist.TTLSec)*time.Second)
	auditRepo := auditrepo.New(store, cfg.Audit.IndexSize,
		time.Duration(cfg.Audit.RetentionDays)*24*time.Hour)

	// Use cases
	registry := edmuc.New(api, time.Duration(cfg.Search.PropertyTypeTTLSec)*time.Second)
	if err := registry.Warm(ctx); err != nil {
		// Not fatal: the registry is loaded again on first search.
		logger.Warn("Failed to preload property types", zap.Error(err))
	}

	hotlistSvc := hotlistuc.New(hotlistRepo, api, cfg.Hotlist.EntitySetID)
	searchSvc := searchuc.New(registry, hotlistSvc, recentRepo, auditRepo, api, searchuc.Config{
		EntitySetID: cfg.Search.EntitySetID,
		Agencies:    edm.NewAgencyEntitySets(cfg.Search.Agencies),
		PageSize:    cfg.Search.PageSize,
	})
	qualitySvc := qualityuc.New(api, api, registry, qualityuc.Config{
		RecordsEntitySetID:  cfg.Quality.RecordsEntitySetID,
		AgenciesEntitySetID: cfg.Quality.AgenciesEntitySetID,
		Concurrency:         cfg.Quality.Concurrency,
	})
	healthSvc := healthuc.New(store, api)

	server := chiTransport.NewServer(searchSvc, hotlistSvc, qualitySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

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
				zap.String("user", r.Header.Get(chiTransport.UserHeader)),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
