package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airport_service/pkg/api"
	"airport_service/pkg/auth"
	"airport_service/pkg/circuitbreaker"
	"airport_service/pkg/config"
	"airport_service/pkg/database"
	"airport_service/pkg/logger"
	"airport_service/pkg/middleware"
	"airport_service/pkg/registry"
	"airport_service/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Environment, cfg.App.Name)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	if err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.OTel.Enabled,
		ServiceName:   cfg.OTel.ServiceName,
		Environment:   cfg.App.Environment,
		CollectorAddr: cfg.OTel.CollectorAddr,
	}); err != nil {
		zlog.Fatal("failed to init tracing", zap.Error(err))
	}

	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}

	users := auth.NewService(db, auth.NewTokenManager(cfg.JWT))
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := users.EnsureStaff(ctx, cfg.Admin.Email, cfg.Admin.Password, zlog); err != nil {
			zlog.Fatal("failed to seed staff user", zap.Error(err))
		}
	}

	opts := api.RouterOptions{
		Tokens:      users.Tokens(),
		MediaDir:    cfg.Media.Dir,
		CORSOrigins: cfg.CORS.Origins,
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			zlog.Warn("redis unreachable, idempotency will fail open", zap.Error(err))
		}
		opts.Idempotency = middleware.Idempotency(middleware.IdempotencyConfig{
			Redis:   rdb,
			Breaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second),
			Logger:  zlog,
			TTL:     cfg.Redis.IdempotencyTTL,
		})
	}

	handler := api.NewHandler(db, zlog, users, registry.New(db, cfg.Media.Dir))
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("airport service starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		zlog.Error("tracer shutdown failed", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
