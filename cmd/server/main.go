package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zesch/rwse-checker/internal/api"
	"github.com/zesch/rwse-checker/internal/config"
	"github.com/zesch/rwse-checker/internal/domain"
	"github.com/zesch/rwse-checker/internal/mlm"
	"github.com/zesch/rwse-checker/internal/registry"
	"github.com/zesch/rwse-checker/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.Load(); err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	reg, cleanup := buildRegistry(ctx, logger)
	defer cleanup()
	logger.Info("confusion sets loaded",
		zap.String("source", config.ConfusionSetsSource()),
		zap.Int("groups", reg.GroupCount()),
		zap.Int("words", reg.WordCount()))

	provider, err := mlm.NewProvider(mlm.Options{
		Provider:          config.MLMProvider(),
		MaskToken:         config.MaskToken(),
		HFAPIKey:          config.HFAPIKey(),
		HFModel:           config.HFModel(),
		ONNXLibraryPath:   config.ONNXLibraryPath(),
		ONNXModelPath:     config.ONNXModelPath(),
		ONNXTokenizerPath: config.ONNXTokenizerPath(),
	})
	if err != nil {
		logger.Fatal("score provider initialization failed",
			zap.String("provider", config.MLMProvider()), zap.Error(err))
	}
	logger.Info("score provider initialized",
		zap.String("provider", config.MLMProvider()),
		zap.String("mask_token", provider.MaskToken()))
	defer closeProvider(provider, logger)

	if addr := config.RedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to ping redis", zap.Error(err))
		}
		provider = mlm.NewCachedProvider(provider, client, config.ScoreCacheTTL(), logger)
		logger.Info("score cache enabled",
			zap.String("redis_addr", addr),
			zap.Duration("ttl", config.ScoreCacheTTL()))
	}

	app := api.NewApp(reg, provider, logger)

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

// buildRegistry loads confusion sets from the configured source. The
// registry is immutable for the process lifetime; Postgres is consulted
// only here, so the pool is closed again right after loading.
func buildRegistry(ctx context.Context, logger *zap.Logger) (*registry.Registry, func()) {
	switch config.ConfusionSetsSource() {
	case "postgres":
		dbURL := config.DatabaseURL()
		if dbURL == "" {
			logger.Fatal("DATABASE_URL is required for the postgres confusion set source")
		}
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		reg, err := registry.NewFromStore(ctx, store.NewConfusionSetStore(pool))
		if err != nil {
			pool.Close()
			logger.Fatal("failed to load confusion sets from database", zap.Error(err))
		}
		return reg, pool.Close

	case "file":
		reg, err := registry.NewFromFile(config.ConfusionSetsPath())
		if err != nil {
			logger.Fatal("failed to load confusion sets file",
				zap.String("path", config.ConfusionSetsPath()), zap.Error(err))
		}
		return reg, func() {}

	default:
		logger.Fatal("unknown confusion set source",
			zap.String("source", config.ConfusionSetsSource()))
		return nil, nil
	}
}

func closeProvider(provider domain.ScoreProvider, logger *zap.Logger) {
	if closer, ok := provider.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close score provider", zap.Error(err))
		}
	}
}
