// Package main is the entry point for the library API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/library-api/internal/config"
	"github.com/vyrodovalexey/library-api/internal/insight"
	"github.com/vyrodovalexey/library-api/internal/server"
	"github.com/vyrodovalexey/library-api/internal/service"
	"github.com/vyrodovalexey/library-api/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Bool("cache_enabled", cfg.CacheEnabled),
		zap.String("ai_endpoint", cfg.AIEndpoint),
		zap.String("ai_model", cfg.AIModel),
	)

	bookStore, err := buildStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create book store", zap.Error(err))
		return 1
	}
	defer func() {
		if err := bookStore.Close(); err != nil {
			logger.Warn("failed to close book store", zap.Error(err))
		}
	}()

	books := service.NewBookService(bookStore)
	generator := insight.NewClient(insight.Options{
		Endpoint: cfg.AIEndpoint,
		Model:    cfg.AIModel,
		APIKey:   cfg.AIAPIKey,
	})

	srv := server.New(cfg, logger, books, generator)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// buildStore creates the book store selected by cfg, optionally fronted by
// the redis cache.
func buildStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	var bookStore store.Store

	switch {
	case cfg.UsesDatabase():
		db, err := store.OpenDB(store.DBOptions{
			Driver:          cfg.StoreDriver,
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			Debug:           cfg.LogLevel == "debug",
		})
		if err != nil {
			return nil, err
		}

		gormStore, err := store.NewGormStore(db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}

		logger.Info("using sql book store", zap.String("driver", cfg.StoreDriver))
		bookStore = gormStore
	case cfg.StoreDriver == config.StoreMemory || cfg.StoreDriver == "":
		logger.Info("using in-memory book store")
		bookStore = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", store.ErrUnsupportedDriver, cfg.StoreDriver)
	}

	if !cfg.CacheEnabled {
		return bookStore, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	logger.Info("book cache enabled",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL),
	)
	return store.NewCachedStore(bookStore, client, cfg.CacheTTL, logger), nil
}
