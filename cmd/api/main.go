// Package main provides the VitalPlate generation API server
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appgen "github.com/vitalplate/v1/internal/application/generation"
	"github.com/vitalplate/v1/internal/infrastructure/ai/anthropic"
	"github.com/vitalplate/v1/internal/infrastructure/ai/mock"
	"github.com/vitalplate/v1/internal/infrastructure/cache"
	"github.com/vitalplate/v1/internal/infrastructure/config"
	"github.com/vitalplate/v1/internal/infrastructure/http/apiserver"
	gormstore "github.com/vitalplate/v1/internal/infrastructure/persistence/gorm"
	"github.com/vitalplate/v1/internal/infrastructure/persistence/memory"
	"github.com/vitalplate/v1/internal/ports/outbound"
	"github.com/vitalplate/v1/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	callers, recipes := buildStores(cfg, zapLogger)
	provider := buildProvider(cfg, zapLogger)
	limiter := buildLimiter(cfg, zapLogger)

	ledger := appgen.NewLedger(callers, int64(cfg.Generation.FreeMonthlyLimit), zapLogger)
	worker := appgen.NewWorker(provider, cfg.AI.Timeout, zapLogger)
	executor := appgen.NewExecutor(cfg.Generation.BatchConcurrency, cfg.Generation.ChunkDelay, zapLogger)
	service := appgen.NewService(limiter, ledger, worker, executor, recipes, cfg.Generation.FreeBatchLimit, zapLogger)

	server := apiserver.NewAPIServer(cfg, zapLogger, service)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}

// buildStores connects to Postgres when a database name is configured and
// falls back to in-memory stores otherwise.
func buildStores(cfg *config.Config, zapLogger *zap.Logger) (outbound.CallerRepository, outbound.RecipeStore) {
	if cfg.Database.Database == "" {
		zapLogger.Warn("no database configured, using in-memory stores")
		return memory.NewCallerRepository(), memory.NewRecipeStore()
	}

	db, err := gormstore.Open(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}
	return gormstore.NewCallerRepository(db), gormstore.NewRecipeRepository(db)
}

// buildProvider selects the completion provider. Without an API key the
// server runs against the deterministic mock provider.
func buildProvider(cfg *config.Config, zapLogger *zap.Logger) outbound.CompletionProvider {
	if cfg.AI.Provider == "anthropic" && cfg.AI.AnthropicKey != "" {
		return anthropic.NewClient(&cfg.AI, zapLogger)
	}
	zapLogger.Warn("no completion provider configured, using mock provider")
	return mock.NewClient(zapLogger)
}

// buildLimiter selects the rate limiter. The distributed limiter requires
// Redis; without it admission is tracked per process.
func buildLimiter(cfg *config.Config, zapLogger *zap.Logger) appgen.Admitter {
	if cfg.RateLimit.Distributed && cfg.Redis.Enabled {
		store, err := cache.NewRedisWindowStore(&cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		return appgen.NewDistributedLimiter(store, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window, zapLogger)
	}
	return appgen.NewLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window, zapLogger)
}
