// Package cache provides the Redis-backed shared counter store used for
// distributed rate limiting.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vitalplate/v1/internal/infrastructure/config"
	"github.com/vitalplate/v1/internal/ports/outbound"
)

// RedisWindowStore counts fixed-window admissions in Redis so every process
// observes the same per-caller counter.
type RedisWindowStore struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisWindowStore connects to Redis and verifies the connection.
func NewRedisWindowStore(cfg *config.RedisConfig, logger *zap.Logger) (*RedisWindowStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr()))

	return &RedisWindowStore{
		client: client,
		logger: logger.Named("redis-window-store"),
	}, nil
}

var _ outbound.WindowStore = (*RedisWindowStore)(nil)

// Incr bumps the counter for key and arms the window expiry on the first
// increment. INCR and EXPIRE run in one pipeline round trip.
func (s *RedisWindowStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment window counter: %w", err)
	}

	return incr.Val(), nil
}

// Close releases the underlying connection pool.
func (s *RedisWindowStore) Close() error {
	return s.client.Close()
}
