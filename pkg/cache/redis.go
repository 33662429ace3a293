package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JBK2116/CollaBoard/pkg/config"
)

// RedisStore backs the flag store with Redis so lock state survives process
// restarts and is shared across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis backend selected but no redis configuration provided")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Set records the flag with the given TTL.
func (r *RedisStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set flag %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the flag is present; Redis expires entries itself.
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check flag %s: %w", key, err)
	}
	return n > 0, nil
}

// Delete removes the flag.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete flag %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
