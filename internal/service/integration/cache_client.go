package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CacheClient stores JSON values with a TTL and deduplicates work by key.
type CacheClient interface {
	// Get decodes the cached value into out and reports whether it was found.
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// AcquireOnce reports true the first time key is seen within the TTL.
	AcquireOnce(ctx context.Context, key string) bool
	// Release forgets key so a retried event can acquire it again.
	Release(ctx context.Context, key string)
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewCacheClient(rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) CacheClient {
	return &redisCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode cached value: %w", err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (c *redisCache) AcquireOnce(ctx context.Context, key string) bool {
	ok, err := c.rdb.SetNX(ctx, "dedup:"+key, 1, c.ttl).Result()
	if err != nil {
		// Redis being down must not block processing.
		c.logger.Warn().Err(err).Str("key", key).Msg("Dedup check failed, allowing processing")
		return true
	}
	if !ok {
		c.logger.Info().Str("key", key).Msg("Skipped duplicated event")
	}
	return ok
}

func (c *redisCache) Release(ctx context.Context, key string) {
	if err := c.rdb.Del(ctx, "dedup:"+key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to release dedup key")
	}
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
