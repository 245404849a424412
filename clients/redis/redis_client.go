package redis_client

import (
	"context"
	"time"

	"stockanalyzer/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a thin TTL cache over Redis for rendered API responses. Keys
// follow the "endpoint:symbol" convention. A nil Cache is valid and acts
// as a no-op so the server runs without Redis configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(ctx context.Context, cfg config.Redis) *Cache {
	if cfg.Addr == "" {
		zap.L().Info("Redis not configured, response caching disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Error("Redis ping failed, response caching disabled", zap.Error(err))
		return nil
	}

	zap.L().Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return &Cache{client: client, ttl: cfg.TTL}
}

// Get returns the cached payload and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		zap.L().Error("Redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

// Set stores the payload under the cache's default TTL. Pass a non-zero
// ttl to override it per key.
func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if c == nil {
		return
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		zap.L().Error("Redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
