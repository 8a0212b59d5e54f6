package repository

import (
	"context"
	"time"

	redisapp "user_hub/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisURLCache caches resolved avatar URLs keyed by asset key. Entries carry
// a TTL below the presign expiry so a cached URL is never handed out stale.
type RedisURLCache struct {
	Client *redisapp.Client
}

func NewRedisURLCache(client *redisapp.Client) *RedisURLCache {
	return &RedisURLCache{Client: client}
}

func (c *RedisURLCache) Get(ctx context.Context, key string) (string, error) {
	url, err := c.Client.Get(ctx, urlCacheKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return url, err
}

func (c *RedisURLCache) Set(ctx context.Context, key, url string, ttl time.Duration) error {
	return c.Client.Set(ctx, urlCacheKey(key), url, ttl).Err()
}

func urlCacheKey(key string) string {
	return "avatar_url:" + key
}
