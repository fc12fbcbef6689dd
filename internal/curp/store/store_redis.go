package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"curpkit/internal/curp/models"
	"curpkit/pkg/platform/sentinel"
)

const redisKeyPrefix = "curp:code:"

// RedisCache shares issued codes across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Find(ctx context.Context, key string) (*models.CachedCode, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w: %w", sentinel.ErrUnavailable, err)
	}
	var record models.CachedCode
	if err := json.Unmarshal(raw, &record); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the next save.
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}

func (c *RedisCache) Save(ctx context.Context, key string, record models.CachedCode) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal cached code: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
