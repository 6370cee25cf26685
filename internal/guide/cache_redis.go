package guide

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps answers in a single redis hash so they survive restarts.
type RedisCache struct {
	rdb *redis.Client
	key string
}

// NewRedisCache stores answers under the hash "<prefix>:answers".
func NewRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	return &RedisCache{rdb: rdb, key: prefix + ":answers"}
}

func (c *RedisCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.rdb.HGet(ctx, c.key, question).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup: %w", err)
	}
	return answer, true, nil
}

func (c *RedisCache) PutIfAbsent(ctx context.Context, question, answer string) (string, error) {
	set, err := c.rdb.HSetNX(ctx, c.key, question, answer).Result()
	if err != nil {
		return "", fmt.Errorf("cache store: %w", err)
	}
	if set {
		return answer, nil
	}
	existing, err := c.rdb.HGet(ctx, c.key, question).Result()
	if err != nil {
		return "", fmt.Errorf("cache lookup: %w", err)
	}
	return existing, nil
}

func (c *RedisCache) Len(ctx context.Context) (int, error) {
	n, err := c.rdb.HLen(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("cache size: %w", err)
	}
	return int(n), nil
}
