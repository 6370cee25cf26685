package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the transcript as a JSON-encoded redis list.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore stores turns under "<prefix>:transcript".
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, key: prefix + ":transcript"}
}

func (r *RedisStore) Append(ctx context.Context, turn Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *RedisStore) List(ctx context.Context) ([]Turn, error) {
	raw, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}
