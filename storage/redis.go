package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Adapter = (*RedisAdapter)(nil)

// RedisAdapter persists records in Redis. A zero TTL keeps records until
// they are removed; a positive TTL turns the adapter into a read cache.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	return &RedisAdapter{
		client: client,
		ttl:    ttl,
	}
}

func (a *RedisAdapter) Read(ctx context.Context, key string, into any) (bool, error) {
	data, err := a.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, into); err != nil {
		return false, err
	}

	return true, nil
}

func (a *RedisAdapter) Write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return a.client.Set(ctx, key, data, a.ttl).Err()
}

func (a *RedisAdapter) Remove(ctx context.Context, key string) error {
	return a.client.Del(ctx, key).Err()
}
