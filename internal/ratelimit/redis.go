package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs FixedWindow with a shared Redis counter so multiple
// service instances see the same windows. The key is given a TTL of one
// window on first increment and expires on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed counter store. Keys are namespaced
// with prefix to keep them apart from other users of the same database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Incr implements CounterStore.
func (s *RedisStore) Incr(key string, window time.Duration) (int64, time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	full := s.prefix + ":" + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, full)
	pipe.ExpireNX(ctx, full, window)
	ttl := pipe.TTL(ctx, full)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}
