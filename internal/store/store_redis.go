package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/pai-content/internal/platform/cache"
)

// RedisStore keeps records in Redis or Dragonfly as plain string values.
type RedisStore struct {
	cache *cache.Cache
}

// NewRedisStore wraps an open cache client.
func NewRedisStore(c *cache.Cache) (*RedisStore, error) {
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("cache client is nil")
	}
	return &RedisStore{cache: c}, nil
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	v, err := s.cache.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.cache.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.cache.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.cache.HealthCheck(ctx)
}

func (s *RedisStore) Close() error {
	return s.cache.Close()
}
