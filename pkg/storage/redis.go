package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "spark:"

// RedisKV stores values as plain redis strings with no expiry.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (s *RedisKV) makeKey(key string) string {
	return redisPrefix + key
}

func (s *RedisKV) Get(key string) ([]byte, bool, error) {
	data, err := s.client.Get(context.Background(), s.makeKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to GET %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisKV) Set(key string, value []byte) error {
	if err := s.client.Set(context.Background(), s.makeKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to SET %s: %w", key, err)
	}
	return nil
}

func (s *RedisKV) Close() error { return s.client.Close() }

var _ Store = (*RedisKV)(nil)
