package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlot stores values as plain Redis strings, without expiry
type RedisSlot struct {
	client *redis.Client
}

// NewRedisSlot wraps an existing client. Close closes the client.
func NewRedisSlot(client *redis.Client) *RedisSlot {
	return &RedisSlot{client: client}
}

// OpenRedis connects to Redis and verifies the connection with PING
func OpenRedis(ctx context.Context, opts *redis.Options) (*RedisSlot, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisSlot(client), nil
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (r *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisSlot) Close() error {
	return r.client.Close()
}
