package kv

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisCommander is the subset of the application Redis client used by RedisStore.
// Both redis.Client and redis.MetricsClient from pkg/redis satisfy it.
type RedisCommander interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore persists values in Redis without expiry.
type RedisStore struct {
	client RedisCommander
	pinger func(ctx context.Context) error
	log    *slog.Logger
}

// NewRedisStore initializes a Redis-backed Store. ping may be nil.
func NewRedisStore(client RedisCommander, ping func(ctx context.Context) error, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		pinger: ping,
		log:    log,
	}
}

// Get returns the stored value or ErrNotFound when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNotFound
		}

		s.log.Error("failed to get value from redis", "key", key, "error", err)
		return "", err
	}

	return value, nil
}

// Set stores the value with no TTL so it survives restarts.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0); err != nil {
		s.log.Error("failed to save value in redis", "key", key, "error", err)
		return err
	}

	return nil
}

// Delete removes the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, key); err != nil {
		s.log.Error("failed to delete value from redis", "key", key, "error", err)
		return err
	}

	return nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s.pinger == nil {
		return nil
	}
	return s.pinger(ctx)
}
