package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "journal:ratelimit:"

// slidingWindow trims expired hits and records a new one only when it fits.
// Rejected updates do not extend the window.
var slidingWindow = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local hits = redis.call('ZCARD', KEYS[1])
if hits >= limit then
  return {0, hits}
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, hits + 1}
`)

// RedisLimiter keeps per-key hit timestamps in a sorted set so limits hold
// across several bot processes.
type RedisLimiter struct {
	client *redis.Client
	log    *slog.Logger
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter returns a Limiter backed by client.
func NewRedisLimiter(client *redis.Client, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}
	return &RedisLimiter{client: client, log: log}
}

// Check records a hit for key unless limit hits already fall inside window.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if l.client == nil {
		return nil, errors.New("ratelimit: redis client is nil")
	}

	now := time.Now()
	resetAt := now.Add(window)
	if limit <= 0 {
		return &Result{ResetAt: resetAt}, ErrLimitExceeded
	}

	reply, err := slidingWindow.Run(ctx, l.client,
		[]string{redisKeyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		l.log.Error("rate limit script failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("ratelimit: %w", err)
	}
	if len(reply) != 2 {
		return nil, fmt.Errorf("ratelimit: unexpected script reply %v", reply)
	}

	res := &Result{
		Allowed:   reply[0] == 1,
		Remaining: max(limit-int(reply[1]), 0),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		return res, ErrLimitExceeded
	}
	return res, nil
}
