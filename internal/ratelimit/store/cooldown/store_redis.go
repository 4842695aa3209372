// Package cooldown implements the limiter's backing stores.
package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bokji/pkg/platform/sentinel"
)

// RedisStore is the production cooldown store. SET NX EX gives the atomic
// create-with-TTL the check-and-consume contract requires; the key's
// remaining TTL is the retry-after signal.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cooldown store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Acquire(ctx context.Context, key string, window time.Duration, maxRequests int) (bool, time.Duration, error) {
	if s.client == nil {
		return false, 0, sentinel.ErrUnavailable
	}

	if maxRequests <= 1 {
		created, err := s.client.SetNX(ctx, key, 1, window).Result()
		if err != nil {
			return false, 0, fmt.Errorf("cooldown setnx: %w", err)
		}
		if created {
			return true, 0, nil
		}
		return false, s.remaining(ctx, key, window), nil
	}

	// Counter variant for windows that admit more than one request. INCR
	// is atomic; the TTL read in the same pipeline tells us whether the
	// window is stamped yet.
	pipe := s.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("cooldown incr: %w", err)
	}

	count := incrCmd.Val()
	// Stamps the window on the first increment, and re-stamps it if a
	// crash between a previous INCR and EXPIRE left the key persistent.
	// Without this a TTL-less counter above max would reject forever.
	if ttlCmd.Val() < 0 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, fmt.Errorf("cooldown expire: %w", err)
		}
	}
	if count <= int64(maxRequests) {
		return true, 0, nil
	}
	return false, s.remaining(ctx, key, window), nil
}

func (s *RedisStore) remaining(ctx context.Context, key string, window time.Duration) time.Duration {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// Key vanished between calls or TTL unreadable; report the full
		// window rather than zero so callers still back off.
		return window
	}
	return ttl
}
