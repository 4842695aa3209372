package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"bokji/pkg/platform/circuit"
)

// Redis is the production cache. It is strictly best-effort: every backend
// failure is absorbed, logged through the circuit breaker transitions, and
// surfaced to callers as a miss or a no-op. Correctness never depends on it.
type Redis struct {
	client  *redis.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// RedisOption configures the Redis cache.
type RedisOption func(*Redis)

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) RedisOption {
	return func(c *Redis) { c.logger = logger }
}

// NewRedis wraps a redis client. A nil client yields a cache that always
// misses, so callers can wire it unconditionally.
func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	c := &Redis{
		client:  client,
		breaker: circuit.New("recommendation-cache", circuit.WithFailureThreshold(3)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.client == nil {
		return false, nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recordSuccess()
		return false, nil
	}
	if err != nil {
		c.recordFailure("get", err)
		return false, nil
	}
	c.recordSuccess()

	if err := json.Unmarshal(raw, dest); err != nil {
		// A corrupt entry is as good as a miss; drop it so it cannot
		// poison later reads.
		c.logger.Warn("cache entry corrupt, deleting", "key", key, "error", err.Error())
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache value not serializable", "key", key, "error", err.Error())
		return nil
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.recordFailure("set", err)
		return nil
	}
	c.recordSuccess()
	return nil
}

func (c *Redis) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	_, err := c.DeleteByPattern(ctx, UserPrefix(userID)+"*")
	return err
}

func (c *Redis) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	if c.client == nil {
		return 0, nil
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.recordFailure("scan", err)
			return deleted, nil
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				c.recordFailure("del", err)
				return deleted, nil
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.recordSuccess()
	return deleted, nil
}

func (c *Redis) recordFailure(op string, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("cache backend unavailable, serving without cache",
			"op", op, "error", err.Error())
	}
}

func (c *Redis) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("cache backend recovered")
	}
}
