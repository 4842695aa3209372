package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bokji/internal/platform/config"
)

// Client wraps the go-redis client with health checking capabilities.
// A nil *Client is the "Redis not configured" state; every method and
// Unwrap tolerate it, so the result cache and refresh limiter run without
// Redis and simply lose caching and strict throttling.
type Client struct {
	*redis.Client
}

// New creates a Redis client from the provided configuration, verifying the
// connection before handing it out. An empty URL returns (nil, nil).
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	pingTimeout := cfg.DialTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

// Unwrap returns the raw go-redis client for store constructors that take
// *redis.Client directly. Nil-safe: an unconfigured Client unwraps to nil,
// which the stores treat as "degrade".
func (c *Client) Unwrap() *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.Client.Close()
}
