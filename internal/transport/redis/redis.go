// Package redis implements the pub/sub transport on top of Redis
// PUBLISH/SUBSCRIBE.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/volleyhq/volley/internal/retry"
	"github.com/volleyhq/volley/internal/transport"
)

const publishTimeout = 3 * time.Second

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Client wraps the Redis client behind the transport interface.
type Client struct {
	rdb *redis.Client
}

var _ transport.Client = (*Client)(nil)

// NewClient connects to Redis and verifies the connection, retrying
// transient dial failures with backoff.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := retry.EnsureTimeout(ctx, retry.DialTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			return &Client{rdb: rdb}, nil
		}
		if !retry.IsRetryable(err) || attempt == retry.MaxAttempts {
			break
		}
		retry.SleepWithBackoff(ctx, attempt)
	}
	rdb.Close()
	return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
}

// Publish sends one message to channel.
func (c *Client) Publish(ctx context.Context, channel, payload string) error {
	ctx, cancel := retry.EnsureTimeout(ctx, publishTimeout)
	defer cancel()
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe delivers messages on channel to handler until ctx is canceled.
func (c *Client) Subscribe(ctx context.Context, channel string, handler transport.Handler) error {
	sub := c.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// Force the SUBSCRIBE round trip so a bad channel or dead server
	// surfaces here instead of as a silent empty stream.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to channel %s: %w", channel, err)
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			handler(msg.Channel, msg.Payload)
		}
	}
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
