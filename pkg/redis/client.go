package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a write-side Redis client: pub/sub publishing and keyed snapshots.
type Client struct {
	client *redis.Client
	prefix string
}

// NewClient connects and pings the server.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &Config{
		Addr:         "localhost:6379",
		PoolSize:     4,
		PoolTimeout:  10 * time.Second,
		MinIdleConns: 1,
		Prefix:       "flowscan",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Client{client: client, prefix: cfg.Prefix}, nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(client *redis.Client, prefix string) *Client {
	return &Client{client: client, prefix: prefix}
}

// Publish sends value to channel and returns the number of receivers.
func (c *Client) Publish(ctx context.Context, channel string, value interface{}) (int64, error) {
	data, err := encode(value)
	if err != nil {
		return 0, err
	}
	return c.client.Publish(ctx, channel, data).Result()
}

// Set stores value under the prefixed key.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), data, expiration).Err()
}

// Key returns key with the client prefix.
func (c *Client) Key(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal value: %w", err)
		}
		return data, nil
	}
}
