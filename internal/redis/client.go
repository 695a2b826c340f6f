package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrNotFound = errors.New("key not found")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Completion locks
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, "lock:"+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	return ok, nil
}

func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "lock:"+key).Err()
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}

	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
