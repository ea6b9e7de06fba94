package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// GetJSON loads a cached payload; a miss is (false, nil).
func (c *Client) GetJSON(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.redisdb.Get(ctx, key).Bytes()

	if err == redis.Nil {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

func (c *Client) SetJSON(ctx context.Context, key string, raw []byte, ttl time.Duration) error {
	return c.redisdb.Set(ctx, key, raw, ttl).Err()
}

func (c *Client) Delete(ctx context.Context, key string) error {
	return c.redisdb.Del(ctx, key).Err()
}

// Raw exposes the underlying client.
func (c *Client) Raw() *redis.Client {
	return c.redisdb
}
