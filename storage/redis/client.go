package redis

import (
	"context"
	"io"

	goredis "github.com/redis/go-redis/v9"
)

// ListClient abstracts the minimal surface Log needs from a Redis client.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...[]byte) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// GoRedisClient implements ListClient with github.com/redis/go-redis/v9.
type GoRedisClient struct {
	c *goredis.Client
}

var (
	_ ListClient = (*GoRedisClient)(nil)
	_ io.Closer  = (*GoRedisClient)(nil)
)

// NewGoRedisClient connects lazily to the server at addr, e.g. "127.0.0.1:6379".
func NewGoRedisClient(addr string) *GoRedisClient {
	return &GoRedisClient{c: goredis.NewClient(&goredis.Options{Addr: addr})}
}

// Ping checks that the server is reachable.
func (g *GoRedisClient) Ping(ctx context.Context) error {
	return g.c.Ping(ctx).Err()
}

func (g *GoRedisClient) RPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return g.c.RPush(ctx, key, args...).Result()
}

func (g *GoRedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return g.c.LRange(ctx, key, start, stop).Result()
}

// Close closes the underlying connection pool.
func (g *GoRedisClient) Close() error {
	return g.c.Close()
}
