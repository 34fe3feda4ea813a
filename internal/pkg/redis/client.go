// internal/pkg/redis/client.go
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client 封装 go-redis 的 UniversalClient，单机与集群地址都能接。
type Client struct {
	rdb goredis.UniversalClient
}

// NewClient 创建并 ping 一次 Redis。addrs 格式为 "host1:port1,host2:port2"。
func NewClient(addrs string) (*Client, error) {
	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addrs, err)
	}
	return &Client{rdb: rdb}, nil
}

// GetClient 暴露底层客户端，给需要 pipeline 等高级能力的调用方。
func (c *Client) GetClient() goredis.UniversalClient {
	return c.rdb
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// Close 关闭底层连接池。
func (c *Client) Close() error {
	return c.rdb.Close()
}
