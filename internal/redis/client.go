package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"carts/internal/observability/metrics"
)

// cartTTL bounds how long a serialized cart may be served without a store
// read. Mutations invalidate eagerly; the TTL only covers missed
// invalidations.
const cartTTL = 30 * time.Minute

// Client wraps go-redis and exposes the cart cache. It implements
// cart.Cache.
type Client struct {
	rdb *goRedis.Client
}

// New creates a Redis client and verifies connectivity.
func New(addr string) (*Client, error) {
	rdb := goRedis.NewClient(&goRedis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

// Close shuts down the underlying Redis client.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetCart returns the serialized cart for a customer, with a miss flag.
func (c *Client) GetCart(ctx context.Context, customerID string) ([]byte, bool, error) {
	start := time.Now()
	defer func() { metrics.ObserveRedisOperation("get_cart", time.Since(start)) }()
	payload, err := c.rdb.Get(ctx, c.CartKey(customerID)).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// SetCart stores the serialized cart for a customer.
func (c *Client) SetCart(ctx context.Context, customerID string, payload []byte) error {
	start := time.Now()
	defer func() { metrics.ObserveRedisOperation("set_cart", time.Since(start)) }()
	return c.rdb.Set(ctx, c.CartKey(customerID), payload, cartTTL).Err()
}

// InvalidateCart drops the cached cart after a mutation.
func (c *Client) InvalidateCart(ctx context.Context, customerID string) error {
	start := time.Now()
	defer func() { metrics.ObserveRedisOperation("invalidate_cart", time.Since(start)) }()
	return c.rdb.Del(ctx, c.CartKey(customerID)).Err()
}

// CartKey returns the Redis key holding a customer's serialized cart.
func (c *Client) CartKey(customerID string) string {
	return fmt.Sprintf("cart:%s", customerID)
}
