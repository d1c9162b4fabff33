// Package cache wraps redis/go-redis/v9 with the primitives the commerce
// core needs: JSON get/set with TTL, distributed locks, atomic counters and
// a Lua-scripted check-then-decrement for flight availability.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps a redis.Client with Altis-specific helpers.
type Client struct {
	*redis.Client
}

// New builds a Client from a redis connection URL.
func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Client{Client: redis.NewClient(opts)}, nil
}

// SetJSON marshals value and stores it under key with the given TTL.
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON fetches key and unmarshals it into dest. Returns redis.Nil on miss.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.Client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// AcquireLock attempts a SET-IF-NOT-EXISTS lock with TTL, returning whether
// the caller won.
func (c *Client) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.Client.SetNX(ctx, key, "locked", ttl).Result()
}

// ReleaseLock deletes a previously-acquired lock key.
func (c *Client) ReleaseLock(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// IncrBy atomically increments key by delta (may be negative) and returns
// the resulting value.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	return c.Client.IncrBy(ctx, key, delta).Result()
}

// GetInt reads key as an integer.
func (c *Client) GetInt(ctx context.Context, key string) (int64, error) {
	return c.Client.Get(ctx, key).Int64()
}

// checkAndDecrementScript is the atomic "decrement iff the post-decrement
// value would stay non-negative, and the key must already exist" operation
// the availability cache's "miss is not negative seeding" invariant
// requires: a plain DECRBY would happily create the key at a negative
// value, which would silently corrupt availability counts.
var checkAndDecrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local current = tonumber(redis.call("GET", KEYS[1]))
local amount = tonumber(ARGV[1])
if current - amount < 0 then
	return -2
end
return redis.call("DECRBY", KEYS[1], amount)
`)

// CheckAndDecrement atomically decrements key by amount, refusing to create
// the key (cache miss) or to go negative. Returns (newValue, true, nil) on
// success, (0, false, nil) on miss-or-underflow, for the caller to
// distinguish "re-fill from store" from "hard conflict".
func (c *Client) CheckAndDecrement(ctx context.Context, key string, amount int64) (int64, bool, error) {
	res, err := checkAndDecrementScript.Run(ctx, c.Client, []string{key}, amount).Int64()
	if err != nil {
		return 0, false, err
	}
	if res < 0 {
		return 0, false, nil
	}
	return res, true, nil
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
