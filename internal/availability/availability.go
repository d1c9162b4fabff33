// Package availability implements the Availability Cache component: fast,
// approximate per-flight seat counters and exact per-seat/trip locks, plus
// per-identity rate-limit counters.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/ThinkGrid-Labs/altis-engine/internal/cache"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
)

// Cache is the Availability Cache component.
type Cache struct {
	redis *cache.Client
	log   *logging.Logger
}

func New(redis *cache.Client, log *logging.Logger) *Cache {
	return &Cache{redis: redis, log: log}
}

func flightKey(flightID string) string { return fmt.Sprintf("flight:%s:availability", flightID) }
func seatKey(flightID, seatNumber string) string { return fmt.Sprintf("seat:%s:%s", flightID, seatNumber) }
func tripKey(tripID string) string { return fmt.Sprintf("trip:%s", tripID) }

// DecrementResult distinguishes a won decrement from a cache miss
// (requiring re-derivation from the durable store) from a hard underflow
// (requiring rollback of sibling decrements in the same acceptance).
type DecrementResult int

const (
	DecrementOK DecrementResult = iota
	DecrementMiss
	DecrementUnderflow
)

// DecrementFlightAvailability atomically decrements the cached seat count
// for flightID by amount. A miss (key absent) is reported distinctly from
// an underflow (key present but insufficient). Its caller,
// inventory.HardHoldFlight, treats both as a conflict and rolls back prior
// decrements in the same call; nothing re-derives the count from a store on
// a miss. Negative values are never written back.
func (c *Cache) DecrementFlightAvailability(ctx context.Context, flightID string, amount int64) (DecrementResult, error) {
	start := time.Now()
	_, ok, err := c.redis.CheckAndDecrement(ctx, flightKey(flightID), amount)
	if err != nil {
		return DecrementMiss, err
	}
	if !ok {
		exists, existsErr := c.redis.Exists(ctx, flightKey(flightID)).Result()
		if existsErr == nil && exists == 0 {
			c.log.CacheOp("decrement", flightKey(flightID), false, time.Since(start))
			return DecrementMiss, nil
		}
		return DecrementUnderflow, nil
	}
	c.log.CacheOp("decrement", flightKey(flightID), true, time.Since(start))
	return DecrementOK, nil
}

// IncrementFlightAvailability releases previously-decremented seats back to
// the cache (cancel/expire/rollback path).
func (c *Cache) IncrementFlightAvailability(ctx context.Context, flightID string, amount int64) error {
	_, err := c.redis.IncrBy(ctx, flightKey(flightID), amount)
	return err
}

// SetFlightAvailability warm-fills the cache with a remaining-seat count,
// clamped at zero. Nothing in this repository calls it; no availability
// worker or cache-miss recovery path exists here.
func (c *Cache) SetFlightAvailability(ctx context.Context, flightID string, remaining int64) error {
	if remaining < 0 {
		remaining = 0
	}
	return c.redis.Set(ctx, flightKey(flightID), remaining, 0).Err()
}

// GetFlightAvailability reads the current cached count.
func (c *Cache) GetFlightAvailability(ctx context.Context, flightID string) (int64, bool, error) {
	v, err := c.redis.GetInt(ctx, flightKey(flightID))
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

// AcquireSeatLock attempts to claim a seat on behalf of tripID, returning
// whether the caller won.
func (c *Cache) AcquireSeatLock(ctx context.Context, flightID, seatNumber, tripID string, ttl time.Duration) (bool, error) {
	key := seatKey(flightID, seatNumber)
	won, err := c.redis.SetNX(ctx, key, tripID, ttl).Result()
	if err != nil {
		return false, err
	}
	return won, nil
}

// ReleaseSeatLock releases a seat lock, e.g. on cancel or hold expiry.
func (c *Cache) ReleaseSeatLock(ctx context.Context, flightID, seatNumber string) error {
	return c.redis.Del(ctx, seatKey(flightID, seatNumber)).Err()
}

// SeatLockHolder returns the trip id currently holding seatNumber, if any.
func (c *Cache) SeatLockHolder(ctx context.Context, flightID, seatNumber string) (string, bool, error) {
	v, err := c.redis.Get(ctx, seatKey(flightID, seatNumber)).Result()
	if err != nil {
		return "", false, nil
	}
	return v, true, nil
}

// SetTripHash writes the trip hold's hash fields with a TTL.
func (c *Cache) SetTripHash(ctx context.Context, tripID string, fields map[string]string, ttl time.Duration) error {
	args := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		args[k] = v
	}
	if err := c.redis.HSet(ctx, tripKey(tripID), args).Err(); err != nil {
		return err
	}
	return c.redis.Expire(ctx, tripKey(tripID), ttl).Err()
}

// GetTripHash reads the trip hold's hash fields.
func (c *Cache) GetTripHash(ctx context.Context, tripID string) (map[string]string, error) {
	return c.redis.HGetAll(ctx, tripKey(tripID)).Result()
}

// DeleteTripHash removes the trip hold entirely (release).
func (c *Cache) DeleteTripHash(ctx context.Context, tripID string) error {
	return c.redis.Del(ctx, tripKey(tripID)).Err()
}

// IncrementRateLimit atomically increments a per-identity counter within a
// window, creating the window TTL on first increment.
func (c *Cache) IncrementRateLimit(ctx context.Context, identity string, window time.Duration) (int64, error) {
	key := fmt.Sprintf("ratelimit:%s", identity)
	count, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = c.redis.Expire(ctx, key, window).Err()
	}
	return count, nil
}
