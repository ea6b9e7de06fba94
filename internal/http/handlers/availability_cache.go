package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/dardanh/fieldhub/internal/queue/redisclient"
	"github.com/redis/go-redis/v9"
)

// AvailabilityCache keeps short-lived copies of the unavailable-dates payload
// in redis so calendar widgets polling the same day do not hammer postgres.
// It is advisory only: booking always re-checks against the database, so a
// stale entry can never cause a double booking.
//
// Invalidation bumps a version counter instead of deleting keys, since the
// cached payloads are keyed per requested day.
type AvailabilityCache struct {
	rc  *redisclient.Client
	ttl time.Duration
}

const availabilityVersionKey = "rentals:unavailable:ver"

func NewAvailabilityCache(rc *redisclient.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &AvailabilityCache{rc: rc, ttl: ttl}
}

func (c *AvailabilityCache) Get(ctx context.Context, day string) ([]byte, bool) {
	if c == nil || c.rc == nil {
		return nil, false
	}

	key, err := c.key(ctx, day)
	if err != nil {
		return nil, false
	}

	raw, ok, err := c.rc.GetJSON(ctx, key)
	if err != nil || !ok {
		return nil, false
	}

	return raw, true
}

func (c *AvailabilityCache) Set(ctx context.Context, day string, raw []byte) {
	if c == nil || c.rc == nil {
		return
	}

	key, err := c.key(ctx, day)
	if err != nil {
		return
	}

	// best effort, redis being down never fails the request
	_ = c.rc.SetJSON(ctx, key, raw, c.ttl)
}

// Invalidate is called after any rental write.
func (c *AvailabilityCache) Invalidate(ctx context.Context) {
	if c == nil || c.rc == nil {
		return
	}

	_ = c.rc.Raw().Incr(ctx, availabilityVersionKey).Err()
}

func (c *AvailabilityCache) key(ctx context.Context, day string) (string, error) {
	ver, err := c.rc.Raw().Get(ctx, availabilityVersionKey).Int64()

	// a missing counter just means version zero
	if err != nil && err != redis.Nil {
		return "", err
	}

	return "rentals:unavailable:v" + strconv.FormatInt(ver, 10) + ":" + day, nil
}
