package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CalendarCache keeps serialized client calendar ranges in Redis. Every
// entry key embeds the client's current version, so bumping the version
// drops all ranges of that client at once.
type CalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCalendarCache(rdb *redis.Client, ttl time.Duration) *CalendarCache {
	return &CalendarCache{rdb: rdb, ttl: ttl}
}

func versionKey(clientID string) string {
	return fmt.Sprintf("calendar:%s:version", clientID)
}

func entryKey(clientID string, version int64, rangeKey string) string {
	return fmt.Sprintf("calendar:%s:%d:%s", clientID, version, rangeKey)
}

func (c *CalendarCache) version(ctx context.Context, clientID string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(clientID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// Get returns the cached payload. A miss is not an error.
func (c *CalendarCache) Get(ctx context.Context, clientID, rangeKey string) ([]byte, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	v, err := c.version(ctx, clientID)
	if err != nil {
		return nil, false, err
	}

	payload, err := c.rdb.Get(ctx, entryKey(clientID, v, rangeKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (c *CalendarCache) Set(ctx context.Context, clientID, rangeKey string, payload []byte) error {
	if c == nil {
		return nil
	}

	v, err := c.version(ctx, clientID)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, entryKey(clientID, v, rangeKey), payload, c.ttl).Err()
}

// Invalidate bumps the client's version. Old entries expire on their own.
func (c *CalendarCache) Invalidate(ctx context.Context, clientID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, versionKey(clientID)).Err()
}
