// Package cache provides a Redis-backed cache for rendered seat maps.
// Unlike a generic response cache, entries are keyed by session and
// detail mode and are invalidated explicitly on every ticket write, so a
// cached map is never older than the last claim against its session.
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeatMaps caches marshalled seat-map payloads. A nil Redis client
// yields a disabled cache whose methods are no-ops, mirroring how the
// rest of the service degrades when Redis is unreachable.
type SeatMaps struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewSeatMaps builds a seat-map cache. ttl bounds staleness in case an
// invalidation is lost (e.g. Redis restarted between write and expiry).
func NewSeatMaps(rdb *redis.Client, prefix string, ttl time.Duration) *SeatMaps {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "seatmap"
	}
	return &SeatMaps{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (c *SeatMaps) key(sessionID uint64, detailed bool) string {
	mode := "bool"
	if detailed {
		mode = "status"
	}
	return fmt.Sprintf("%s:%d:%s", c.prefix, sessionID, mode)
}

// Get returns the cached payload for a session and mode, if present.
func (c *SeatMaps) Get(ctx context.Context, sessionID uint64, detailed bool) ([]byte, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	bs, err := c.rdb.Get(ctx, c.key(sessionID, detailed)).Bytes()
	if err != nil {
		return nil, false
	}
	return bs, true
}

// Set stores a payload for a session and mode. Failures are logged and
// swallowed; the cache is an optimization, never a dependency.
func (c *SeatMaps) Set(ctx context.Context, sessionID uint64, detailed bool, payload []byte) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.SetEx(ctx, c.key(sessionID, detailed), payload, c.ttl).Err(); err != nil {
		log.Printf("seatmap-cache: set failed: %v", err)
	}
}

// Invalidate drops both modes of a session's cached map. Called after
// every ticket write touching the session.
func (c *SeatMaps) Invalidate(ctx context.Context, sessionID uint64) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := []string{c.key(sessionID, false), c.key(sessionID, true)}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("seatmap-cache: invalidate failed: %v", err)
	}
}
