// Package cache is an optional Redis-backed read-through cache of Track
// JSON in front of the in-memory library lookup. Strictly an optimization:
// every method degrades to a miss on any error, so callers never depend on
// Redis being up.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phreer/music-station/internal/model"
)

const trackTTL = time.Hour

func trackKey(id string) string { return "music-station:track:" + id }

// Cache wraps a redis.Client. A nil *Cache (or one whose client is
// unreachable) is safe to call — every method falls back to "miss" so the
// caller always falls through to the in-memory index.
type Cache struct {
	client *redis.Client
}

// New builds a Cache against addr/db. Ping is not checked here — a
// transient outage at startup degrades to cache-miss-on-every-call rather
// than failing the server boot.
func New(addr string, db int) *Cache {
	return &Cache{client: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// GetTrack returns a cached Track, or (nil, false) on any miss or error —
// callers always have a working fallback path.
func (c *Cache) GetTrack(ctx context.Context, id string) (*model.Track, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, trackKey(id)).Result()
	if err != nil {
		return nil, false
	}
	var t model.Track
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, false
	}
	return &t, true
}

// SetTrack caches a Track for an hour. Errors are swallowed — the cache is
// strictly an optimization, never a correctness dependency.
func (c *Cache) SetTrack(ctx context.Context, t *model.Track) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return
	}
	c.client.Set(ctx, trackKey(t.ID), raw, trackTTL)
}

// Invalidate drops a cached Track, called by every mutation endpoint
// (metadata, cover, play-count) right after the library's index replace so
// the cache never serves a stale Track.
func (c *Cache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, trackKey(id))
}

// Ping reports whether Redis is reachable, used by GET /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}
