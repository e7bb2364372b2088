package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/phreer/music-station/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), 0)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSetGetInvalidate(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	track := &model.Track{ID: "abc123", Path: "/music/a.flac", Title: "A", Format: "flac"}
	c.SetTrack(ctx, track)

	got, ok := c.GetTrack(ctx, "abc123")
	if !ok {
		t.Fatal("GetTrack after SetTrack: miss")
	}
	if got.Path != track.Path || got.Title != track.Title {
		t.Errorf("GetTrack = %+v, want %+v", got, track)
	}

	c.Invalidate(ctx, "abc123")
	if _, ok := c.GetTrack(ctx, "abc123"); ok {
		t.Error("GetTrack after Invalidate: hit, want miss")
	}
}

func TestGetMiss(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.GetTrack(context.Background(), "never-stored"); ok {
		t.Error("GetTrack on empty cache: hit, want miss")
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if _, ok := c.GetTrack(ctx, "x"); ok {
		t.Error("nil cache GetTrack: hit, want miss")
	}
	c.SetTrack(ctx, &model.Track{ID: "x"})
	c.Invalidate(ctx, "x")
	if err := c.Ping(ctx); err != nil {
		t.Errorf("nil cache Ping: %v, want nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache Close: %v, want nil", err)
	}
}
