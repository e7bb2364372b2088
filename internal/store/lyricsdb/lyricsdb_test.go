package lyricsdb

import (
	"context"
	"testing"

	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLyricAutoDetectsFormat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	lyric, err := store.SaveLyric(ctx, "track-1", model.LyricUpload{
		Content: "[00:01.00]line one\n[00:05.00]line two",
	})
	if err != nil {
		t.Fatalf("SaveLyric: %v", err)
	}
	if lyric.Format != model.LyricFormatLRC {
		t.Errorf("Format = %q, want %q", lyric.Format, model.LyricFormatLRC)
	}
}

func TestSaveLyricUpsertPreservesCreatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.SaveLyric(ctx, "track-1", model.LyricUpload{Content: "plain text"})
	if err != nil {
		t.Fatalf("SaveLyric (first): %v", err)
	}

	second, err := store.SaveLyric(ctx, "track-1", model.LyricUpload{Content: "updated text"})
	if err != nil {
		t.Fatalf("SaveLyric (second): %v", err)
	}

	if second.CreatedAt != first.CreatedAt {
		t.Errorf("CreatedAt changed on update: %q -> %q", first.CreatedAt, second.CreatedAt)
	}
	if second.Content != "updated text" {
		t.Errorf("Content = %q, want %q", second.Content, "updated text")
	}
}

func TestGetLyricNotFound(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetLyric(context.Background(), "missing"); domainerr.StatusCode(err) != 404 {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestDeleteLyricRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveLyric(ctx, "track-1", model.LyricUpload{Content: "plain text"}); err != nil {
		t.Fatalf("SaveLyric: %v", err)
	}
	if has, err := store.HasLyric(ctx, "track-1"); err != nil || !has {
		t.Fatalf("HasLyric = %v, %v; want true, nil", has, err)
	}

	if err := store.DeleteLyric(ctx, "track-1"); err != nil {
		t.Fatalf("DeleteLyric: %v", err)
	}
	if has, err := store.HasLyric(ctx, "track-1"); err != nil || has {
		t.Fatalf("HasLyric after delete = %v, %v; want false, nil", has, err)
	}
	if err := store.DeleteLyric(ctx, "track-1"); domainerr.StatusCode(err) != 404 {
		t.Fatalf("expected NotFound deleting twice, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveLyric(ctx, "track-1", model.LyricUpload{Content: "plain text"}); err != nil {
		t.Fatalf("SaveLyric: %v", err)
	}
	if _, err := store.SaveLyric(ctx, "track-2", model.LyricUpload{Content: "[00:01.00]synced"}); err != nil {
		t.Fatalf("SaveLyric: %v", err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalLyrics != 2 {
		t.Errorf("TotalLyrics = %d, want 2", stats.TotalLyrics)
	}
	if stats.PlainFormatCount != 1 {
		t.Errorf("PlainFormatCount = %d, want 1", stats.PlainFormatCount)
	}
	if stats.LRCFormatCount != 1 {
		t.Errorf("LRCFormatCount = %d, want 1", stats.LRCFormatCount)
	}
}
