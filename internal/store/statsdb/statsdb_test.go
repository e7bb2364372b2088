package statsdb

import (
	"context"
	"testing"
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

func TestIncrementPlayCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, want := range []int64{1, 2, 3} {
		got, err := store.IncrementPlayCount(ctx, "track-1")
		if err != nil {
			t.Fatalf("IncrementPlayCount (call %d): %v", i, err)
		}
		if got != want {
			t.Errorf("IncrementPlayCount (call %d) = %d, want %d", i, got, want)
		}
	}
}

func TestGetStatUnplayedTrack(t *testing.T) {
	store := openTestStore(t)
	stat, err := store.GetStat(context.Background(), "never-played")
	if err != nil {
		t.Fatalf("GetStat: %v", err)
	}
	if stat.PlayCount != 0 {
		t.Errorf("PlayCount = %d, want 0", stat.PlayCount)
	}
	if stat.LastPlayedAt != nil {
		t.Errorf("LastPlayedAt = %v, want nil", stat.LastPlayedAt)
	}
}

func TestGetAllStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.IncrementPlayCount(ctx, "a"); err != nil {
		t.Fatalf("IncrementPlayCount: %v", err)
	}
	if _, err := store.IncrementPlayCount(ctx, "b"); err != nil {
		t.Fatalf("IncrementPlayCount: %v", err)
	}
	if _, err := store.IncrementPlayCount(ctx, "b"); err != nil {
		t.Fatalf("IncrementPlayCount: %v", err)
	}

	all, err := store.GetAllStats(ctx)
	if err != nil {
		t.Fatalf("GetAllStats: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	if all["a"].PlayCount != 1 {
		t.Errorf("a.PlayCount = %d, want 1", all["a"].PlayCount)
	}
	if all["b"].PlayCount != 2 {
		t.Errorf("b.PlayCount = %d, want 2", all["b"].PlayCount)
	}
}
