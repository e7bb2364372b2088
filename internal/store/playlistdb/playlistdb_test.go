package playlistdb

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

func TestCreateAndGetPlaylist(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pl, err := store.CreatePlaylist(ctx, model.PlaylistCreate{Name: "Favorites"})
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if pl.ID == "" {
		t.Fatal("expected a generated id")
	}
	if len(pl.Tracks) != 0 {
		t.Fatalf("new playlist should have no tracks, got %v", pl.Tracks)
	}

	fetched, err := store.GetPlaylist(ctx, pl.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if fetched.Name != "Favorites" {
		t.Errorf("Name = %q, want Favorites", fetched.Name)
	}
}

func TestCreatePlaylistDuplicateName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.CreatePlaylist(ctx, model.PlaylistCreate{Name: "Favorites"}); err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	_, err := store.CreatePlaylist(ctx, model.PlaylistCreate{Name: "Favorites"})
	if domainerr.StatusCode(err) != 409 {
		t.Fatalf("expected AlreadyExists (409), got %v", err)
	}
}

func TestAddAndRemoveTrackRenumbers(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pl, err := store.CreatePlaylist(ctx, model.PlaylistCreate{Name: "Road Trip"})
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.AddTrackToPlaylist(ctx, pl.ID, id); err != nil {
			t.Fatalf("AddTrackToPlaylist(%s): %v", id, err)
		}
	}

	withThree, err := store.GetPlaylist(ctx, pl.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if got := withThree.Tracks; len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Tracks = %v, want [a b c]", got)
	}

	// Adding the same track again must be a no-op, not a duplicate entry.
	if _, err := store.AddTrackToPlaylist(ctx, pl.ID, "b"); err != nil {
		t.Fatalf("AddTrackToPlaylist (duplicate): %v", err)
	}
	afterDuplicate, err := store.GetPlaylist(ctx, pl.ID)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if len(afterDuplicate.Tracks) != 3 {
		t.Fatalf("duplicate add should not grow the list, got %v", afterDuplicate.Tracks)
	}

	afterRemove, err := store.RemoveTrackFromPlaylist(ctx, pl.ID, "b")
	if err != nil {
		t.Fatalf("RemoveTrackFromPlaylist: %v", err)
	}
	if got := afterRemove.Tracks; len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("Tracks after removal = %v, want [a c]", got)
	}
}

func TestUpdatePlaylistTracksReplace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	pl, err := store.CreatePlaylist(ctx, model.PlaylistCreate{Name: "Mix"})
	if err != nil {
		t.Fatalf("CreatePlaylist: %v", err)
	}
	if _, err := store.AddTrackToPlaylist(ctx, pl.ID, "x"); err != nil {
		t.Fatalf("AddTrackToPlaylist: %v", err)
	}

	newTracks := []string{"p", "q", "p", "r"} // duplicate "p" should collapse
	updated, err := store.UpdatePlaylist(ctx, pl.ID, model.PlaylistUpdate{Tracks: &newTracks})
	if err != nil {
		t.Fatalf("UpdatePlaylist: %v", err)
	}
	want := []string{"p", "q", "r"}
	if len(updated.Tracks) != len(want) {
		t.Fatalf("Tracks = %v, want %v", updated.Tracks, want)
	}
	for i := range want {
		if updated.Tracks[i] != want[i] {
			t.Fatalf("Tracks = %v, want %v", updated.Tracks, want)
		}
	}
}

func TestDeletePlaylistNotFound(t *testing.T) {
	store := openTestStore(t)
	if err := store.DeletePlaylist(context.Background(), "nonexistent"); domainerr.StatusCode(err) != 404 {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
