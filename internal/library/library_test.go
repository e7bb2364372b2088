package library

import (
	"testing"

	"github.com/phreer/music-station/internal/model"
)

func TestTrackIDStableAcrossMountPoint(t *testing.T) {
	id1, err := TrackID("/music", "/music/Artist/Album/01 Song.flac")
	if err != nil {
		t.Fatalf("TrackID: %v", err)
	}
	id2, err := TrackID("/mnt/data/music", "/mnt/data/music/Artist/Album/01 Song.flac")
	if err != nil {
		t.Fatalf("TrackID: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ across mount points: %q vs %q", id1, id2)
	}
	if len(id1) != 32 {
		t.Errorf("expected a 32-char hex md5, got %q (len %d)", id1, len(id1))
	}
}

func TestTrackIDDiffersByPath(t *testing.T) {
	id1, _ := TrackID("/music", "/music/a.flac")
	id2, _ := TrackID("/music", "/music/b.flac")
	if id1 == id2 {
		t.Error("distinct paths produced the same id")
	}
}

func newTestLibrary(tracks ...*model.Track) *Library {
	l := New("/music")
	byID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		byID[t.ID] = i
	}
	l.tracks = tracks
	l.byID = byID
	return l
}

func TestGetAlbumsGroupsAndSortsByName(t *testing.T) {
	l := newTestLibrary(
		&model.Track{ID: "1", Title: "T1", Artist: "Artist A", Album: "Zebra", DurationSecs: 100},
		&model.Track{ID: "2", Title: "T2", Artist: "Artist A", Album: "Apple", DurationSecs: 200},
		&model.Track{ID: "3", Title: "T3", Artist: "Artist B", DurationSecs: 50}, // no album tag
	)

	albums := l.GetAlbums()
	if len(albums) != 3 {
		t.Fatalf("len(albums) = %d, want 3", len(albums))
	}
	names := []string{albums[0].Name, albums[1].Name, albums[2].Name}
	want := []string{"Apple", "Unknown Album", "Zebra"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("albums = %v, want %v", names, want)
		}
	}
}

func TestGetArtistsGroupsAlbumsPerArtist(t *testing.T) {
	l := newTestLibrary(
		&model.Track{ID: "1", Artist: "Artist A", Album: "Album One"},
		&model.Track{ID: "2", Artist: "Artist A", Album: "Album Two"},
		&model.Track{ID: "3", Artist: "Artist B", Album: "Album One"},
	)

	artists := l.GetArtists()
	if len(artists) != 2 {
		t.Fatalf("len(artists) = %d, want 2", len(artists))
	}
	if artists[0].Name != "Artist A" || len(artists[0].Albums) != 2 {
		t.Errorf("Artist A = %+v", artists[0])
	}
	if artists[1].Name != "Artist B" || len(artists[1].Albums) != 1 {
		t.Errorf("Artist B = %+v", artists[1])
	}
}

func TestGetTrackNotFound(t *testing.T) {
	l := newTestLibrary()
	if _, err := l.GetTrack("nonexistent"); err == nil {
		t.Fatal("expected an error for a missing track id")
	}
}

func TestUpsertAndRemoveTrack(t *testing.T) {
	l := newTestLibrary(&model.Track{ID: "1", Title: "Original"})

	l.UpsertTrack(&model.Track{ID: "1", Title: "Updated"})
	got, err := l.GetTrack("1")
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("Title = %q, want Updated", got.Title)
	}

	l.UpsertTrack(&model.Track{ID: "2", Title: "New"})
	if _, err := l.GetTrack("2"); err != nil {
		t.Fatalf("GetTrack after insert: %v", err)
	}

	l.RemoveTrack("1")
	if _, err := l.GetTrack("1"); err == nil {
		t.Fatal("expected track 1 to be removed")
	}
	if _, err := l.GetTrack("2"); err != nil {
		t.Fatalf("track 2 should remain reachable after removing track 1: %v", err)
	}
}
