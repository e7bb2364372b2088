// Package library owns the authoritative in-memory track index: a
// recursive directory scan, reader-writer-locked access, derived
// album/artist/stats views, and the metadata/cover mutation protocol that
// keeps the on-disk file and the index entry consistent with each other.
package library

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/phreer/music-station/internal/audiofile"
	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/model"
)

// supportedExtensions are the four container formats the library indexes.
var supportedExtensions = map[string]bool{
	".flac": true, ".mp3": true, ".ogg": true, ".m4a": true,
}

// Library owns the track index for one library root.
type Library struct {
	root string

	mu     sync.RWMutex
	tracks []*model.Track
	byID   map[string]int // track id -> index into tracks
}

// New returns an empty Library rooted at root. Call Scan to populate it.
func New(root string) *Library {
	return &Library{
		root: root,
		byID: make(map[string]int),
	}
}

// Root returns the library's configured directory.
func (l *Library) Root() string { return l.root }

// TrackID derives the stable, mount-independent track id: the hex MD5 of
// the path relative to the library root. Moving the library to a different
// absolute mount point leaves every id unchanged.
func TrackID(root, absPath string) (string, error) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	sum := md5.Sum([]byte(rel))
	return hex.EncodeToString(sum[:]), nil
}

// Scan recursively walks the library root, parsing every regular file
// whose extension is a supported audio container, and atomically replaces
// the index with the new inventory once the walk completes. hasLyrics
// seeds Track.HasLyrics from the lyrics DB (never written back to the
// file). Individual file parse failures are logged and skipped — scan
// never fails because of one bad file.
func (l *Library) Scan(ctx context.Context, hasLyrics map[string]bool) error {
	var found []*model.Track

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("scan: walk error", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !supportedExtensions[ext] {
			return nil
		}

		track, err := l.parseTrack(path)
		if err != nil {
			slog.Warn("scan: skipping unparsable file", "path", path, "err", err)
			return nil
		}
		if hasLyrics != nil {
			track.HasLyrics = hasLyrics[track.ID]
		}
		found = append(found, track)
		return nil
	})
	if err != nil {
		return domainerr.Wrap(domainerr.Storage, "scan library root", err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })

	byID := make(map[string]int, len(found))
	for i, t := range found {
		byID[t.ID] = i
	}

	l.mu.Lock()
	l.tracks = found
	l.byID = byID
	l.mu.Unlock()

	slog.Info("scan complete", "tracks", len(found), "root", l.root)
	return nil
}

func (l *Library) parseTrack(path string) (*model.Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	handler := audiofile.ForExtension(ext)
	if handler == nil {
		return nil, domainerr.New(domainerr.Unsupported, "unrecognized extension "+ext)
	}

	meta, err := handler.ParseMetadata(path)
	if err != nil {
		return nil, err
	}

	id, err := TrackID(l.root, path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	hasCover, err := handler.HasCoverArt(path)
	if err != nil {
		slog.Warn("parseTrack: cover probe failed", "path", path, "err", err)
	}

	return &model.Track{
		ID:           id,
		Path:         path,
		Title:        meta.Title,
		Artist:       meta.Artist,
		Album:        meta.Album,
		AlbumArtist:  meta.AlbumArtist,
		Genre:        meta.Genre,
		Year:         meta.Year,
		TrackNumber:  meta.TrackNumber,
		DiscNumber:   meta.DiscNumber,
		Composer:     meta.Composer,
		Comment:      meta.Comment,
		DurationSecs: meta.DurationSecs,
		FileSize:     info.Size(),
		Format:       strings.TrimPrefix(ext, "."),
		HasCover:     hasCover,
		CustomFields: meta.CustomFields,
	}, nil
}

// GetTracks returns a cloned snapshot of every indexed track.
func (l *Library) GetTracks() []*model.Track {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*model.Track, len(l.tracks))
	for i, t := range l.tracks {
		out[i] = t.Clone()
	}
	return out
}

// GetTrack returns a cloned snapshot of one track, or NotFound.
func (l *Library) GetTrack(id string) (*model.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byID[id]
	if !ok {
		return nil, domainerr.New(domainerr.NotFound, "track "+id+" not found")
	}
	return l.tracks[idx].Clone(), nil
}

// GetAlbums computes the Album grouping view: unique non-null album
// values, ascending by name, "Unknown Album" catching tracks with no
// album tag.
func (l *Library) GetAlbums() []*model.Album {
	l.mu.RLock()
	tracks := make([]*model.Track, len(l.tracks))
	copy(tracks, l.tracks)
	l.mu.RUnlock()

	type acc struct {
		album  *model.Album
		artist string
	}
	byName := make(map[string]*acc)
	var order []string

	for _, t := range tracks {
		name := t.Album
		if name == "" {
			name = "Unknown Album"
		}
		a, ok := byName[name]
		if !ok {
			a = &acc{album: &model.Album{Name: name}, artist: t.Artist}
			byName[name] = a
			order = append(order, name)
		}
		a.album.TrackCount++
		a.album.TotalDuration += t.DurationSecs
		a.album.TrackIDs = append(a.album.TrackIDs, t.ID)
		if a.album.Artist == "" {
			a.album.Artist = t.Artist
		}
	}

	sort.Strings(order)
	out := make([]*model.Album, len(order))
	for i, name := range order {
		out[i] = byName[name].album
	}
	return out
}

// GetAlbum returns the computed Album view for one exact album name.
func (l *Library) GetAlbum(name string) (*model.Album, error) {
	for _, a := range l.GetAlbums() {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, domainerr.New(domainerr.NotFound, "album "+name+" not found")
}

// GetArtists computes the Artist grouping view: unique artist values,
// ascending by name, each with the albums attributed to it.
func (l *Library) GetArtists() []*model.Artist {
	l.mu.RLock()
	tracks := make([]*model.Track, len(l.tracks))
	copy(tracks, l.tracks)
	l.mu.RUnlock()

	albumsByArtist := make(map[string]map[string]bool)
	var order []string
	for _, t := range tracks {
		artist := t.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		album := t.Album
		if album == "" {
			album = "Unknown Album"
		}
		set, ok := albumsByArtist[artist]
		if !ok {
			set = make(map[string]bool)
			albumsByArtist[artist] = set
			order = append(order, artist)
		}
		set[album] = true
	}

	sort.Strings(order)
	out := make([]*model.Artist, len(order))
	for i, name := range order {
		albums := make([]string, 0, len(albumsByArtist[name]))
		for a := range albumsByArtist[name] {
			albums = append(albums, a)
		}
		sort.Strings(albums)
		out[i] = &model.Artist{Name: name, Albums: albums}
	}
	return out
}

// GetArtist returns the computed Artist view for one exact artist name.
func (l *Library) GetArtist(name string) (*model.Artist, error) {
	for _, a := range l.GetArtists() {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, domainerr.New(domainerr.NotFound, "artist "+name+" not found")
}

// Stats is the library-wide aggregate served by GET /stats.
type Stats struct {
	TotalTracks  int    `json:"total_tracks"`
	TotalAlbums  int    `json:"total_albums"`
	TotalArtists int    `json:"total_artists"`
	TotalSize    int64  `json:"total_size_bytes"`
	TotalPlays   int64  `json:"total_plays"`
}

// GetStats computes the library-wide aggregate.
func (l *Library) GetStats(totalPlays int64) *Stats {
	l.mu.RLock()
	var size int64
	albums := make(map[string]bool)
	artists := make(map[string]bool)
	for _, t := range l.tracks {
		size += t.FileSize
		album := t.Album
		if album == "" {
			album = "Unknown Album"
		}
		artist := t.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}
		albums[album] = true
		artists[artist] = true
	}
	total := len(l.tracks)
	l.mu.RUnlock()

	return &Stats{
		TotalTracks:  total,
		TotalAlbums:  len(albums),
		TotalArtists: len(artists),
		TotalSize:    size,
		TotalPlays:   totalPlays,
	}
}

// replace swaps the track at id's index for updated, preserving the
// pre-image's HasLyrics (never stored in the file itself). Index mutation
// happens only here, under the write lock, per the mutation protocol.
func (l *Library) replace(id string, updated *model.Track) (*model.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.byID[id]
	if !ok {
		return nil, domainerr.New(domainerr.NotFound, "track "+id+" not found")
	}
	updated.HasLyrics = l.tracks[idx].HasLyrics
	updated.PlayCount = l.tracks[idx].PlayCount
	l.tracks[idx] = updated
	return updated.Clone(), nil
}

// snapshot copies the target track's path and format handler under a brief
// read lock, per step 1 of the mutation protocol.
func (l *Library) snapshot(id string) (path string, handler audiofile.Handler, err error) {
	l.mu.RLock()
	idx, ok := l.byID[id]
	if !ok {
		l.mu.RUnlock()
		return "", nil, domainerr.New(domainerr.NotFound, "track "+id+" not found")
	}
	path = l.tracks[idx].Path
	l.mu.RUnlock()

	ext := filepath.Ext(path)
	handler = audiofile.ForExtension(ext)
	if handler == nil {
		return "", nil, domainerr.New(domainerr.Unsupported, "unrecognized extension "+ext)
	}
	return path, handler, nil
}

// UpdateTrackMetadata applies update to the file on disk, re-parses it, and
// replaces the index entry. The write and re-parse happen outside any
// lock; only the final replace is under the write lock.
func (l *Library) UpdateTrackMetadata(id string, update *model.MetadataUpdate) (*model.Track, error) {
	path, handler, err := l.snapshot(id)
	if err != nil {
		return nil, err
	}
	if err := handler.WriteMetadata(path, update); err != nil {
		return nil, err
	}
	updated, err := l.parseTrack(path)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "re-parse after metadata write", err)
	}
	return l.replace(id, updated)
}

// SetCoverArt writes cover art to the file on disk, re-parses it, and
// replaces the index entry.
func (l *Library) SetCoverArt(id string, data []byte, mimeType string) (*model.Track, error) {
	path, handler, err := l.snapshot(id)
	if err != nil {
		return nil, err
	}
	if err := handler.SetCoverArt(path, data, mimeType); err != nil {
		return nil, err
	}
	updated, err := l.parseTrack(path)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "re-parse after cover write", err)
	}
	return l.replace(id, updated)
}

// RemoveCoverArt strips cover art from the file on disk, re-parses it, and
// replaces the index entry.
func (l *Library) RemoveCoverArt(id string) (*model.Track, error) {
	path, handler, err := l.snapshot(id)
	if err != nil {
		return nil, err
	}
	if err := handler.RemoveCoverArt(path); err != nil {
		return nil, err
	}
	updated, err := l.parseTrack(path)
	if err != nil {
		return nil, domainerr.Wrap(domainerr.Storage, "re-parse after cover removal", err)
	}
	return l.replace(id, updated)
}

// GetCoverArt returns the raw cover art bytes for a track, or NotFound if
// the track has none.
func (l *Library) GetCoverArt(id string) ([]byte, error) {
	path, handler, err := l.snapshot(id)
	if err != nil {
		return nil, err
	}
	has, err := handler.HasCoverArt(path)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, domainerr.New(domainerr.NotFound, "track "+id+" has no cover art")
	}
	return handler.GetCoverArt(path)
}

// UpdateTrackLyricsStatus flips the in-memory HasLyrics flag with no disk
// effect, called after a lyrics-DB write or delete.
func (l *Library) UpdateTrackLyricsStatus(id string, hasLyrics bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.byID[id]
	if !ok {
		return domainerr.New(domainerr.NotFound, "track "+id+" not found")
	}
	l.tracks[idx].HasLyrics = hasLyrics
	return nil
}

// UpdateTrackPlayCount reconciles the in-memory counter with the stats DB
// after a play-count increment.
func (l *Library) UpdateTrackPlayCount(id string, count int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.byID[id]
	if !ok {
		return domainerr.New(domainerr.NotFound, "track "+id+" not found")
	}
	l.tracks[idx].PlayCount = count
	return nil
}

// RemoveTrack drops a track from the index without touching disk, used by
// the incremental-rescan watcher when a file vanishes.
func (l *Library) RemoveTrack(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.byID[id]
	if !ok {
		return
	}
	l.tracks = append(l.tracks[:idx], l.tracks[idx+1:]...)
	delete(l.byID, id)
	for i := idx; i < len(l.tracks); i++ {
		l.byID[l.tracks[i].ID] = i
	}
}

// UpsertTrack inserts or replaces a single track by id, used by the
// incremental-rescan watcher after a create/write event.
func (l *Library) UpsertTrack(t *model.Track) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx, ok := l.byID[t.ID]; ok {
		t.HasLyrics = l.tracks[idx].HasLyrics
		t.PlayCount = l.tracks[idx].PlayCount
		l.tracks[idx] = t
		return
	}
	l.byID[t.ID] = len(l.tracks)
	l.tracks = append(l.tracks, t)
}

// ParseTrack exposes the scan-time parse+stat step so the watcher can
// build a fresh Track for one path outside of a full Scan.
func (l *Library) ParseTrack(path string) (*model.Track, error) {
	return l.parseTrack(path)
}
