// Package backup mirrors scanned library files to an S3-compatible bucket
// for off-box backup. This is never the serving path — GET /stream/:id
// always reads local disk — mirroring is fire-and-forget and only logged
// on failure.
package backup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phreer/music-station/internal/model"
	"github.com/phreer/music-station/internal/objstore"
)

// sizeChecker is implemented by object stores that can report whether a
// key already exists and how large it is, so Mirror can skip re-uploading
// a track whose remote copy is already current. objstore.LocalFS does not
// implement it; objstore.S3Store does.
type sizeChecker interface {
	RemoteSize(ctx context.Context, key string) (size int64, found bool, err error)
}

// Mirror uploads each track's audio file to an S3-compatible bucket, keyed
// by the track's path relative to the library root. Re-running MirrorAll
// after a rescan only re-uploads tracks whose size has changed or that
// were never mirrored.
type Mirror struct {
	store objstore.Store
	root  string
}

// New builds a Mirror against an already-initialized S3 store.
func New(store objstore.Store, libraryRoot string) *Mirror {
	return &Mirror{store: store, root: libraryRoot}
}

// MirrorAll enqueues every track for upload, logging (never failing the
// caller) on a per-file error. Intended to run on its own goroutine after
// a completed scan.
func (m *Mirror) MirrorAll(ctx context.Context, tracks []*model.Track) {
	for _, t := range tracks {
		if err := m.mirrorOne(ctx, t); err != nil {
			slog.Warn("backup: mirror failed", "track_id", t.ID, "path", t.Path, "err", err)
		}
	}
}

func (m *Mirror) mirrorOne(ctx context.Context, t *model.Track) error {
	rel, err := filepath.Rel(m.root, t.Path)
	if err != nil {
		return err
	}
	key := filepath.ToSlash(rel)

	if checker, ok := m.store.(sizeChecker); ok {
		if remoteSize, found, err := checker.RemoteSize(ctx, key); err == nil && found && remoteSize == t.FileSize {
			slog.Debug("backup: skipping already-mirrored track", "track_id", t.ID, "path", t.Path)
			return nil
		}
	}

	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	return m.store.Put(ctx, key, f, t.FileSize)
}
