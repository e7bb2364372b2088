package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch registers a recursive fsnotify watcher on the library root and
// applies debounced partial rescans as files change, entering the same
// mutation primitives (UpsertTrack/RemoveTrack) a full Scan would. This is
// the same index, just a different trigger — it never bypasses the lock
// discipline. Disabled by default; see MUSICSTATION_WATCH_ENABLED in
// internal/config. Blocks until stop is closed.
func (l *Library) Watch(stop <-chan struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("watch: failed to register directory", "path", path, "err", addErr)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	debounced := make(map[string]*time.Timer)
	debounce := func(path string, fn func()) {
		if t, ok := debounced[path]; ok {
			t.Stop()
		}
		debounced[path] = time.AfterFunc(300*time.Millisecond, fn)
	}

	slog.Info("watch: started", "root", l.root)
	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			l.handleWatchEvent(w, event, debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch: error", "err", err)
		}
	}
}

func (l *Library) handleWatchEvent(w *fsnotify.Watcher, event fsnotify.Event, debounce func(string, func())) {
	ext := strings.ToLower(filepath.Ext(event.Name))
	if !supportedExtensions[ext] {
		return
	}

	switch {
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		debounce(event.Name, func() {
			track, err := l.ParseTrack(event.Name)
			if err != nil {
				slog.Warn("watch: failed to parse changed file", "path", event.Name, "err", err)
				return
			}
			l.UpsertTrack(track)
			slog.Info("watch: upserted track", "path", event.Name)
		})
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		id, err := TrackID(l.root, event.Name)
		if err != nil {
			return
		}
		l.RemoveTrack(id)
		slog.Info("watch: removed track", "path", event.Name)
	}
}
