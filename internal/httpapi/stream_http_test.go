package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/phreer/music-station/internal/library"
	"github.com/phreer/music-station/internal/model"
	"github.com/phreer/music-station/internal/objstore"
)

// newStreamServer builds a router over one synthetic on-disk track of the
// given size, returning the handler and the track id.
func newStreamServer(t *testing.T, size int) (http.Handler, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.flac")
	body := bytes.Repeat([]byte{0xAB}, size)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	lib := library.New(dir)
	lib.UpsertTrack(&model.Track{
		ID:       "stream-test-track",
		Path:     path,
		FileSize: int64(size),
		Format:   "flac",
	})

	srv := &Server{Library: lib, Objects: objstore.NewLocalFS()}
	return NewRouter(srv), "stream-test-track"
}

func TestStreamFullBody(t *testing.T) {
	handler, id := newStreamServer(t, 4096)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/flac" {
		t.Errorf("Content-Type = %q, want audio/flac", got)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want bytes", got)
	}
	if n := rec.Body.Len(); n != 4096 {
		t.Errorf("body length = %d, want 4096", n)
	}
}

func TestStreamMiddleRange(t *testing.T) {
	handler, id := newStreamServer(t, 1_000_000)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.Header.Set("Range", "bytes=100-199")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 100-199/1000000" {
		t.Errorf("Content-Range = %q, want bytes 100-199/1000000", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "100" {
		t.Errorf("Content-Length = %q, want 100", got)
	}
	body, _ := io.ReadAll(rec.Body)
	if len(body) != 100 {
		t.Errorf("body length = %d, want 100", len(body))
	}
}

func TestStreamSuffixRange(t *testing.T) {
	handler, id := newStreamServer(t, 1_000_000)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.Header.Set("Range", "bytes=-50")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 999950-999999/1000000" {
		t.Errorf("Content-Range = %q, want bytes 999950-999999/1000000", got)
	}
	if n := rec.Body.Len(); n != 50 {
		t.Errorf("body length = %d, want 50", n)
	}
}

func TestStreamMalformedRangeFallsBackToFull(t *testing.T) {
	handler, id := newStreamServer(t, 2048)

	req := httptest.NewRequest(http.MethodGet, "/stream/"+id, nil)
	req.Header.Set("Range", "bytes=abc-def")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 fallback", rec.Code)
	}
	if n := rec.Body.Len(); n != 2048 {
		t.Errorf("body length = %d, want full 2048", n)
	}
}

func TestStreamUnknownTrack(t *testing.T) {
	handler, _ := newStreamServer(t, 16)

	req := httptest.NewRequest(http.MethodGet, "/stream/no-such-track", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
