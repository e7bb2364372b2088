package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phreer/music-station/internal/domainerr"
)

// stream serves GET /stream/:id with full HTTP range support, reading the
// track through objstore.Store. A malformed Range: header falls back to a
// full 200 response rather than 416.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	track, err := s.Library.GetTrack(id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	fileSize := track.FileSize
	rangeHeader := r.Header.Get("Range")

	var offset, length int64
	partial := false
	if rangeHeader != "" {
		start, end, perr := parseRange(rangeHeader, fileSize)
		if perr == nil {
			offset, length, partial = start, end-start+1, true
		}
	}
	if !partial {
		offset, length = 0, fileSize
	}

	rc, err := s.Objects.GetRange(r.Context(), track.Path, offset, length)
	if err != nil {
		writeDomainErr(w, domainerr.Wrap(domainerr.Storage, "open track for streaming", err))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", mimeForFormat(track.Format))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filenameFor(track.Path)))

	if partial {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", offset, offset+length-1, fileSize))
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
		w.WriteHeader(http.StatusOK)
	}

	buf := make([]byte, 64*1024)
	_, _ = io.CopyBuffer(w, rc, buf)
}

// parseRange parses a "bytes=start-end | bytes=start- | bytes=-suffix"
// Range header. end is inclusive. Any malformed or out-of-bounds spec
// returns an error, which the caller treats as "serve the full body".
func parseRange(rangeHeader string, size int64) (start, end int64, err error) {
	if !strings.HasPrefix(rangeHeader, "bytes=") {
		return 0, 0, fmt.Errorf("unsupported range unit")
	}
	spec := strings.TrimPrefix(rangeHeader, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range")
	}

	if parts[0] == "" {
		n, e := strconv.ParseInt(parts[1], 10, 64)
		if e != nil || n <= 0 {
			return 0, 0, fmt.Errorf("invalid suffix range")
		}
		start = size - n
		if start < 0 {
			start = 0
		}
		end = size - 1
	} else {
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		if parts[1] == "" {
			end = size - 1
		} else {
			end, err = strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, 0, err
			}
		}
	}

	if start < 0 || end >= size || start > end {
		return 0, 0, fmt.Errorf("range out of bounds")
	}
	return start, end, nil
}

func mimeForFormat(format string) string {
	switch format {
	case "flac":
		return "audio/flac"
	case "mp3":
		return "audio/mpeg"
	case "ogg":
		return "audio/ogg"
	case "m4a":
		return "audio/mp4"
	}
	return "application/octet-stream"
}

func filenameFor(path string) string {
	idx := strings.LastIndexAny(path, "/\\")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
