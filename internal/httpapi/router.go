// Package httpapi is the stateless HTTP request dispatcher over the
// shared server state: the library, the three side databases, and the
// lyrics aggregator.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phreer/music-station/internal/cache"
	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/library"
	"github.com/phreer/music-station/internal/lyrics"
	"github.com/phreer/music-station/internal/musicbrainz"
	"github.com/phreer/music-station/internal/objstore"
	"github.com/phreer/music-station/internal/store/lyricsdb"
	"github.com/phreer/music-station/internal/store/playlistdb"
	"github.com/phreer/music-station/internal/store/statsdb"
)

// Server holds every piece of shared state a handler may need. It is
// immutable once constructed; the only mutable piece reachable from it is
// the Library's own internally-locked index.
type Server struct {
	Library     *library.Library
	LyricsDB    *lyricsdb.Store
	PlaylistDB  *playlistdb.Store
	StatsDB     *statsdb.Store
	Aggregator  *lyrics.Aggregator
	Objects     objstore.Store
	Cache       *cache.Cache // nil when the optional cache extra is disabled
	MusicBrainz *musicbrainz.Client // nil when enrichment is disabled
	StaticDir   string              // empty when there is no static client to serve
}

// NewRouter builds the full chi.Router for a Server.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Music Station API v0.1.0"))
	})
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	r.Get("/tracks", s.listTracks)
	r.Get("/tracks/{id}", s.getTrack)
	r.Put("/tracks/{id}", s.updateTrack)
	r.Post("/tracks/{id}/play", s.playTrack)
	r.Post("/tracks/{id}/enrich", s.enrichTrack)

	r.Get("/stream/{id}", s.stream)

	r.Get("/cover/{id}", s.getCover)
	r.Post("/cover/{id}", s.setCover)
	r.Delete("/cover/{id}", s.removeCover)

	r.Get("/lyrics/search", s.searchLyrics)
	r.Get("/lyrics/auto", s.autoFetchLyrics)
	r.Get("/lyrics/providers", s.lyricsProviders)
	r.Get("/lyrics/fetch/{provider}/{song_id}", s.fetchLyrics)
	r.Get("/lyrics/{id}", s.getLyric)
	r.Put("/lyrics/{id}", s.putLyric)
	r.Delete("/lyrics/{id}", s.deleteLyric)

	r.Get("/albums", s.listAlbums)
	r.Get("/albums/{name}", s.getAlbum)
	r.Get("/artists", s.listArtists)
	r.Get("/artists/{name}", s.getArtist)
	r.Get("/stats", s.getStats)

	r.Get("/playlists", s.listPlaylists)
	r.Post("/playlists", s.createPlaylist)
	r.Get("/playlists/{id}", s.getPlaylist)
	r.Put("/playlists/{id}", s.updatePlaylist)
	r.Delete("/playlists/{id}", s.deletePlaylist)
	r.Post("/playlists/{id}/tracks/{track_id}", s.addPlaylistTrack)
	r.Delete("/playlists/{id}/tracks/{track_id}", s.removePlaylistTrack)

	if s.StaticDir != "" {
		fileServer := http.StripPrefix("/web/", http.FileServer(http.Dir(s.StaticDir)))
		r.Handle("/web/*", fileServer)
	}

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz checks that every configured side DB is reachable; 503 if not.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.Cache != nil {
		if err := s.Cache.Ping(ctx); err != nil {
			http.Error(w, "cache: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func slogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Range, Accept-Ranges, Content-Length")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainErr maps a domain error to its status code once, at the
// boundary, logging the underlying cause for operators.
func writeDomainErr(w http.ResponseWriter, err error) {
	slog.Error("request failed", "err", err)
	writeErr(w, domainerr.StatusCode(err), err.Error())
}
