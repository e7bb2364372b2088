package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/phreer/music-station/internal/model"
)

func (s *Server) getLyric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lyric, err := s.LyricsDB.GetLyric(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lyric)
}

func (s *Server) putLyric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upload model.LyricUpload
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := s.Library.GetTrack(id); err != nil {
		writeDomainErr(w, err)
		return
	}

	lyric, err := s.LyricsDB.SaveLyric(r.Context(), id, upload)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if err := s.Library.UpdateTrackLyricsStatus(id, true); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lyric)
}

func (s *Server) deleteLyric(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.LyricsDB.DeleteLyric(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	_ = s.Library.UpdateTrackLyricsStatus(id, false)
	w.WriteHeader(http.StatusNoContent)
}

// searchLyrics handles GET /lyrics/search?q=&provider=&artist=. provider
// is optional; when absent, every configured provider is searched and the
// results merged, highest confidence first.
func (s *Server) searchLyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeErr(w, http.StatusBadRequest, "missing required query parameter \"q\"")
		return
	}
	query := model.LyricsQuery{Title: q}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		query.Artist = &artist
	}

	provider := r.URL.Query().Get("provider")
	if provider != "" {
		results, err := s.Aggregator.SearchFromProvider(r.Context(), provider, query)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
		return
	}

	var merged []model.LyricsSearchResult
	for _, outcome := range s.Aggregator.SearchAll(r.Context(), query) {
		if outcome.Err != nil {
			continue
		}
		merged = append(merged, outcome.Results...)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Confidence > merged[j].Confidence })
	writeJSON(w, http.StatusOK, merged)
}

// autoFetchLyrics handles GET /lyrics/auto?q=&artist=: providers are tried
// in registration order and the first confident hit wins, so the caller
// doesn't have to pick a provider or a result id.
func (s *Server) autoFetchLyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeErr(w, http.StatusBadRequest, "missing required query parameter \"q\"")
		return
	}
	query := model.LyricsQuery{Title: q}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		query.Artist = &artist
	}

	resp, err := s.Aggregator.FetchLyrics(r.Context(), query)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// lyricsProviders handles GET /lyrics/providers: each configured provider's
// capabilities plus a live health probe.
func (s *Server) lyricsProviders(w http.ResponseWriter, r *http.Request) {
	health := make(map[string]bool)
	for _, h := range s.Aggregator.HealthCheckAll(r.Context()) {
		health[h.Provider] = h.Healthy
	}

	type providerInfo struct {
		Name           string `json:"name"`
		SupportsSynced bool   `json:"supports_synced"`
		RequiresAuth   bool   `json:"requires_auth"`
		Healthy        bool   `json:"healthy"`
	}
	out := make([]providerInfo, 0, len(s.Aggregator.Providers()))
	for _, p := range s.Aggregator.Providers() {
		out = append(out, providerInfo{
			Name:           p.Name(),
			SupportsSynced: p.SupportsSynced(),
			RequiresAuth:   p.RequiresAuth(),
			Healthy:        health[p.Name()],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) fetchLyrics(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	songID := chi.URLParam(r, "song_id")

	resp, err := s.Aggregator.FetchFromProvider(r.Context(), provider, songID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
