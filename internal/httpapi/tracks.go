package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phreer/music-station/internal/model"
)

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Library.GetTracks())
}

func (s *Server) getTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if cached, ok := s.Cache.GetTrack(r.Context(), id); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	track, err := s.Library.GetTrack(id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.SetTrack(r.Context(), track)
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) updateTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update model.MetadataUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	track, err := s.Library.UpdateTrackMetadata(id, &update)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) playTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.Library.GetTrack(id); err != nil {
		writeDomainErr(w, err)
		return
	}

	count, err := s.StatsDB.IncrementPlayCount(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if err := s.Library.UpdateTrackPlayCount(id, count); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, count)
}

// enrichTrack is the optional-extra POST /tracks/:id/enrich endpoint: fills
// only the genre/year fields a track doesn't already have, from
// MusicBrainz, through the ordinary metadata mutation protocol — it never
// overwrites a user-edited tag.
func (s *Server) enrichTrack(w http.ResponseWriter, r *http.Request) {
	if s.MusicBrainz == nil {
		writeErr(w, http.StatusNotImplemented, "musicbrainz enrichment is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	track, err := s.Library.GetTrack(id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if track.Genre != "" && track.Year != "" {
		writeJSON(w, http.StatusOK, track)
		return
	}

	enrichment, err := s.MusicBrainz.EnrichTrack(r.Context(), track.Title, track.Artist)
	if err != nil {
		writeErr(w, http.StatusBadGateway, "musicbrainz unreachable: "+err.Error())
		return
	}
	if enrichment == nil {
		writeJSON(w, http.StatusOK, track)
		return
	}

	update := &model.MetadataUpdate{}
	if track.Genre == "" && enrichment.Genre != "" {
		update.Genre = &enrichment.Genre
	}
	if track.Year == "" && enrichment.Year != "" {
		update.Year = &enrichment.Year
	}
	if update.Genre == nil && update.Year == nil {
		writeJSON(w, http.StatusOK, track)
		return
	}

	updated, err := s.Library.UpdateTrackMetadata(id, update)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, updated)
}
