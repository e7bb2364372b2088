package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phreer/music-station/internal/model"
)

func (s *Server) listPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.PlaylistDB.ListPlaylists(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	var create model.PlaylistCreate
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	playlist, err := s.PlaylistDB.CreatePlaylist(r.Context(), create)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) getPlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	playlist, err := s.PlaylistDB.GetPlaylist(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var update model.PlaylistUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	playlist, err := s.PlaylistDB.UpdatePlaylist(r.Context(), id, update)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.PlaylistDB.DeletePlaylist(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trackID := chi.URLParam(r, "track_id")
	if _, err := s.Library.GetTrack(trackID); err != nil {
		writeDomainErr(w, err)
		return
	}
	playlist, err := s.PlaylistDB.AddTrackToPlaylist(r.Context(), id, trackID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) removePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trackID := chi.URLParam(r, "track_id")
	playlist, err := s.PlaylistDB.RemoveTrackFromPlaylist(r.Context(), id, trackID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
