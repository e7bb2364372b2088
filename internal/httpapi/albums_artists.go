package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listAlbums(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Library.GetAlbums())
}

func (s *Server) getAlbum(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	album, err := s.Library.GetAlbum(name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (s *Server) listArtists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Library.GetArtists())
}

func (s *Server) getArtist(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	artist, err := s.Library.GetArtist(name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// getStats serves the library-wide aggregate, pulling total play count from
// the stats side database rather than re-summing the in-memory index (each
// track's PlayCount mirror can lag a beat behind a concurrent /play call).
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	all, err := s.StatsDB.GetAllStats(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	var totalPlays int64
	for _, st := range all {
		totalPlays += st.PlayCount
	}
	writeJSON(w, http.StatusOK, s.Library.GetStats(totalPlays))
}
