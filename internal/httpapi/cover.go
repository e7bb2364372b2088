package httpapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/phreer/music-station/internal/domainerr"
)

const maxCoverUploadBytes = 32 << 20 // 32MiB, generous for embedded artwork

func (s *Server) getCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := s.Library.GetCoverArt(id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// setCover handles POST /cover/:id: a multipart upload whose first field
// named "image" or "cover" becomes the new cover. The field's declared
// Content-Type becomes the stored MIME type, defaulting to image/jpeg when
// the client didn't set one.
func (s *Server) setCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxCoverUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := firstImageField(r)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeErr(w, http.StatusBadRequest, "empty cover image payload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	track, err := s.Library.SetCoverArt(id, data, mimeType)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, track)
}

func (s *Server) removeCover(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	track, err := s.Library.RemoveCoverArt(id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Cache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, track)
}

func firstImageField(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range []string{"image", "cover"} {
		if files := r.MultipartForm.File[name]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return nil, nil, err
			}
			return f, files[0], nil
		}
	}
	return nil, nil, domainerr.New(domainerr.BadRequest, "missing \"image\" or \"cover\" multipart field")
}
