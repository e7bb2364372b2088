package audiofile

import (
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"github.com/phreer/music-station/internal/model"
)

// OggHandler implements Handler for OGG Vorbis files. Tag reading works via
// the Vorbis comment header, but this library cannot rewrite an OGG
// bitstream in place, so every mutating operation is rejected rather than
// silently doing nothing.
type OggHandler struct{}

func (OggHandler) FormatName() string { return "ogg" }

func (OggHandler) ParseMetadata(path string) (*model.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ogg: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("parse ogg tags: %w", err)
	}

	out := &model.AudioMetadata{
		Title:       m.Title(),
		Artist:      m.Artist(),
		Album:       m.Album(),
		AlbumArtist: m.AlbumArtist(),
		Genre:       m.Genre(),
		Composer:    m.Composer(),
		Comment:     m.Comment(),
	}
	if y := m.Year(); y != 0 {
		out.Year = fmt.Sprintf("%d", y)
	}
	if track, _ := m.Track(); track != 0 {
		out.TrackNumber = fmt.Sprintf("%d", track)
	}
	if disc, _ := m.Disc(); disc != 0 {
		out.DiscNumber = fmt.Sprintf("%d", disc)
	}
	out.HasCover = m.Picture() != nil
	return out, nil
}

func (OggHandler) WriteMetadata(path string, update *model.MetadataUpdate) error {
	return fmt.Errorf("ogg metadata writing is not supported: %s", path)
}

func (h OggHandler) HasCoverArt(path string) (bool, error) {
	m, err := h.ParseMetadata(path)
	if err != nil {
		return false, err
	}
	return m.HasCover, nil
}

func (OggHandler) GetCoverArt(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ogg: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("parse ogg tags: %w", err)
	}
	if pic := m.Picture(); pic != nil {
		return pic.Data, nil
	}
	return nil, nil
}

func (OggHandler) SetCoverArt(path string, data []byte, mimeType string) error {
	return fmt.Errorf("ogg cover art writing is not supported: %s", path)
}

func (OggHandler) RemoveCoverArt(path string) error {
	return fmt.Errorf("ogg cover art removal is not supported: %s", path)
}
