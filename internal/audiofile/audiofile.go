// Package audiofile implements a polymorphic handler over the four audio
// container formats the library supports: parse/write tag metadata and
// read/set/remove embedded cover art, dispatched by file extension.
package audiofile

import (
	"strings"

	"github.com/phreer/music-station/internal/model"
)

// Handler is implemented once per container format.
type Handler interface {
	// FormatName is the lowercase format identifier stored on a Track.
	FormatName() string

	// ParseMetadata extracts tags and duration from the file at path.
	ParseMetadata(path string) (*model.AudioMetadata, error)

	// WriteMetadata applies update's non-nil fields to the file at path.
	WriteMetadata(path string, update *model.MetadataUpdate) error

	// HasCoverArt reports whether the file carries embedded artwork.
	HasCoverArt(path string) (bool, error)

	// GetCoverArt returns the embedded artwork, or nil if none.
	GetCoverArt(path string) ([]byte, error)

	// SetCoverArt replaces embedded artwork with data of the given MIME type.
	SetCoverArt(path string, data []byte, mimeType string) error

	// RemoveCoverArt strips embedded artwork.
	RemoveCoverArt(path string) error
}

// ForExtension returns the Handler for a file extension (with or without a
// leading dot), or nil if the extension is not recognized.
func ForExtension(extension string) Handler {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))
	switch ext {
	case "flac":
		return FlacHandler{}
	case "mp3":
		return Mp3Handler{}
	case "ogg":
		return OggHandler{}
	case "m4a":
		return M4aHandler{}
	default:
		return nil
	}
}

// standardVorbisKeys are the Vorbis-comment keys FLAC and OGG map onto
// well-known AudioMetadata fields; anything else becomes a custom field.
var standardVorbisKeys = map[string]bool{
	"TITLE": true, "ARTIST": true, "ALBUM": true, "ALBUMARTIST": true,
	"GENRE": true, "DATE": true, "YEAR": true, "TRACKNUMBER": true,
	"DISCNUMBER": true, "COMPOSER": true, "COMMENT": true, "DESCRIPTION": true,
}

func applyVorbisKey(m *model.AudioMetadata, key, value string) {
	key = strings.ToUpper(key)
	switch key {
	case "TITLE":
		m.Title = value
	case "ARTIST":
		m.Artist = value
	case "ALBUM":
		m.Album = value
	case "ALBUMARTIST":
		m.AlbumArtist = value
	case "GENRE":
		m.Genre = value
	case "DATE", "YEAR":
		m.Year = value
	case "TRACKNUMBER":
		m.TrackNumber = value
	case "DISCNUMBER":
		m.DiscNumber = value
	case "COMPOSER":
		m.Composer = value
	case "COMMENT", "DESCRIPTION":
		m.Comment = value
	default:
		if !standardVorbisKeys[key] {
			if m.CustomFields == nil {
				m.CustomFields = make(map[string]string)
			}
			m.CustomFields[key] = value
		}
	}
}
