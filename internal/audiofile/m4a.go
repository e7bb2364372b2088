package audiofile

import (
	"fmt"
	"os"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
	mp4 "github.com/abema/go-mp4"
	"github.com/dhowden/tag"

	"github.com/phreer/music-station/internal/model"
)

// m4aDuration reads the moov/mvhd box directly for the track duration,
// since dhowden/tag (used for the rest of the M4A atom mapping) does not
// expose it.
func m4aDuration(path string) (uint64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxWithPayload(f, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil || len(boxes) == 0 {
		return 0, false
	}
	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok || mvhd.Timescale == 0 {
		return 0, false
	}
	duration := mvhd.GetDuration()
	return duration / uint64(mvhd.Timescale), true
}

// M4aHandler implements Handler for M4A/AAC files via iTunes-style MP4
// atoms.
type M4aHandler struct{}

func (M4aHandler) FormatName() string { return "m4a" }

func (M4aHandler) ParseMetadata(path string) (*model.AudioMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open m4a: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("parse m4a tags: %w", err)
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
	out.CustomFields = collectCustomAtoms(m.Raw())
	if secs, ok := m4aDuration(path); ok {
		out.DurationSecs = secs
	}
	return out, nil
}

// canonicalAtoms are the iTunes atoms already mapped onto named
// AudioMetadata fields; remaining string-valued atoms become custom fields.
var canonicalAtoms = map[string]bool{
	"\xa9nam": true, "\xa9art": true, "\xa9alb": true, "aART": true,
	"\xa9gen": true, "\xa9day": true, "trkn": true, "disk": true,
	"\xa9wrt": true, "\xa9cmt": true, "covr": true,
}

func collectCustomAtoms(raw map[string]interface{}) map[string]string {
	var custom map[string]string
	for k, v := range raw {
		if canonicalAtoms[k] {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]string)
		}
		custom[strings.ToUpper(strings.TrimPrefix(k, "\xa9"))] = s
	}
	return custom
}

func (M4aHandler) WriteMetadata(path string, update *model.MetadataUpdate) error {
	mp4t, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open m4a for writing: %w", err)
	}
	defer mp4t.Close()

	tags := &mp4tag.MP4Tags{}
	if update.Title != nil {
		tags.Title = *update.Title
	}
	if update.Artist != nil {
		tags.Artist = *update.Artist
	}
	if update.Album != nil {
		tags.Album = *update.Album
	}
	if update.AlbumArtist != nil {
		tags.AlbumArtist = *update.AlbumArtist
	}
	if update.Genre != nil {
		tags.CustomGenre = *update.Genre
	}
	if update.Year != nil {
		tags.Year = int32(parseIntOrZero(*update.Year))
	}
	if update.TrackNumber != nil {
		tags.TrackNumber = int16(parseIntOrZero(*update.TrackNumber))
	}
	if update.DiscNumber != nil {
		tags.DiscNumber = int16(parseIntOrZero(*update.DiscNumber))
	}
	if update.Composer != nil {
		tags.Composer = *update.Composer
	}
	if update.Comment != nil {
		tags.Comment = *update.Comment
	}

	if err := mp4t.Write(tags, []string{}); err != nil {
		return fmt.Errorf("save m4a tags: %w", err)
	}
	return nil
}

func parseIntOrZero(s string) int {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0
	}
	return n
}

func (h M4aHandler) HasCoverArt(path string) (bool, error) {
	m, err := h.ParseMetadata(path)
	if err != nil {
		return false, err
	}
	return m.HasCover, nil
}

func (M4aHandler) GetCoverArt(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open m4a: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("parse m4a tags: %w", err)
	}
	if pic := m.Picture(); pic != nil {
		return pic.Data, nil
	}
	return nil, nil
}

func (M4aHandler) SetCoverArt(path string, data []byte, mimeType string) error {
	var format mp4tag.ImageType
	switch mimeType {
	case "image/jpeg":
		format = mp4tag.ImageTypeJPEG
	case "image/png":
		format = mp4tag.ImageTypePNG
	default:
		return fmt.Errorf("unsupported image format: %s", mimeType)
	}

	mp4t, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open m4a for writing: %w", err)
	}
	defer mp4t.Close()

	tags := &mp4tag.MP4Tags{
		Pictures: []*mp4tag.MP4Picture{{Data: data, Format: format}},
	}
	if err := mp4t.Write(tags, []string{}); err != nil {
		return fmt.Errorf("save m4a cover art: %w", err)
	}
	return nil
}

func (M4aHandler) RemoveCoverArt(path string) error {
	mp4t, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("open m4a for writing: %w", err)
	}
	defer mp4t.Close()

	if err := mp4t.Write(&mp4tag.MP4Tags{}, []string{"Pictures"}); err != nil {
		return fmt.Errorf("remove m4a cover art: %w", err)
	}
	return nil
}
