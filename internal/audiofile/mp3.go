package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/phreer/music-station/internal/model"
)

// Mp3Handler implements Handler for MP3 files via ID3v2.3 frames.
type Mp3Handler struct{}

func (Mp3Handler) FormatName() string { return "mp3" }

func (Mp3Handler) ParseMetadata(path string) (*model.AudioMetadata, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()

	out := &model.AudioMetadata{
		Title:       tag.Title(),
		Artist:      tag.Artist(),
		Album:       tag.Album(),
		AlbumArtist: tag.GetTextFrame(tag.CommonID("Band/Orchestra/Accompaniment")).Text,
		Genre:       tag.Genre(),
		Year:        tag.Year(),
		Composer:    tag.GetTextFrame(tag.CommonID("Composer(s)")).Text,
		Comment:     firstComment(tag),
	}
	if frame := tag.GetTextFrame(tag.CommonID("Track number/Position in set")); frame.Text != "" {
		out.TrackNumber = frame.Text
	}
	if frame := tag.GetTextFrame(tag.CommonID("Part of a set")); frame.Text != "" {
		out.DiscNumber = frame.Text
	}
	out.CustomFields = collectCustomFrames(tag)
	if secs, ok := mp3Duration(path); ok {
		out.DurationSecs = secs
	}
	return out, nil
}

// canonicalFrameIDs are the ID3v2 frames already mapped onto named
// AudioMetadata fields; everything else lands in CustomFields.
var canonicalFrameIDs = map[string]bool{
	"TIT2": true, "TPE1": true, "TALB": true, "TPE2": true, "TCON": true,
	"TYER": true, "TDRC": true, "TRCK": true, "TPOS": true, "TCOM": true,
	"COMM": true, "APIC": true,
}

func collectCustomFrames(tag *id3v2.Tag) map[string]string {
	var custom map[string]string
	for id, frames := range tag.AllFrames() {
		if canonicalFrameIDs[id] || len(frames) == 0 {
			continue
		}
		tf, ok := frames[0].(id3v2.TextFrame)
		if !ok || tf.Text == "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]string)
		}
		custom[strings.ToUpper(id)] = tf.Text
	}
	return custom
}

// mp3Duration scans MPEG audio frame headers to accumulate total sample
// count and sample rate, since bogem/id3v2 (used for the rest of the MP3
// tag mapping) does not expose duration.
func mp3Duration(path string) (uint64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return 0, false
	}

	offset := skipID3v2Header(data)

	var totalSamples uint64
	var sampleRate int
	for offset+4 <= len(data) {
		header := binary.BigEndian.Uint32(data[offset : offset+4])
		frame, ok := parseMpegFrameHeader(header)
		if !ok {
			offset++
			continue
		}
		if sampleRate == 0 {
			sampleRate = frame.sampleRate
		}
		totalSamples += uint64(frame.samplesPerFrame)
		if frame.frameLength <= 0 {
			offset++
			continue
		}
		offset += frame.frameLength
	}
	if sampleRate == 0 || totalSamples == 0 {
		return 0, false
	}
	return totalSamples / uint64(sampleRate), true
}

// skipID3v2Header returns the byte offset past a leading ID3v2 tag, if any,
// decoding its synchsafe 4-byte size field.
func skipID3v2Header(data []byte) int {
	if len(data) < 10 || string(data[:3]) != "ID3" {
		return 0
	}
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	return 10 + size
}

type mpegFrame struct {
	sampleRate      int
	samplesPerFrame int
	frameLength     int
}

var mpegBitrateTableV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var mpegBitrateTableV2L3 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

var mpegSampleRateTable = [3][3]int{
	{44100, 48000, 32000}, // MPEG1
	{22050, 24000, 16000}, // MPEG2
	{11025, 12000, 8000},  // MPEG2.5
}

// parseMpegFrameHeader decodes the 4-byte MPEG audio frame header (sync
// word, version, layer, bitrate, sample rate, padding). Only Layer III is
// handled since that's the only layer an .mp3 file carries.
func parseMpegFrameHeader(header uint32) (mpegFrame, bool) {
	if header&0xFFE00000 != 0xFFE00000 {
		return mpegFrame{}, false
	}
	versionBits := (header >> 19) & 0x3
	layerBits := (header >> 17) & 0x3
	bitrateIdx := (header >> 12) & 0xF
	sampleRateIdx := (header >> 10) & 0x3
	padding := (header >> 9) & 0x1

	if versionBits == 1 || layerBits != 1 || bitrateIdx == 0 || bitrateIdx == 15 || sampleRateIdx == 3 {
		return mpegFrame{}, false
	}

	var versionRow int
	var samplesPerFrame int
	var bitrateTable [16]int
	switch versionBits {
	case 3: // MPEG1
		versionRow = 0
		samplesPerFrame = 1152
		bitrateTable = mpegBitrateTableV1L3
	case 2: // MPEG2
		versionRow = 1
		samplesPerFrame = 576
		bitrateTable = mpegBitrateTableV2L3
	default: // MPEG2.5
		versionRow = 2
		samplesPerFrame = 576
		bitrateTable = mpegBitrateTableV2L3
	}

	sampleRate := mpegSampleRateTable[versionRow][sampleRateIdx]
	bitrateKbps := bitrateTable[bitrateIdx]
	if sampleRate == 0 || bitrateKbps == 0 {
		return mpegFrame{}, false
	}

	frameLength := 144*bitrateKbps*1000/sampleRate + int(padding)
	return mpegFrame{sampleRate: sampleRate, samplesPerFrame: samplesPerFrame, frameLength: frameLength}, true
}

func firstComment(tag *id3v2.Tag) string {
	comments := tag.GetFrames(tag.CommonID("Comments"))
	for _, f := range comments {
		if c, ok := f.(id3v2.CommentFrame); ok {
			return c.Text
		}
	}
	return ""
}

func (Mp3Handler) WriteMetadata(path string, update *model.MetadataUpdate) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat mp3: %w", err)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return fmt.Errorf("file is read-only: %s", path)
	}

	// Open handles a file with no tag by starting an empty one in place.
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()
	tag.SetVersion(3)

	if update.Title != nil {
		tag.SetTitle(*update.Title)
	}
	if update.Artist != nil {
		tag.SetArtist(*update.Artist)
	}
	if update.Album != nil {
		tag.SetAlbum(*update.Album)
	}
	if update.AlbumArtist != nil {
		tag.AddTextFrame(tag.CommonID("Band/Orchestra/Accompaniment"), tag.DefaultEncoding(), *update.AlbumArtist)
	}
	if update.Genre != nil {
		tag.SetGenre(*update.Genre)
	}
	if update.Year != nil {
		if _, err := strconv.Atoi(*update.Year); err == nil {
			tag.SetYear(*update.Year)
		} else {
			slog.Warn("invalid year format", "value", *update.Year)
		}
	}
	if update.TrackNumber != nil {
		if _, err := strconv.Atoi(*update.TrackNumber); err == nil {
			tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), *update.TrackNumber)
		} else {
			slog.Warn("invalid track number format", "value", *update.TrackNumber)
		}
	}
	if update.DiscNumber != nil {
		if _, err := strconv.Atoi(*update.DiscNumber); err == nil {
			tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), *update.DiscNumber)
		} else {
			slog.Warn("invalid disc number format", "value", *update.DiscNumber)
		}
	}
	if update.Composer != nil {
		tag.AddTextFrame(tag.CommonID("Composer(s)"), tag.DefaultEncoding(), *update.Composer)
	}
	if update.Comment != nil {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    tag.DefaultEncoding(),
			Language:    "eng",
			Description: "",
			Text:        *update.Comment,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save mp3 tags: %w", err)
	}
	return nil
}

func (Mp3Handler) HasCoverArt(path string) (bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return false, fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()
	return len(tag.GetFrames(tag.CommonID("Attached picture"))) > 0, nil
}

func (Mp3Handler) GetCoverArt(path string) ([]byte, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()

	frames := tag.GetFrames(tag.CommonID("Attached picture"))
	for _, f := range frames {
		if pic, ok := f.(id3v2.PictureFrame); ok {
			return pic.Picture, nil
		}
	}
	return nil, nil
}

func (Mp3Handler) SetCoverArt(path string, data []byte, mimeType string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()
	tag.SetVersion(3)

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    tag.DefaultEncoding(),
		MimeType:    mimeType,
		PictureType: id3v2.PTFrontCover,
		Description: "",
		Picture:     data,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save mp3 cover art: %w", err)
	}
	return nil
}

func (Mp3Handler) RemoveCoverArt(path string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open mp3 tags: %w", err)
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	if err := tag.Save(); err != nil {
		return fmt.Errorf("save mp3 tags: %w", err)
	}
	return nil
}
