package audiofile

import (
	"encoding/binary"
	"fmt"
	"strings"

	flacpkg "github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/phreer/music-station/internal/model"
)

// FlacHandler implements Handler for FLAC files via Vorbis-comment and
// METADATA_BLOCK_PICTURE blocks.
type FlacHandler struct{}

func (FlacHandler) FormatName() string { return "flac" }

func (FlacHandler) ParseMetadata(path string) (*model.AudioMetadata, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac: %w", err)
	}

	out := &model.AudioMetadata{}
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			comment, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			for _, kv := range comment.Comments {
				idx := strings.IndexByte(kv, '=')
				if idx < 0 {
					continue
				}
				applyVorbisKey(out, kv[:idx], kv[idx+1:])
			}
		case flac.StreamInfo:
			if secs, ok := streamInfoDuration(block.Data); ok {
				out.DurationSecs = secs
			}
		}
	}
	return out, nil
}

// streamInfoDuration decodes a FLAC STREAMINFO block's sample rate and
// total-sample-count fields directly, per the bit layout in the FLAC
// format spec (20-bit rate, 3-bit channels-1, 5-bit bps-1, 36-bit samples
// packed across bytes 10..17).
func streamInfoDuration(data []byte) (uint64, bool) {
	if len(data) < 18 {
		return 0, false
	}
	v := binary.BigEndian.Uint64(data[10:18])
	sampleRate := (v >> 44) & 0xFFFFF
	totalSamples := v & 0xFFFFFFFFF
	if sampleRate == 0 {
		return 0, false
	}
	return totalSamples / sampleRate, true
}

func (FlacHandler) WriteMetadata(path string, update *model.MetadataUpdate) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	var comment *flacvorbis.MetaDataBlockVorbisComment
	var commentIdx = -1
	for i, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			commentIdx = i
			comment, err = flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				return fmt.Errorf("parse vorbis comment: %w", err)
			}
			break
		}
	}
	if comment == nil {
		comment = flacvorbis.New()
	}

	set := func(key string, v *string) {
		if v == nil {
			return
		}
		comment.Comments = removeVorbisKey(comment.Comments, key)
		_ = comment.Add(key, *v)
	}
	set("TITLE", update.Title)
	set("ARTIST", update.Artist)
	set("ALBUM", update.Album)
	set("ALBUMARTIST", update.AlbumArtist)
	set("GENRE", update.Genre)
	set("DATE", update.Year)
	set("TRACKNUMBER", update.TrackNumber)
	set("DISCNUMBER", update.DiscNumber)
	set("COMPOSER", update.Composer)
	set("COMMENT", update.Comment)

	for k, v := range update.CustomFields {
		comment.Comments = removeVorbisKey(comment.Comments, k)
		_ = comment.Add(k, v)
	}

	newBlock := comment.Marshal()
	if commentIdx >= 0 {
		f.Meta[commentIdx] = &newBlock
	} else {
		f.Meta = append(f.Meta, &newBlock)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func removeVorbisKey(comments []string, key string) []string {
	prefix := strings.ToUpper(key) + "="
	out := comments[:0]
	for _, c := range comments {
		if strings.HasPrefix(strings.ToUpper(c), prefix) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (h FlacHandler) HasCoverArt(path string) (bool, error) {
	data, err := h.GetCoverArt(path)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func (FlacHandler) GetCoverArt(path string) ([]byte, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac: %w", err)
	}
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			continue
		}
		pic, err := flacpkg.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		return pic.ImageData, nil
	}
	return nil, nil
}

func (FlacHandler) SetCoverArt(path string, data []byte, mimeType string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type == flac.Picture {
			continue
		}
		kept = append(kept, block)
	}
	f.Meta = kept

	pic, err := flacpkg.NewFromImageData(flacpkg.PictureTypeFrontCover, "", data, mimeType)
	if err != nil {
		return fmt.Errorf("build picture block: %w", err)
	}
	picBlock := pic.Marshal()
	f.Meta = append(f.Meta, &picBlock)

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}

func (FlacHandler) RemoveCoverArt(path string) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}
	kept := f.Meta[:0]
	for _, block := range f.Meta {
		if block.Type != flac.Picture {
			kept = append(kept, block)
		}
	}
	f.Meta = kept
	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}
