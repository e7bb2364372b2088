// Package model holds the canonical value types shared across the music
// library, the side databases, and the HTTP API.
package model

import "time"

// Track is one audio file on disk.
type Track struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        string `json:"year,omitempty"`
	TrackNumber string `json:"track_number,omitempty"`
	DiscNumber  string `json:"disc_number,omitempty"`
	Composer    string `json:"composer,omitempty"`
	Comment     string `json:"comment,omitempty"`

	DurationSecs uint64 `json:"duration_secs,omitempty"`
	FileSize     int64  `json:"file_size"`
	Format       string `json:"format"`

	HasCover  bool `json:"has_cover"`
	HasLyrics bool `json:"has_lyrics"`

	PlayCount int64 `json:"play_count"`

	CustomFields map[string]string `json:"custom_fields,omitempty"`

	// Populated only when the optional MusicBrainz enrichment extra is
	// enabled and a confident match was found.
	MBRecordingID *string `json:"mb_recording_id,omitempty"`
	// Populated only when the optional S3-mirror extra is enabled.
	MirroredAt *time.Time `json:"mirrored_at,omitempty"`
}

// Clone returns a deep-enough copy safe to hand outside the library's lock.
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	cp := *t
	if t.CustomFields != nil {
		cp.CustomFields = make(map[string]string, len(t.CustomFields))
		for k, v := range t.CustomFields {
			cp.CustomFields[k] = v
		}
	}
	return &cp
}

// AudioMetadata is what a format handler extracts from a file.
type AudioMetadata struct {
	Title        string
	Artist       string
	Album        string
	AlbumArtist  string
	Genre        string
	Year         string
	TrackNumber  string
	DiscNumber   string
	Composer     string
	Comment      string
	DurationSecs uint64
	CustomFields map[string]string
	HasCover     bool
}

// MetadataUpdate is a PUT /tracks/:id request body; nil fields are left
// untouched.
type MetadataUpdate struct {
	Title        *string           `json:"title,omitempty"`
	Artist       *string           `json:"artist,omitempty"`
	Album        *string           `json:"album,omitempty"`
	AlbumArtist  *string           `json:"album_artist,omitempty"`
	Genre        *string           `json:"genre,omitempty"`
	Year         *string           `json:"year,omitempty"`
	TrackNumber  *string           `json:"track_number,omitempty"`
	DiscNumber   *string           `json:"disc_number,omitempty"`
	Composer     *string           `json:"composer,omitempty"`
	Comment      *string           `json:"comment,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// Album is a derived, never-stored view over the track index.
type Album struct {
	Name          string   `json:"name"`
	Artist        string   `json:"artist,omitempty"`
	TrackCount    int      `json:"track_count"`
	TotalDuration uint64   `json:"total_duration_secs"`
	TrackIDs      []string `json:"track_ids"`
}

// Artist is a derived, never-stored view over the track index.
type Artist struct {
	Name   string   `json:"name"`
	Albums []string `json:"albums"`
}

// LyricFormat is the timing scheme of a Lyric's content.
type LyricFormat string

const (
	LyricFormatPlain   LyricFormat = "plain"
	LyricFormatLRC     LyricFormat = "lrc"
	LyricFormatLRCWord LyricFormat = "lrc_word"
)

// Lyric is the one-row-per-track lyrics record.
type Lyric struct {
	TrackID   string      `json:"track_id"`
	Content   string      `json:"content"`
	Format    LyricFormat `json:"format"`
	Language  *string     `json:"language,omitempty"`
	Source    *string     `json:"source,omitempty"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// LyricUpload is a PUT /lyrics/:id request body.
type LyricUpload struct {
	Content  string  `json:"content"`
	Format   *string `json:"format,omitempty"`
	Language *string `json:"language,omitempty"`
	Source   *string `json:"source,omitempty"`
}

// LyricStats summarizes the lyrics DB's contents.
type LyricStats struct {
	TotalLyrics       int `json:"total_lyrics"`
	LRCFormatCount    int `json:"lrc_format_count"`
	PlainFormatCount  int `json:"plain_format_count"`
}

// Playlist is an ordered set of track IDs.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Tracks      []string `json:"tracks"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// PlaylistCreate is a POST /playlists request body.
type PlaylistCreate struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// PlaylistUpdate is a PUT /playlists/:id request body.
type PlaylistUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tracks      *[]string `json:"tracks,omitempty"`
}

// TrackStat is the play-count record for one track.
type TrackStat struct {
	TrackID      string  `json:"track_id"`
	PlayCount    int64   `json:"play_count"`
	LastPlayedAt *string `json:"last_played_at,omitempty"`
}

// LyricsQuery is the transient search key used across the aggregator
// boundary.
type LyricsQuery struct {
	Title    string
	Artist   *string
	Album    *string
	Duration *time.Duration
}

// LyricsSearchResult is one candidate returned by a provider's Search.
type LyricsSearchResult struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Artist     string         `json:"artist"`
	Album      *string        `json:"album,omitempty"`
	Duration   *time.Duration `json:"duration,omitempty"`
	Confidence float64        `json:"confidence"`
}

// LyricsMetadata carries optional provenance about a LyricsResponse.
type LyricsMetadata struct {
	Contributor     *string `json:"contributor,omitempty"`
	SourceUpdatedAt *string `json:"source_updated_at,omitempty"`
	Copyright       *string `json:"copyright,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// LyricsResponse is the complete payload a provider's Fetch returns.
// TranslatedLyric and RomanizedLyric mirror the original lyric's
// `tlyric.lyric`/`romalrc.lyric` (NetEase) and `contentts`/`contentroma`
// (QQ Music) siblings, nil when the provider has none for this song.
type LyricsResponse struct {
	Content         string         `json:"content"`
	Format          LyricFormat    `json:"format"`
	Language        *string        `json:"language,omitempty"`
	Source          string         `json:"source"`
	URL             *string        `json:"url,omitempty"`
	TranslatedLyric *string        `json:"translated_lyric,omitempty"`
	RomanizedLyric  *string        `json:"romanized_lyric,omitempty"`
	Metadata        LyricsMetadata `json:"metadata"`
}
