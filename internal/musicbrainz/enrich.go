package musicbrainz

import (
	"context"
	"log/slog"
)

// TrackEnrichment holds the fields EnrichTrack found for one track.
type TrackEnrichment struct {
	RecordingMBID string
	Genre         string
	Year          string
}

// EnrichTrack searches MusicBrainz for a recording matching title/artist
// and returns the genre/year it found, or nil if no confident match
// exists. It never decides whether to apply the result — the caller (the
// HTTP handler, via the library's mutation protocol) is responsible for
// only filling fields the track doesn't already have, so enrichment never
// overwrites user-edited tags.
func (c *Client) EnrichTrack(ctx context.Context, title, artist string) (*TrackEnrichment, error) {
	searchResp, err := c.SearchRecording(ctx, title, artist)
	if err != nil {
		return nil, err
	}
	if len(searchResp.Recordings) == 0 {
		slog.Debug("musicbrainz: no recording results", "title", title, "artist", artist)
		return nil, nil
	}

	best := searchResp.Recordings[0]
	if best.Score < 90 {
		slog.Debug("musicbrainz: recording score too low", "title", title, "score", best.Score)
		return nil, nil
	}

	detail, err := c.GetRecording(ctx, best.ID)
	if err != nil {
		slog.Warn("musicbrainz: failed to get recording detail", "mbid", best.ID, "err", err)
		detail = &best
	}

	enrichment := &TrackEnrichment{RecordingMBID: detail.ID}
	if genres := extractGenres(detail.Genres, detail.Tags); len(genres) > 0 {
		enrichment.Genre = genres[0]
	}
	for _, rel := range detail.Releases {
		if rel.Date != "" {
			enrichment.Year = rel.Date
			break
		}
	}

	slog.Info("musicbrainz: enriched track", "title", title, "mbid", detail.ID)
	return enrichment, nil
}

// extractGenres prefers curated genres, falling back to user tags, sorted
// by descending vote count.
func extractGenres(genres, tags []MBGenre) []string {
	source := genres
	if len(source) == 0 {
		source = tags
	}
	out := make([]string, 0, len(source))
	for _, g := range source {
		out = append(out, g.Name)
	}
	return out
}
