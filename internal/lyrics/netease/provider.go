package netease

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phreer/music-station/internal/lyricformat"
	"github.com/phreer/music-station/internal/model"
)

// Provider adapts Client to the lyrics aggregator's Provider interface.
type Provider struct {
	client *Client
}

// NewProvider builds a Provider. cookie may be empty for anonymous access;
// a zero timeout means the client default.
func NewProvider(cookie string, timeout time.Duration) (*Provider, error) {
	c, err := NewClient(cookie, timeout)
	if err != nil {
		return nil, err
	}
	return &Provider{client: c}, nil
}

func (p *Provider) Name() string { return "netease" }

// SupportsSynced reports that NetEase's lyric endpoint returns line-timed
// LRC content.
func (p *Provider) SupportsSynced() bool { return true }

// RequiresAuth reports that most catalog is reachable anonymously; the
// NeedsAuth DomainError surfaces per-request when NetEase's own 20001/
// 50000005 codes demand a logged-in session.
func (p *Provider) RequiresAuth() bool { return false }

// confidence scores a candidate: 0.5 base, +0.3 for a case-insensitive
// title substring match, +0.2 for a case-insensitive artist substring
// match when the query names one, clamped to [0,1].
func confidence(query model.LyricsQuery, title, artist string) float64 {
	score := 0.5
	if strings.Contains(strings.ToLower(title), strings.ToLower(query.Title)) {
		score += 0.3
	}
	if query.Artist != nil && *query.Artist != "" &&
		strings.Contains(strings.ToLower(artist), strings.ToLower(*query.Artist)) {
		score += 0.2
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func (p *Provider) Search(ctx context.Context, query model.LyricsQuery) ([]model.LyricsSearchResult, error) {
	keyword := query.Title
	if query.Artist != nil && *query.Artist != "" {
		keyword = *query.Artist + " " + query.Title
	}

	hits, err := p.client.Search(ctx, keyword)
	if err != nil {
		return nil, err
	}

	results := make([]model.LyricsSearchResult, 0, len(hits))
	for _, h := range hits {
		album := h.Album
		dur := h.Duration
		results = append(results, model.LyricsSearchResult{
			ID:         strconv.FormatInt(h.ID, 10),
			Title:      h.Title,
			Artist:     h.Artist,
			Album:      &album,
			Duration:   &dur,
			Confidence: confidence(query, h.Title, h.Artist),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Confidence > results[j].Confidence })
	return results, nil
}

func (p *Provider) Fetch(ctx context.Context, id string) (*model.LyricsResponse, error) {
	songID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid netease song id %q: %w", id, err)
	}

	lrc, translated, romanized, err := p.client.Lyric(ctx, songID)
	if err != nil {
		return nil, err
	}

	resp := &model.LyricsResponse{
		Content:  lrc,
		Format:   lyricformat.Detect(lrc),
		Source:   p.Name(),
		Metadata: model.LyricsMetadata{},
	}
	if strings.TrimSpace(translated) != "" {
		resp.TranslatedLyric = &translated
	}
	if strings.TrimSpace(romanized) != "" {
		resp.RomanizedLyric = &romanized
	}
	return resp, nil
}
