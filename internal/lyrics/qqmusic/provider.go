package qqmusic

import (
	"context"
	"sort"
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
func NewProvider(cookie string, timeout time.Duration) *Provider {
	return &Provider{client: NewClient(cookie, timeout)}
}

func (p *Provider) Name() string { return "qqmusic" }

// SupportsSynced reports that QQ Music's QRC lyric payload carries
// word-level timing once decrypted.
func (p *Provider) SupportsSynced() bool { return true }

// RequiresAuth reports that search and lyric retrieval both work against
// the public, unauthenticated endpoints this client uses.
func (p *Provider) RequiresAuth() bool { return false }

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
			ID:         h.ID,
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
	lyric, translated, romanized, err := p.client.Lyric(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &model.LyricsResponse{
		Content:  lyric,
		Format:   lyricformat.Detect(lyric),
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
