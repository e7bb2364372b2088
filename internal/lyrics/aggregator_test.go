package lyrics

import (
	"context"
	"errors"
	"testing"

	"github.com/phreer/music-station/internal/model"
)

// fakeProvider is a minimal in-memory Provider for exercising the
// aggregator's fallback and fan-out logic without any network dependency.
type fakeProvider struct {
	name      string
	results   []model.LyricsSearchResult
	searchErr error
	fetchByID map[string]*model.LyricsResponse
}

func (f *fakeProvider) Name() string         { return f.name }
func (f *fakeProvider) SupportsSynced() bool { return true }
func (f *fakeProvider) RequiresAuth() bool   { return false }

func (f *fakeProvider) Search(ctx context.Context, query model.LyricsQuery) ([]model.LyricsSearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, id string) (*model.LyricsResponse, error) {
	resp, ok := f.fetchByID[id]
	if !ok {
		return nil, errors.New("no such id")
	}
	return resp, nil
}

func TestFetchLyricsFallsBackToSecondProvider(t *testing.T) {
	low := &fakeProvider{
		name: "low-confidence",
		results: []model.LyricsSearchResult{
			{ID: "1", Title: "Song", Confidence: 0.3},
		},
	}
	high := &fakeProvider{
		name: "high-confidence",
		results: []model.LyricsSearchResult{
			{ID: "2", Title: "Song", Confidence: 0.9},
		},
		fetchByID: map[string]*model.LyricsResponse{
			"2": {Content: "la la la", Source: "high-confidence"},
		},
	}

	agg := NewAggregator(low, high)
	resp, err := agg.FetchLyrics(context.Background(), model.LyricsQuery{Title: "Song"})
	if err != nil {
		t.Fatalf("FetchLyrics: %v", err)
	}
	if resp.Source != "high-confidence" {
		t.Errorf("Source = %q, want high-confidence", resp.Source)
	}
}

func TestFetchLyricsNoneFound(t *testing.T) {
	empty := &fakeProvider{name: "empty"}
	agg := NewAggregator(empty)
	if _, err := agg.FetchLyrics(context.Background(), model.LyricsQuery{Title: "Unknown"}); err == nil {
		t.Fatal("expected an error when no provider finds a confident match")
	}
}

func TestFetchFromProviderUnknownName(t *testing.T) {
	agg := NewAggregator(&fakeProvider{name: "only"})
	if _, err := agg.FetchFromProvider(context.Background(), "missing", "1"); err == nil {
		t.Fatal("expected an error for an unknown provider name")
	}
}

func TestSearchAllCollectsEveryProvider(t *testing.T) {
	a := &fakeProvider{name: "a", results: []model.LyricsSearchResult{{ID: "1"}}}
	b := &fakeProvider{name: "b", searchErr: errors.New("boom")}

	agg := NewAggregator(a, b)
	results := agg.SearchAll(context.Background(), model.LyricsQuery{Title: "x"})
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	byName := map[string]ProviderSearchResult{}
	for _, r := range results {
		byName[r.Provider] = r
	}
	if byName["a"].Err != nil {
		t.Errorf("provider a should not have errored")
	}
	if byName["b"].Err == nil {
		t.Errorf("provider b should have errored")
	}
}
