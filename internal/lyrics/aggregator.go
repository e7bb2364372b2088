// Package lyrics defines the provider-agnostic lyrics aggregator:
// sequential-fallback search/fetch across whichever providers are
// configured, plus parallel fan-out search and health checks.
package lyrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/phreer/music-station/internal/domainerr"
	"github.com/phreer/music-station/internal/model"
)

// Provider is implemented once per lyrics source (NetEase, QQ Music, ...).
// Default-method behavior (SearchAndFetch, HealthCheck) is hung off
// Aggregator instead of embedded per-provider, since Go has no trait
// default methods — every provider gets the same fallback logic for free
// by going through the aggregator rather than reimplementing it.
type Provider interface {
	Name() string
	SupportsSynced() bool
	RequiresAuth() bool
	Search(ctx context.Context, query model.LyricsQuery) ([]model.LyricsSearchResult, error)
	Fetch(ctx context.Context, id string) (*model.LyricsResponse, error)
}

// Aggregator holds an ordered list of providers and queries them in turn.
type Aggregator struct {
	providers []Provider
}

// NewAggregator builds an Aggregator trying providers in the given order.
func NewAggregator(providers ...Provider) *Aggregator {
	return &Aggregator{providers: providers}
}

// Providers returns the configured providers in registration order.
func (a *Aggregator) Providers() []Provider { return a.providers }

func (a *Aggregator) find(name string) (Provider, error) {
	for _, p := range a.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, domainerr.New(domainerr.NotFound, fmt.Sprintf("no lyrics provider named %q", name))
}

// FetchFromProvider dispatches a Fetch directly to one named provider.
func (a *Aggregator) FetchFromProvider(ctx context.Context, name, id string) (*model.LyricsResponse, error) {
	p, err := a.find(name)
	if err != nil {
		return nil, err
	}
	return p.Fetch(ctx, id)
}

// SearchFromProvider dispatches a Search directly to one named provider.
func (a *Aggregator) SearchFromProvider(ctx context.Context, name string, query model.LyricsQuery) ([]model.LyricsSearchResult, error) {
	p, err := a.find(name)
	if err != nil {
		return nil, err
	}
	return p.Search(ctx, query)
}

// FetchLyrics tries providers in registration order; the first one to
// return a confident SearchAndFetch result wins. Per-provider errors are
// logged by the caller's context and simply treated as "no result" so the
// next provider gets a chance.
func (a *Aggregator) FetchLyrics(ctx context.Context, query model.LyricsQuery) (*model.LyricsResponse, error) {
	var lastErr error
	for _, p := range a.providers {
		resp, err := searchAndFetch(ctx, p, query)
		if err != nil {
			lastErr = err
			continue
		}
		if resp != nil {
			return resp, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, domainerr.New(domainerr.NotFound, fmt.Sprintf("no lyrics found for %q", query.Title))
}

// searchAndFetch picks the highest-confidence search result and fetches it
// only if confidence > 0.5; a lower-confidence best match counts as no
// result.
func searchAndFetch(ctx context.Context, p Provider, query model.LyricsQuery) (*model.LyricsResponse, error) {
	results, err := p.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	if best.Confidence <= 0.5 {
		return nil, nil
	}
	return p.Fetch(ctx, best.ID)
}

// ProviderSearchResult is one provider's outcome from SearchAll.
type ProviderSearchResult struct {
	Provider string
	Results  []model.LyricsSearchResult
	Err      error
}

// SearchAll fans out Search to every configured provider in parallel and
// returns each provider's own (results, error) pair — the caller decides
// how to merge or rank across providers.
func (a *Aggregator) SearchAll(ctx context.Context, query model.LyricsQuery) []ProviderSearchResult {
	out := make([]ProviderSearchResult, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			results, err := p.Search(ctx, query)
			out[i] = ProviderSearchResult{Provider: p.Name(), Results: results, Err: err}
		}(i, p)
	}
	wg.Wait()
	return out
}

// ProviderHealth is one provider's outcome from HealthCheckAll.
type ProviderHealth struct {
	Provider string
	Healthy  bool
}

// HealthCheckAll fans out a trivial search to every provider in parallel,
// treating any error as unhealthy.
func (a *Aggregator) HealthCheckAll(ctx context.Context) []ProviderHealth {
	out := make([]ProviderHealth, len(a.providers))
	var wg sync.WaitGroup
	for i, p := range a.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			_, err := p.Search(ctx, model.LyricsQuery{Title: "test"})
			out[i] = ProviderHealth{Provider: p.Name(), Healthy: err == nil}
		}(i, p)
	}
	wg.Wait()
	return out
}
