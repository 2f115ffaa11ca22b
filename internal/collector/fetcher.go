package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"StonkBot/internal/model"
)

// ErrNoData reports a valid upstream response carrying no points, which for
// equities usually means the market is closed.
var ErrNoData = errors.New("no data returned")

// UpstreamError wraps a provider failure with the provider name.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(provider string, format string, args ...any) error {
	return &UpstreamError{Provider: provider, Err: fmt.Errorf(format, args...)}
}

// sortBars orders bars by time in place and drops repeated timestamps,
// keeping the bar the provider sent last.
func sortBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// SeriesFetcher returns the price history described by a query.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, q model.SeriesQuery) ([]model.OHLCV, error)
	Name() string
}

// QuoteFetcher looks up quote, profile and analyst data for an equity.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	FetchProfile(ctx context.Context, symbol string) (*model.Profile, error)
	FetchRecommendations(ctx context.Context, symbol string) ([]model.Recommendation, error)
}

// PriceFetcher returns spot crypto prices keyed by currency.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, symbol string, currencies ...string) (map[string]float64, error)
}

// RateFetcher converts between fiat currencies.
type RateFetcher interface {
	FetchRate(ctx context.Context, from, to string) (float64, error)
}
