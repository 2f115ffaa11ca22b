package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StonkBot/internal/calculator"
	"StonkBot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.OHLCV
	Err   error

	mu      sync.Mutex
	Queries []model.SeriesQuery
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, q model.SeriesQuery) ([]model.OHLCV, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, q)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	count := q.Buckets
	if count == 0 {
		count = 30
	}
	return generateMockBars(m.Price, count), nil
}

// Calls returns the number of FetchSeries calls made so far.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	start := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Router dispatches series queries to the provider for their asset class.
type Router struct {
	Equity SeriesFetcher
	Crypto SeriesFetcher
}

// NewRouter creates a new Router.
func NewRouter(equity, crypto SeriesFetcher) *Router {
	return &Router{Equity: equity, Crypto: crypto}
}

func (r *Router) Name() string { return "router" }

// FetchSeries forwards q to the fetcher registered for q.Asset.
func (r *Router) FetchSeries(ctx context.Context, q model.SeriesQuery) ([]model.OHLCV, error) {
	switch q.Asset {
	case model.Equity:
		if r.Equity != nil {
			return r.Equity.FetchSeries(ctx, q)
		}
	case model.Crypto:
		if r.Crypto != nil {
			return r.Crypto.FetchSeries(ctx, q)
		}
	}
	return nil, fmt.Errorf("no fetcher for %s", q.Asset)
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher SeriesFetcher
}

// NewCollector creates a new Collector.
func NewCollector(fetcher SeriesFetcher) *Collector {
	return &Collector{Fetcher: fetcher}
}

// Collect fetches one year of daily equity bars and computes the summary indicators.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.MarketStats, error) {
	daily, err := c.Fetcher.FetchSeries(ctx, model.SeriesQuery{
		Symbol:   symbol,
		Asset:    model.Equity,
		Interval: model.Day,
		Period:   "1y",
		End:      time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	return calculator.Summarize(symbol, daily)
}
