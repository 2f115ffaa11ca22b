package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StonkBot/internal/model"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1700000120,1700000000,1700000060],
"indicators":{"quote":[{
"open":[3,1,null],"high":[3.5,1.5,null],"low":[2.5,0.5,null],"close":[3.25,1.25,null],"volume":[300,100,null]}]}}],
"error":null}}`

func TestYahooFetchSeries_Period(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	bars, err := f.FetchSeries(context.Background(), model.SeriesQuery{
		Symbol: "aapl", Asset: model.Equity, Interval: model.Day, Period: "1y",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", got.URL.Path)
	assert.Equal(t, "1y", got.URL.Query().Get("range"))
	assert.Equal(t, "1d", got.URL.Query().Get("interval"))
	assert.Equal(t, "false", got.URL.Query().Get("includePrePost"))

	// null bucket skipped, output sorted
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1700000000), bars[0].Time.Unix())
	assert.Equal(t, 1.25, bars[0].Close)
	assert.Equal(t, int64(1700000120), bars[1].Time.Unix())
	assert.Equal(t, 300.0, bars[1].Volume)
}

func TestYahooFetchSeries_DuplicateTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1700000060,1700000000,1700000060],
"indicators":{"quote":[{
"open":[2,1,4],"high":[2,1,4],"low":[2,1,4],"close":[2,1,4],"volume":[20,10,40]}]}}],
"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	bars, err := f.FetchSeries(context.Background(), model.SeriesQuery{
		Symbol: "SPY", Asset: model.Equity, Interval: model.Minute, Window: time.Hour, End: time.Unix(1700003600, 0),
	})
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, int64(1700000000), bars[0].Time.Unix())
	assert.Equal(t, int64(1700000060), bars[1].Time.Unix())
	assert.Equal(t, 4.0, bars[1].Close)
	assert.Equal(t, 40.0, bars[1].Volume)
}

func TestSortBars(t *testing.T) {
	bar := func(sec int64, c float64) model.OHLCV { return model.OHLCV{Time: time.Unix(sec, 0), Close: c} }

	got := sortBars([]model.OHLCV{bar(3, 1), bar(1, 2), bar(3, 3), bar(2, 4), bar(1, 5), bar(3, 6)})
	assert.Equal(t, []model.OHLCV{bar(1, 5), bar(2, 4), bar(3, 6)}, got)

	assert.Empty(t, sortBars(nil))
	assert.Equal(t, []model.OHLCV{bar(7, 1)}, sortBars([]model.OHLCV{bar(7, 1)}))
}

func TestYahooFetchSeries_Window(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	end := time.Unix(1700086400, 0)
	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{
		Symbol: "SPY", Interval: model.FiveMinute, Window: 24 * time.Hour, End: end, PrePost: true,
	})
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "1700000000", q.Get("period1"))
	assert.Equal(t, "1700086400", q.Get("period2"))
	assert.Equal(t, "true", q.Get("includePrePost"))
	assert.Empty(t, q.Get("range"))
}

func TestYahooFetchSeries_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "SPY", Interval: model.Minute, Period: "1d"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooFetchSeries_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "ZZZZ", Interval: model.Day, Period: "1y"})
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "yahoo", ue.Provider)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooFetchSeries_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "SPY", Interval: model.Day, Period: "1y"})

	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.False(t, errors.Is(err, ErrNoData))
}

func TestYahooSymbolMap(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "spx", Interval: model.Day, Period: "1mo"})
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC", path)
}

const summaryBody = `{"quoteSummary":{"result":[{
"price":{"longName":"Apple Inc."},
"summaryDetail":{"open":{"raw":189.5},"ask":{"raw":190.1},"bid":{"raw":190.0},"volume":{"raw":51234567},
  "averageVolume":{"raw":60000000},"beta":{"raw":1.28765},"marketCap":{"raw":2950000000000}},
"assetProfile":{"sector":"Technology","phone":"408 996 1010","fullTimeEmployees":161000,"longBusinessSummary":"Makes phones."},
"recommendationTrend":{"trend":[{"period":"0m","strongBuy":11,"buy":21,"hold":6,"sell":0,"strongSell":0},
  {"period":"-1m","strongBuy":10,"buy":20,"hold":7,"sell":1,"strongSell":0}]}
}],"error":null}}`

func TestYahooQuoteSummary(t *testing.T) {
	var modules []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modules = append(modules, r.URL.Query().Get("modules"))
		_, _ = w.Write([]byte(summaryBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	ctx := context.Background()

	q, err := f.FetchQuote(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 189.5, q.Open)
	assert.Equal(t, int64(51234567), q.Volume)
	assert.Equal(t, int64(60000000), q.AverageVolume)

	p, err := f.FetchProfile(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", p.LongName)
	assert.Equal(t, "Technology", p.Sector)
	assert.Equal(t, int64(161000), p.FullTimeEmployees)
	assert.Equal(t, int64(2950000000000), p.MarketCap)

	recs, err := f.FetchRecommendations(ctx, "aapl")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "0m", recs[0].Period)
	assert.Equal(t, 21, recs[0].Buy)

	assert.Equal(t, []string{"summaryDetail", "price,summaryDetail,assetProfile", "recommendationTrend"}, modules)
}

func TestYahooQuoteSummary_NoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quoteSummary":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, srv.Client())
	_, err := f.FetchQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoData)
}
