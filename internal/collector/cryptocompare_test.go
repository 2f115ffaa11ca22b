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

func TestCryptoCompareFetchSeries(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"Response":"Success","Message":"","Data":{"Data":[
{"time":1700003600,"open":10,"high":12,"low":9,"close":11,"volumefrom":5,"volumeto":55},
{"time":1700000000,"open":0,"high":0,"low":0,"close":0,"volumefrom":0,"volumeto":0},
{"time":1700001800,"open":9,"high":10,"low":8,"close":10,"volumefrom":2,"volumeto":20}]}}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "secret", srv.Client())
	bars, err := f.FetchSeries(context.Background(), model.SeriesQuery{
		Symbol: "btc", Asset: model.Crypto, Interval: model.Hour, Buckets: 24, End: time.Unix(1700003600, 0),
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/v2/histohour", got.URL.Path)
	assert.Equal(t, "BTC", got.URL.Query().Get("fsym"))
	assert.Equal(t, "USD", got.URL.Query().Get("tsym"))
	assert.Equal(t, "24", got.URL.Query().Get("limit"))
	assert.Equal(t, "1700003600", got.URL.Query().Get("toTs"))
	assert.Equal(t, "Apikey secret", got.Header.Get("authorization"))

	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 22.0, bars[0].Volume)
	assert.Equal(t, 60.0, bars[1].Volume)
}

func TestCryptoCompareFetchSeries_DuplicateTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"Success","Message":"","Data":{"Data":[
{"time":1700000000,"open":1,"high":1,"low":1,"close":1,"volumefrom":1,"volumeto":1},
{"time":1700003600,"open":2,"high":2,"low":2,"close":2,"volumefrom":1,"volumeto":1},
{"time":1700003600,"open":3,"high":3,"low":3,"close":3,"volumefrom":2,"volumeto":2}]}}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "", srv.Client())
	bars, err := f.FetchSeries(context.Background(), model.SeriesQuery{
		Symbol: "ETH", Asset: model.Crypto, Interval: model.Hour, Buckets: 2, End: time.Unix(1700003600, 0),
	})
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 3.0, bars[1].Close)
	assert.Equal(t, 4.0, bars[1].Volume)
}

func TestCryptoCompareFetchSeries_Paths(t *testing.T) {
	for iv, want := range map[model.Interval]string{
		model.Minute: "histominute",
		model.Hour:   "histohour",
		model.Day:    "histoday",
	} {
		got, err := histoPath(iv)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := histoPath(model.FiveMinute)
	assert.Error(t, err)
}

func TestCryptoCompareFetchSeries_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"Error","Message":"fsym param is invalid","Data":{}}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "", srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "NOPE", Interval: model.Day, Buckets: 30})

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "cryptocompare", ue.Provider)

	_, err = f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "BTC", Interval: model.Day})
	assert.Error(t, err)
}

func TestCryptoCompareFetchSeries_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"Success","Data":{"Data":[]}}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "", srv.Client())
	_, err := f.FetchSeries(context.Background(), model.SeriesQuery{Symbol: "BTC", Interval: model.Minute, Buckets: 60})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCryptoCompareFetchPrice(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`{"USD":2301.5,"KRW":3100000}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "", srv.Client())
	prices, err := f.FetchPrice(context.Background(), "eth", "usd", "krw")
	require.NoError(t, err)

	assert.Equal(t, "/data/price", got.URL.Path)
	assert.Equal(t, "ETH", got.URL.Query().Get("fsym"))
	assert.Equal(t, "USD,KRW", got.URL.Query().Get("tsyms"))
	assert.Empty(t, got.Header.Get("authorization"))
	assert.Equal(t, 2301.5, prices["USD"])
	assert.Equal(t, 3100000.0, prices["KRW"])
}

func TestCryptoCompareFetchPrice_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"Error","Message":"There is no data for the symbol NOPE ."}`))
	}))
	defer srv.Close()

	f := NewCryptoCompareFetcher(srv.URL, "", srv.Client())
	_, err := f.FetchPrice(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data for the symbol")
}
