package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StonkBot/internal/collector"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>news</title>
<item><title>one</title><link>https://example.com/1</link></item>
<item><title>no link</title></item>
<item><title>two</title><link>https://example.com/2</link></item>
<item><title>three</title><link>https://example.com/3</link></item>
<item><title>four</title><link>https://example.com/4</link></item>
</channel></rss>`

func TestGoogleNews_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	g := NewGoogleNews(srv.URL, srv.Client())
	links, err := g.Search(context.Background(), StockQuery("TSLA"), 3)
	require.NoError(t, err)
	assert.Equal(t, "stock market news TSLA", gotQuery)
	assert.Equal(t, []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}, links)
}

func TestGoogleNews_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`))
	}))
	defer srv.Close()

	_, err := NewGoogleNews(srv.URL, srv.Client()).Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, collector.ErrNoData)
}

func TestGoogleNews_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewGoogleNews(srv.URL, srv.Client()).Search(context.Background(), "q", 3)
	var ue *collector.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "news", ue.Provider)
}

func TestQueries(t *testing.T) {
	assert.Equal(t, "stock market news", StockQuery(""))
	assert.Equal(t, "crypto market news BTC", CryptoQuery("BTC"))
}
