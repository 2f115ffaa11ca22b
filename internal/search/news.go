// Package search relays headline links from a news RSS feed.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"StonkBot/internal/collector"
)

const defaultNewsURL = "https://news.google.com/rss/search"

// NewsSearcher returns the top links for a query.
type NewsSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// GoogleNews queries the Google News RSS search feed.
type GoogleNews struct {
	BaseURL string
	parser  *gofeed.Parser
}

// NewGoogleNews creates a searcher. An empty baseURL selects Google News.
func NewGoogleNews(baseURL string, client *http.Client) *GoogleNews {
	if baseURL == "" {
		baseURL = defaultNewsURL
	}
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	p.UserAgent = "StonkBot/1.0"
	return &GoogleNews{BaseURL: baseURL, parser: p}
}

// Search returns up to limit article links in feed order.
func (g *GoogleNews) Search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")
	u := g.BaseURL + "?" + params.Encode()

	feed, err := g.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, &collector.UpstreamError{Provider: "news", Err: fmt.Errorf("fetch feed: %w", err)}
	}

	links := make([]string, 0, limit)
	for _, item := range feed.Items {
		if len(links) == limit {
			break
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		links = append(links, link)
	}
	if len(links) == 0 {
		return nil, collector.ErrNoData
	}
	log.Debug().Str("component", "news").Str("query", query).Int("links", len(links)).Msg("news search")
	return links, nil
}

// StockQuery builds the equity news query, optionally narrowed to a company.
func StockQuery(company string) string {
	return strings.TrimSpace("stock market news " + company)
}

// CryptoQuery builds the crypto news query, optionally narrowed to a coin.
func CryptoQuery(coin string) string {
	return strings.TrimSpace("crypto market news " + coin)
}
