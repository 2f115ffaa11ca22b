package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"StonkBot/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements SeriesFetcher and QuoteFetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps chat symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL string, client *http.Client) *YahooFetcher {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		SymbolMap: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
			"DJI":   "^DJI",
			"VIX":   "^VIX",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	symbol = strings.ToUpper(symbol)
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

// FetchSeries fetches equity history for either a named period or an explicit window.
func (f *YahooFetcher) FetchSeries(ctx context.Context, q model.SeriesQuery) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("interval", string(q.Interval))
	params.Set("includePrePost", strconv.FormatBool(q.PrePost))
	switch {
	case q.Period != "":
		params.Set("range", q.Period)
	case q.Window > 0:
		params.Set("period1", strconv.FormatInt(q.Start().Unix(), 10))
		params.Set("period2", strconv.FormatInt(q.End.Unix(), 10))
	default:
		return nil, fmt.Errorf("yahoo: query for %s has neither period nor window", q.Symbol)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(q.Symbol)), params.Encode())

	var chart yahooChart
	if err := f.getJSON(ctx, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, upstream(f.Name(), "api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bucket
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: at(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	return sortBars(bars), nil
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName string `json:"longName"`
			} `json:"price"`
			SummaryDetail *struct {
				Open          rawValue `json:"open"`
				Ask           rawValue `json:"ask"`
				Bid           rawValue `json:"bid"`
				Volume        rawValue `json:"volume"`
				AverageVolume rawValue `json:"averageVolume"`
				Beta          rawValue `json:"beta"`
				MarketCap     rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			AssetProfile *struct {
				Sector              string `json:"sector"`
				Phone               string `json:"phone"`
				FullTimeEmployees   int64  `json:"fullTimeEmployees"`
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
			RecommendationTrend *struct {
				Trend []struct {
					Period     string `json:"period"`
					StrongBuy  int    `json:"strongBuy"`
					Buy        int    `json:"buy"`
					Hold       int    `json:"hold"`
					Sell       int    `json:"sell"`
					StrongSell int    `json:"strongSell"`
				} `json:"trend"`
			} `json:"recommendationTrend"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (f *YahooFetcher) quoteSummary(ctx context.Context, symbol string, modules ...string) (*yahooQuoteSummary, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), url.QueryEscape(strings.Join(modules, ",")))

	var qs yahooQuoteSummary
	if err := f.getJSON(ctx, u, &qs); err != nil {
		return nil, err
	}
	if qs.QuoteSummary.Error != nil {
		return nil, upstream(f.Name(), "api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, ErrNoData
	}
	return &qs, nil
}

// FetchQuote returns the daily price information of an equity.
func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	qs, err := f.quoteSummary(ctx, symbol, "summaryDetail")
	if err != nil {
		return nil, err
	}
	sd := qs.QuoteSummary.Result[0].SummaryDetail
	if sd == nil {
		return nil, ErrNoData
	}
	return &model.Quote{
		Symbol:        strings.ToUpper(symbol),
		Open:          sd.Open.Raw,
		Ask:           sd.Ask.Raw,
		Bid:           sd.Bid.Raw,
		Volume:        int64(sd.Volume.Raw),
		AverageVolume: int64(sd.AverageVolume.Raw),
		Beta:          sd.Beta.Raw,
	}, nil
}

// FetchProfile returns general company information. Missing modules leave fields empty.
func (f *YahooFetcher) FetchProfile(ctx context.Context, symbol string) (*model.Profile, error) {
	qs, err := f.quoteSummary(ctx, symbol, "price", "summaryDetail", "assetProfile")
	if err != nil {
		return nil, err
	}
	r := qs.QuoteSummary.Result[0]
	p := &model.Profile{Symbol: strings.ToUpper(symbol)}
	if r.Price != nil {
		p.LongName = r.Price.LongName
	}
	if r.SummaryDetail != nil {
		p.MarketCap = int64(r.SummaryDetail.MarketCap.Raw)
	}
	if r.AssetProfile != nil {
		p.Sector = r.AssetProfile.Sector
		p.Phone = r.AssetProfile.Phone
		p.FullTimeEmployees = r.AssetProfile.FullTimeEmployees
		p.Summary = r.AssetProfile.LongBusinessSummary
	}
	return p, nil
}

// FetchRecommendations returns the analyst recommendation trend, most recent period first.
func (f *YahooFetcher) FetchRecommendations(ctx context.Context, symbol string) ([]model.Recommendation, error) {
	qs, err := f.quoteSummary(ctx, symbol, "recommendationTrend")
	if err != nil {
		return nil, err
	}
	rt := qs.QuoteSummary.Result[0].RecommendationTrend
	if rt == nil || len(rt.Trend) == 0 {
		return nil, ErrNoData
	}
	out := make([]model.Recommendation, 0, len(rt.Trend))
	for _, t := range rt.Trend {
		out = append(out, model.Recommendation{
			Period:     t.Period,
			StrongBuy:  t.StrongBuy,
			Buy:        t.Buy,
			Hold:       t.Hold,
			Sell:       t.Sell,
			StrongSell: t.StrongSell,
		})
	}
	return out, nil
}

func (f *YahooFetcher) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return upstream(f.Name(), "fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstream(f.Name(), "read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		// Unknown tickers come back as 404 with an error object in the body.
		var envelope struct {
			Chart        struct{ Error *yahooError } `json:"chart"`
			QuoteSummary struct{ Error *yahooError } `json:"quoteSummary"`
		}
		if json.Unmarshal(body, &envelope) == nil && (envelope.Chart.Error != nil || envelope.QuoteSummary.Error != nil) {
			return json.Unmarshal(body, v)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return upstream(f.Name(), "status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return upstream(f.Name(), "decode: %w", err)
	}
	return nil
}
