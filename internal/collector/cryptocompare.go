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

const defaultCryptoCompareBaseURL = "https://min-api.cryptocompare.com"

// CryptoCompareFetcher implements SeriesFetcher and PriceFetcher for cryptocurrencies.
type CryptoCompareFetcher struct {
	BaseURL string
	APIKey  string
	Quote   string // quote currency for history, USD by default
	Client  *http.Client
}

// NewCryptoCompareFetcher creates a new CryptoCompare fetcher. apiKey may be empty.
func NewCryptoCompareFetcher(baseURL, apiKey string, client *http.Client) *CryptoCompareFetcher {
	if baseURL == "" {
		baseURL = defaultCryptoCompareBaseURL
	}
	return &CryptoCompareFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Quote:   "USD",
		Client:  client,
	}
}

func (f *CryptoCompareFetcher) Name() string { return "cryptocompare" }

type ccHistory struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []struct {
			Time       int64   `json:"time"`
			Open       float64 `json:"open"`
			High       float64 `json:"high"`
			Low        float64 `json:"low"`
			Close      float64 `json:"close"`
			VolumeFrom float64 `json:"volumefrom"`
			VolumeTo   float64 `json:"volumeto"`
		} `json:"Data"`
	} `json:"Data"`
}

func histoPath(iv model.Interval) (string, error) {
	switch iv {
	case model.Minute:
		return "histominute", nil
	case model.Hour:
		return "histohour", nil
	case model.Day:
		return "histoday", nil
	default:
		return "", fmt.Errorf("cryptocompare: unsupported interval %q", iv)
	}
}

// FetchSeries returns q.Buckets buckets of q.Interval ending at q.End.
func (f *CryptoCompareFetcher) FetchSeries(ctx context.Context, q model.SeriesQuery) ([]model.OHLCV, error) {
	path, err := histoPath(q.Interval)
	if err != nil {
		return nil, err
	}
	if q.Buckets <= 0 {
		return nil, fmt.Errorf("cryptocompare: bucket count must be positive, got %d", q.Buckets)
	}
	end := q.End
	if end.IsZero() {
		end = time.Now()
	}

	params := url.Values{}
	params.Set("fsym", strings.ToUpper(q.Symbol))
	params.Set("tsym", f.Quote)
	params.Set("limit", strconv.Itoa(q.Buckets))
	params.Set("toTs", strconv.FormatInt(end.Unix(), 10))

	var hist ccHistory
	if err := f.getJSON(ctx, fmt.Sprintf("%s/data/v2/%s?%s", f.BaseURL, path, params.Encode()), &hist); err != nil {
		return nil, err
	}
	if hist.Response == "Error" {
		return nil, upstream(f.Name(), "api error: %s", hist.Message)
	}

	bars := make([]model.OHLCV, 0, len(hist.Data.Data))
	for _, d := range hist.Data.Data {
		if d.Open == 0 && d.High == 0 && d.Low == 0 && d.Close == 0 {
			continue // before listing
		}
		bars = append(bars, model.OHLCV{
			Time:   time.Unix(d.Time, 0),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.VolumeFrom + d.VolumeTo,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return sortBars(bars), nil
}

// FetchPrice returns the spot price of symbol in each requested currency.
func (f *CryptoCompareFetcher) FetchPrice(ctx context.Context, symbol string, currencies ...string) (map[string]float64, error) {
	if len(currencies) == 0 {
		currencies = []string{f.Quote}
	}
	upper := make([]string, len(currencies))
	for i, c := range currencies {
		upper[i] = strings.ToUpper(c)
	}
	currencies = upper
	params := url.Values{}
	params.Set("fsym", strings.ToUpper(symbol))
	params.Set("tsyms", strings.Join(currencies, ","))

	// The price endpoint answers errors with a 200 and a Response field,
	// and successes with a bare currency map.
	var raw map[string]json.RawMessage
	if err := f.getJSON(ctx, fmt.Sprintf("%s/data/price?%s", f.BaseURL, params.Encode()), &raw); err != nil {
		return nil, err
	}
	if resp, ok := raw["Response"]; ok && strings.Contains(string(resp), "Error") {
		var msg string
		_ = json.Unmarshal(raw["Message"], &msg)
		return nil, upstream(f.Name(), "api error: %s", msg)
	}

	out := make(map[string]float64, len(currencies))
	for _, c := range currencies {
		v, ok := raw[c]
		if !ok {
			continue
		}
		var price float64
		if err := json.Unmarshal(v, &price); err != nil {
			return nil, upstream(f.Name(), "decode %s price: %w", c, err)
		}
		out[c] = price
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

func (f *CryptoCompareFetcher) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("authorization", "Apikey "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return upstream(f.Name(), "fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstream(f.Name(), "read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return upstream(f.Name(), "status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return upstream(f.Name(), "decode: %w", err)
	}
	return nil
}
