package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultFrankfurterBaseURL = "https://api.frankfurter.app"

// FrankfurterFetcher implements RateFetcher using the ECB reference rates.
type FrankfurterFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFrankfurterFetcher creates a new FX rate fetcher.
func NewFrankfurterFetcher(baseURL string, client *http.Client) *FrankfurterFetcher {
	if baseURL == "" {
		baseURL = defaultFrankfurterBaseURL
	}
	return &FrankfurterFetcher{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (f *FrankfurterFetcher) Name() string { return "frankfurter" }

// FetchRate returns how many units of to one unit of from buys.
func (f *FrankfurterFetcher) FetchRate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/latest?%s", f.BaseURL, params.Encode()), nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, upstream(f.Name(), "fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, upstream(f.Name(), "status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, upstream(f.Name(), "decode: %w", err)
	}
	rate, ok := body.Rates[to]
	if !ok || rate <= 0 {
		return 0, ErrNoData
	}
	return rate, nil
}
