package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockSeer/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted candle REST API,
// for deployments that mirror market data internally instead of hitting
// Yahoo directly.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the candle API.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

// FetchDailyHistory fetches daily closes covering the lookback window.
func (f *RESTFetcher) FetchDailyHistory(ctx context.Context, symbol string, lookbackYears int) (*model.PriceSeries, error) {
	// 366 covers leap years; the sanitizer trims nothing here, the API
	// simply returns at most this many rows.
	limit := lookbackYears * 366
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch bars: %v", ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: symbol %q not found", ErrDataUnavailable, symbol)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTransientFetch, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", ErrDataUnavailable, resp.StatusCode, string(body))
	}

	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("%w: decode bars: %v", ErrTransientFetch, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no rows for %q", ErrDataUnavailable, symbol)
	}

	cutoff := time.Now().UTC().AddDate(-lookbackYears, 0, 0)
	points := make([]model.PricePoint, 0, len(bars))
	for _, b := range bars {
		t := time.Unix(b.Timestamp, 0).UTC()
		if t.Before(cutoff) {
			continue
		}
		points = append(points, model.PricePoint{Date: t, Price: b.Close})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no rows inside lookback window for %q", ErrDataUnavailable, symbol)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return &model.PriceSeries{Symbol: symbol, Points: points, FetchedAt: time.Now()}, nil
}
