package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockSeer/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		BaseURL: yahooChartURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
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
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// toPrice converts a JSON close value; Yahoo emits null for halted or
// missing sessions, which come through as NaN for the sanitizer to drop.
func toPrice(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return math.NaN()
	}
}

// yahooRange maps a lookback window to the coarsest chart range that
// covers it. The chart API tops out at ten years, so wider lookbacks
// are capped.
func yahooRange(lookbackYears int) string {
	switch {
	case lookbackYears <= 1:
		return "1y"
	case lookbackYears <= 2:
		return "2y"
	case lookbackYears <= 5:
		return "5y"
	default:
		if lookbackYears > 10 {
			log.Printf("[WARN] lookback of %d years exceeds the widest chart range, capping at 10y", lookbackYears)
		}
		return "10y"
	}
}

// FetchDailyHistory fetches daily closes covering the lookback window.
func (f *YahooFetcher) FetchDailyHistory(ctx context.Context, symbol string, lookbackYears int) (*model.PriceSeries, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooRange(lookbackYears))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo fetch: %v", ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: yahoo read body: %v", ErrTransientFetch, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: yahoo: symbol %q not found", ErrDataUnavailable, symbol)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: yahoo: status %d", ErrTransientFetch, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: yahoo: status %d, body: %s", ErrDataUnavailable, resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", ErrTransientFetch, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error: %s", ErrDataUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no data returned for %q", ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no quote block for %q", ErrDataUnavailable, symbol)
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return nil, errors.New("yahoo: timestamp/close length mismatch")
	}

	cutoff := time.Now().UTC().AddDate(-lookbackYears, 0, 0)
	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		t := time.Unix(ts, 0).UTC()
		if t.Before(cutoff) {
			continue
		}
		points = append(points, model.PricePoint{Date: t, Price: toPrice(quote.Close[i])})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no rows inside lookback window for %q", ErrDataUnavailable, symbol)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return &model.PriceSeries{Symbol: symbol, Points: points, FetchedAt: time.Now()}, nil
}
