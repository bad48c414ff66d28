package marketdata

import (
	"context"
	"math"
	"time"

	"StockSeer/internal/model"
)

// Fetcher fetches raw daily close history for a symbol. The lookback
// window is measured backward from the current date; gaps for holidays
// and weekends are expected and not an error.
type Fetcher interface {
	FetchDailyHistory(ctx context.Context, symbol string, lookbackYears int) (*model.PriceSeries, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series *model.PriceSeries
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyHistory(_ context.Context, symbol string, lookbackYears int) (*model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		return m.Series, nil
	}
	return GenerateMockSeries(symbol, lookbackYears*252, 100), nil
}

// GenerateMockSeries builds a gently trending weekday-only series
// ending today, for tests and offline development.
func GenerateMockSeries(symbol string, days int, basePrice float64) *model.PriceSeries {
	points := make([]model.PricePoint, 0, days)
	day := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -days*7/5)
	i := 0
	for len(points) < days {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			p := basePrice * (1 + 0.0004*float64(i) + 0.01*math.Sin(float64(i)/9))
			points = append(points, model.PricePoint{Date: day, Price: p})
			i++
		}
		day = day.AddDate(0, 0, 1)
	}
	return &model.PriceSeries{Symbol: symbol, Points: points, FetchedAt: time.Now()}
}
