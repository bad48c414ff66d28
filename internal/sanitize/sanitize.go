package sanitize

import (
	"errors"
	"fmt"
	"math"
	"time"

	"StockSeer/internal/model"
)

// ErrInsufficientData means too few clean rows remain for a reliable
// fit. Terminal for this symbol/window combination.
var ErrInsufficientData = errors.New("insufficient clean data")

const (
	// MinRows is the smallest clean series the model accepts.
	MinRows = 30

	// outlierWindow is the trailing window over which the robust
	// dispersion is measured.
	outlierWindow = 21

	// outlierThreshold is the MAD multiple beyond which a price is
	// treated as a bad print and interpolated over.
	outlierThreshold = 5.0
)

// Sanitize cleans a raw series into a strictly increasing (date, price)
// series suitable for model fitting. Steps, in order: drop NaN and
// non-positive prices, normalize all dates to UTC day boundaries
// collapsing duplicates (keep last), dampen outliers by interpolating
// over spikes beyond outlierThreshold trailing MADs.
func Sanitize(raw *model.PriceSeries) (*model.PriceSeries, error) {
	points := dropInvalid(raw.Points)
	points = normalizeDates(points)

	if len(points) < MinRows {
		return nil, fmt.Errorf("%w: %d rows after cleaning, need %d", ErrInsufficientData, len(points), MinRows)
	}

	dampenOutliers(points)

	return &model.PriceSeries{
		Symbol:    raw.Symbol,
		Points:    points,
		FetchedAt: raw.FetchedAt,
	}, nil
}

// dropInvalid removes rows whose price is NaN, infinite, or non-positive.
// Prices go through a log transform later, so zero and below are as
// unusable as missing values.
func dropInvalid(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// normalizeDates moves every timestamp to its UTC day boundary and
// collapses duplicate days, keeping the last observation. Input is
// date-ordered, so "last wins" is a simple overwrite.
func normalizeDates(points []model.PricePoint) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		d := p.Date.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			out[n-1].Price = p.Price
			continue
		}
		out = append(out, model.PricePoint{Date: day, Price: p.Price})
	}
	return out
}

// dampenOutliers replaces prices deviating more than outlierThreshold
// trailing MADs from the trailing median with a locally interpolated
// value. Replacement rather than removal preserves date continuity.
func dampenOutliers(points []model.PricePoint) {
	n := len(points)
	values := make([]float64, n)
	for i, p := range points {
		values[i] = p.Price
	}

	flagged := make([]bool, n)
	for i := 1; i < n; i++ {
		start := i - outlierWindow
		if start < 0 {
			start = 0
		}
		window := values[start:i]
		if len(window) < 3 {
			continue
		}
		med, err := Median(window)
		if err != nil {
			continue
		}
		mad, err := MAD(window, med)
		if err != nil || mad == 0 {
			continue
		}
		if math.Abs(values[i]-med) > outlierThreshold*mad {
			flagged[i] = true
		}
	}

	for i := 0; i < n; i++ {
		if !flagged[i] {
			continue
		}
		if v, ok := interpolateNeighbors(values, flagged, i); ok {
			points[i].Price = v
		}
	}
}
