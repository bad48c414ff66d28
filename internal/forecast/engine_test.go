package forecast

import (
	"testing"
	"time"

	"StockSeer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekdaySeries builds n trading-day observations ending in the past,
// with prices produced by f(tradingDayIndex).
func weekdaySeries(n int, f func(i int) float64) *model.PriceSeries {
	points := make([]model.PricePoint, 0, n)
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	for len(points) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			points = append(points, model.PricePoint{Date: day, Price: f(i)})
			i++
		}
		day = day.AddDate(0, 0, 1)
	}
	return &model.PriceSeries{Symbol: "TEST", Points: points}
}

func TestFit_OutputShapeAndInvariants(t *testing.T) {
	series := weekdaySeries(600, func(i int) float64 { return 100 + 0.05*float64(i) })
	engine := NewEngine(DefaultConfig())

	fc, err := engine.Fit(series, model.MaxHorizonDays)
	require.NoError(t, err)

	last := series.Last()
	assert.Equal(t, "TEST", fc.Symbol)
	assert.Equal(t, last, fc.LastObserved)

	// Continuous per calendar day, from the first observation through at
	// least lastDate + horizon.
	require.NotEmpty(t, fc.Points)
	assert.Equal(t, series.Points[0].Date, fc.Points[0].Date)
	wantEnd := last.Date.AddDate(0, 0, model.MaxHorizonDays)
	assert.False(t, fc.Points[len(fc.Points)-1].Date.Before(wantEnd),
		"forecast must extend %d days past the last observation", model.MaxHorizonDays)

	for i, p := range fc.Points {
		if i > 0 {
			assert.Equal(t, 24*time.Hour, p.Date.Sub(fc.Points[i-1].Date),
				"rows must be consecutive calendar days at %d", i)
		}
		assert.LessOrEqual(t, p.Lower, p.Estimate, "lower <= estimate at %s", p.Date)
		assert.LessOrEqual(t, p.Estimate, p.Upper, "estimate <= upper at %s", p.Date)
		assert.GreaterOrEqual(t, p.Lower, 0.0, "prices never go negative")
	}
}

func TestFit_TracksSmoothTrend(t *testing.T) {
	series := weekdaySeries(600, func(i int) float64 { return 100 + 0.05*float64(i) })
	engine := NewEngine(DefaultConfig())

	fc, err := engine.Fit(series, model.MaxHorizonDays)
	require.NoError(t, err)

	// The in-sample estimate at the last observed date should sit close
	// to the actual close, and the extrapolated trend should keep rising
	// for a steadily rising series.
	last := series.Last()
	var atLast model.ForecastPoint
	for _, p := range fc.Points {
		if p.Date.Equal(last.Date) {
			atLast = p
			break
		}
	}
	require.False(t, atLast.Date.IsZero())
	assert.InEpsilon(t, last.Price, atLast.Estimate, 0.05)

	end := fc.Points[len(fc.Points)-1]
	assert.Greater(t, end.Estimate, atLast.Estimate, "rising trend should extrapolate upward")
}

func TestFit_WeekendRowsBridgeWeekdayNeighbors(t *testing.T) {
	series := weekdaySeries(1260, func(i int) float64 { return 150 + 0.07*float64(i) })
	fc, err := NewEngine(DefaultConfig()).Fit(series, model.MaxHorizonDays)
	require.NoError(t, err)

	// Weekday-only history leaves Saturday and Sunday unconstrained in
	// the weekly basis; those rows must be bridged from the adjacent
	// weekdays, never allowed to collapse toward zero.
	checked := 0
	for i := 1; i < len(fc.Points)-2; i++ {
		p := fc.Points[i]
		if p.Date.Weekday() != time.Saturday {
			continue
		}
		fri, sat, sun, mon := fc.Points[i-1], p, fc.Points[i+1], fc.Points[i+2]
		lo := min(fri.Estimate, mon.Estimate) - 0.01
		hi := max(fri.Estimate, mon.Estimate) + 0.01
		for _, wk := range []model.ForecastPoint{sat, sun} {
			assert.Greater(t, wk.Estimate, 0.0, "estimate at %s", wk.Date)
			assert.GreaterOrEqual(t, wk.Estimate, lo, "estimate at %s below Friday/Monday", wk.Date)
			assert.LessOrEqual(t, wk.Estimate, hi, "estimate at %s above Friday/Monday", wk.Date)
			assert.Greater(t, wk.Lower, 0.0, "lower band at %s", wk.Date)
		}
		checked++
	}
	require.Greater(t, checked, 250, "forecast must span many weekends")
}

func TestFit_UncertaintyWidensWithHorizon(t *testing.T) {
	series := weekdaySeries(600, func(i int) float64 { return 100 + 0.05*float64(i) })
	fc, err := NewEngine(DefaultConfig()).Fit(series, model.MaxHorizonDays)
	require.NoError(t, err)

	width := func(p model.ForecastPoint) float64 { return p.Upper - p.Lower }

	lastIdx := -1
	for i, p := range fc.Points {
		if p.Date.Equal(fc.LastObserved.Date) {
			lastIdx = i
			break
		}
	}
	require.GreaterOrEqual(t, lastIdx, 0)

	nearFuture := fc.Points[lastIdx+30]
	farFuture := fc.Points[len(fc.Points)-1]
	assert.Greater(t, width(farFuture), width(nearFuture),
		"bands must widen as the forecast extends")
}

func TestFit_ChangepointPriorByLength(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, changepointPriorShort, cfg.changepointPriorFor(400))
	assert.Equal(t, changepointPriorLong, cfg.changepointPriorFor(501))

	cfg.ChangepointPrior = 0.2
	assert.Equal(t, 0.2, cfg.changepointPriorFor(400))
}

func TestFit_RejectsBadInput(t *testing.T) {
	series := weekdaySeries(100, func(i int) float64 { return 100 })
	engine := NewEngine(DefaultConfig())

	_, err := engine.Fit(series, 0)
	assert.Error(t, err)

	tiny := &model.PriceSeries{
		Symbol: "TEST",
		Points: []model.PricePoint{{Date: time.Now(), Price: 100}},
	}
	_, err = engine.Fit(tiny, 10)
	assert.ErrorIs(t, err, ErrModelFit)

	// Degenerate time range: all observations on one day.
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	flatDay := &model.PriceSeries{
		Symbol: "TEST",
		Points: []model.PricePoint{{Date: d, Price: 100}, {Date: d, Price: 101}},
	}
	_, err = engine.Fit(flatDay, 10)
	assert.ErrorIs(t, err, ErrModelFit)
}

func TestSolveLinear(t *testing.T) {
	a := [][]float64{{2, 1}, {1, 3}}
	b := []float64{5, 10}
	x, err := solveLinear(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x[0], 1e-9)
	assert.InDelta(t, 3.0, x[1], 1e-9)

	singular := [][]float64{{1, 2}, {2, 4}}
	_, err = solveLinear(singular, []float64{1, 2})
	assert.Error(t, err)
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, 1.96, normalQuantile(0.975), 0.01)
	assert.InDelta(t, -1.96, normalQuantile(0.025), 0.01)
	assert.InDelta(t, 0, normalQuantile(0.5), 0.01)
}
