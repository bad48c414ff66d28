package model

import "time"

// ForecastPoint is one calendar day of model output.
// Lower <= Estimate <= Upper always holds.
type ForecastPoint struct {
	Date     time.Time
	Estimate float64
	Lower    float64
	Upper    float64
}

// Forecast is the continuous per-calendar-day model output, covering
// both the fitted history and the future horizon. LastObserved and
// RowsFitted describe the observations the model was fit on, carried
// along so that a cache hit can feed the horizon extractor and the run
// recorder without refetching.
type Forecast struct {
	Symbol       string
	Points       []ForecastPoint
	LastObserved PricePoint
	RowsFitted   int
	FittedAt     time.Time
}

// Len returns the number of forecast rows.
func (f *Forecast) Len() int { return len(f.Points) }

// Horizon is a fixed forward offset at which a forecast value is reported.
type Horizon struct {
	Label string
	Days  int
}

// Horizons is the fixed report table: 1 month through 5 years.
var Horizons = []Horizon{
	{Label: "1mo", Days: 30},
	{Label: "3mo", Days: 90},
	{Label: "6mo", Days: 180},
	{Label: "1y", Days: 365},
	{Label: "3y", Days: 1095},
	{Label: "5y", Days: 1825},
}

// MaxHorizonDays is the longest horizon in the table; every fit must
// extend at least this far beyond the last observation.
const MaxHorizonDays = 1825

// HorizonResult is the summary derived for one horizon from one
// ForecastPoint plus the last observed price.
type HorizonResult struct {
	Label      string
	Days       int
	TargetDate time.Time
	Predicted  float64
	Lower      float64
	Upper      float64
	AbsChange  float64
	PctChange  float64
}
