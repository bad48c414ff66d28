package forecast

import "math"

const (
	yearlyPeriodDays = 365.25
	weeklyPeriodDays = 7.0
)

// design describes the regression basis of one fit: the time scale it
// was built against and the changepoint locations, so that future rows
// expand to the same columns as the training rows.
type design struct {
	cfg          Config
	timeScale    float64   // days covered by the training history
	changepoints []float64 // in days since the first observation
}

// newDesign places cfg.Changepoints potential changepoints uniformly
// over the first cfg.ChangepointRange fraction of the history.
func newDesign(cfg Config, timeScale float64) *design {
	span := timeScale * cfg.ChangepointRange
	cps := make([]float64, 0, cfg.Changepoints)
	for j := 1; j <= cfg.Changepoints; j++ {
		cps = append(cps, span*float64(j)/float64(cfg.Changepoints+1))
	}
	return &design{cfg: cfg, timeScale: timeScale, changepoints: cps}
}

// cols returns the number of regression columns.
func (d *design) cols() int {
	n := 2 + len(d.changepoints) // offset, base slope, per-changepoint slope shifts
	if d.cfg.YearlySeasonality {
		n += 2 * d.cfg.YearlyOrder
	}
	if d.cfg.WeeklySeasonality {
		n += 2 * d.cfg.WeeklyOrder
	}
	return n
}

// row expands a time offset (days since first observation) into the
// regression basis: piecewise-linear trend plus Fourier seasonality.
// The weekly terms are only constrained at day-of-week phases present
// in the training rows, so callers must not evaluate the basis at
// phases the history never samples.
func (d *design) row(t float64) []float64 {
	out := make([]float64, 0, d.cols())

	ts := t / d.timeScale
	out = append(out, 1, ts)
	for _, cp := range d.changepoints {
		if t > cp {
			out = append(out, (t-cp)/d.timeScale)
		} else {
			out = append(out, 0)
		}
	}

	if d.cfg.YearlySeasonality {
		out = appendFourier(out, t, yearlyPeriodDays, d.cfg.YearlyOrder)
	}
	if d.cfg.WeeklySeasonality {
		out = appendFourier(out, t, weeklyPeriodDays, d.cfg.WeeklyOrder)
	}
	return out
}

// penalties returns the per-column ridge weights (inverse prior
// variance): weak on the base trend, the changepoint prior on slope
// shifts, the seasonality prior on Fourier terms.
func (d *design) penalties(changepointPrior float64) []float64 {
	out := make([]float64, 0, d.cols())
	out = append(out, 1/(trendPrior*trendPrior), 1/(trendPrior*trendPrior))
	for range d.changepoints {
		out = append(out, 1/(changepointPrior*changepointPrior))
	}
	seasonal := 1 / (d.cfg.SeasonalityPrior * d.cfg.SeasonalityPrior)
	if d.cfg.YearlySeasonality {
		for i := 0; i < 2*d.cfg.YearlyOrder; i++ {
			out = append(out, seasonal)
		}
	}
	if d.cfg.WeeklySeasonality {
		for i := 0; i < 2*d.cfg.WeeklyOrder; i++ {
			out = append(out, seasonal)
		}
	}
	return out
}

func appendFourier(out []float64, t, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		angle := 2 * math.Pi * float64(k) * t / period
		out = append(out, math.Sin(angle), math.Cos(angle))
	}
	return out
}
