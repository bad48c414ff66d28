package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"StockSeer/internal/model"
)

// ErrModelFit means the underlying estimation did not converge to a
// finite solution. Reported as-is, never silently degraded.
var ErrModelFit = errors.New("model fit failed")

// Engine fits an additive trend+seasonality model to a sanitized price
// series: piecewise-linear trend with automatically placed changepoints
// plus yearly and weekly Fourier seasonality, MAP-estimated on
// log-transformed prices via ridge-regularized least squares, with a
// credible interval derived from residual dispersion.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given fixed configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Fit fits the model and extends the forecast horizonDays calendar days
// beyond the last observation. Output is continuous per calendar day,
// interpolating through non-trading gaps. The series must already be
// sanitized: strictly increasing dates, positive prices.
func (e *Engine) Fit(series *model.PriceSeries, horizonDays int) (*model.Forecast, error) {
	if horizonDays < 1 {
		return nil, fmt.Errorf("horizon days must be positive, got %d", horizonDays)
	}
	n := series.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrModelFit, n)
	}

	first := series.Points[0].Date
	last := series.Points[n-1].Date
	timeScale := daysBetween(first, last)
	if timeScale <= 0 {
		return nil, fmt.Errorf("%w: degenerate time range", ErrModelFit)
	}

	// log1p keeps the model stable across price magnitudes and makes
	// the credible interval multiplicative on the price scale.
	times := make([]float64, n)
	ys := make([]float64, n)
	yScale := 0.0
	for i, p := range series.Points {
		times[i] = daysBetween(first, p.Date)
		ys[i] = math.Log1p(p.Price)
		if a := math.Abs(ys[i]); a > yScale {
			yScale = a
		}
	}
	if yScale == 0 {
		yScale = 1
	}
	for i := range ys {
		ys[i] /= yScale
	}

	d := newDesign(e.cfg, timeScale)
	beta, sigma, err := e.estimate(d, times, ys)
	if err != nil {
		return nil, err
	}

	z := normalQuantile((1 + e.cfg.IntervalWidth) / 2)

	// The weekly basis is only identifiable at day-of-week phases the
	// history actually samples; exchange data has no weekend rows, so
	// the model is evaluated on sampled phases only and the remaining
	// calendar days are bridged from their evaluated neighbors.
	var sampled [7]bool
	for _, p := range series.Points {
		sampled[p.Date.Weekday()] = true
	}

	total := int(timeScale) + horizonDays + 1

	// Extend until the final row lands on a sampled phase so every gap
	// has an evaluated right neighbor; trimmed back before returning.
	ext := total
	for !sampled[first.AddDate(0, 0, ext-1).Weekday()] {
		ext++
	}

	ests := make([]float64, ext)
	ses := make([]float64, ext)
	known := make([]bool, ext)
	for i, day := 0, first; i < ext; i, day = i+1, day.AddDate(0, 0, 1) {
		if !sampled[day.Weekday()] {
			continue
		}
		t := daysBetween(first, day)
		ests[i] = dot(d.row(t), beta)
		ses[i] = spreadAt(sigma, t, timeScale)
		known[i] = true
	}
	bridgeGaps(ests, ses, known)

	points := make([]model.ForecastPoint, 0, total)
	for i, day := 0, first; i < total; i, day = i+1, day.AddDate(0, 0, 1) {
		points = append(points, model.ForecastPoint{
			Date:     day,
			Estimate: toPriceScale(ests[i], yScale),
			Lower:    toPriceScale(ests[i]-z*ses[i], yScale),
			Upper:    toPriceScale(ests[i]+z*ses[i], yScale),
		})
	}

	return &model.Forecast{
		Symbol:       series.Symbol,
		Points:       points,
		LastObserved: series.Last(),
		RowsFitted:   n,
		FittedAt:     time.Now(),
	}, nil
}

// spreadAt widens uncertainty past the observed range: the further the
// trend extrapolates, the less the fitted changepoints constrain it.
func spreadAt(sigma, t, timeScale float64) float64 {
	if t > timeScale {
		return sigma * math.Sqrt(1+(t-timeScale)/timeScale)
	}
	return sigma
}

// bridgeGaps linearly interpolates the unevaluated rows between their
// nearest evaluated neighbors, in scaled log space. The first and last
// rows are always evaluated.
func bridgeGaps(ests, ses []float64, known []bool) {
	left := 0
	for i := 1; i < len(known); i++ {
		if !known[i] {
			continue
		}
		for j := left + 1; j < i; j++ {
			frac := float64(j-left) / float64(i-left)
			ests[j] = ests[left] + frac*(ests[i]-ests[left])
			ses[j] = ses[left] + frac*(ses[i]-ses[left])
		}
		left = i
	}
}

// estimate solves the ridge normal equations (XᵀX + D)β = Xᵀy and
// returns the coefficients with the residual standard deviation.
func (e *Engine) estimate(d *design, times, ys []float64) ([]float64, float64, error) {
	cols := d.cols()
	xtx := make([][]float64, cols)
	for i := range xtx {
		xtx[i] = make([]float64, cols)
	}
	xty := make([]float64, cols)

	rows := make([][]float64, len(times))
	for r, t := range times {
		row := d.row(t)
		rows[r] = row
		for i := 0; i < cols; i++ {
			for j := i; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * ys[r]
		}
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	for i, pen := range d.penalties(e.cfg.changepointPriorFor(len(times))) {
		xtx[i][i] += pen
	}

	beta, err := solveLinear(xtx, xty)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrModelFit, err)
	}
	for _, b := range beta {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return nil, 0, fmt.Errorf("%w: non-finite coefficient", ErrModelFit)
		}
	}

	sse := 0.0
	for r := range rows {
		resid := ys[r] - dot(rows[r], beta)
		sse += resid * resid
	}
	sigma := math.Sqrt(sse / float64(len(times)))
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, 0, fmt.Errorf("%w: non-finite residual variance", ErrModelFit)
	}
	return beta, sigma, nil
}

// toPriceScale maps a scaled log-space value back to a non-negative price.
func toPriceScale(v, yScale float64) float64 {
	p := math.Expm1(v * yScale)
	if p < 0 {
		return 0
	}
	return p
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// daysBetween returns the calendar-day offset between two UTC day
// boundaries as a float.
func daysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}
