// Package horizon maps the fixed report horizons onto forecast rows and
// derives summary statistics against the last observed price.
package horizon

import (
	"errors"
	"fmt"

	"StockSeer/internal/model"
)

// ErrOutOfRange means the forecast does not extend far enough for a
// requested horizon. The engine's minimum horizon makes this
// unreachable in practice, but it is checked rather than assumed.
var ErrOutOfRange = errors.New("forecast does not cover horizon")

// ExtractSummaries derives one HorizonResult per horizon. For each, the
// target date is the last observed date plus the horizon days; the row
// used is the nearest forecast row at or before the target that lies
// strictly after the last observed date. Rows are unique per day, so
// nearest-at-or-before is deterministic.
func ExtractSummaries(f *model.Forecast, lastObserved model.PricePoint, horizons []model.Horizon) ([]model.HorizonResult, error) {
	if lastObserved.Price == 0 {
		return nil, errors.New("last observed price must be non-zero")
	}

	results := make([]model.HorizonResult, 0, len(horizons))
	for _, h := range horizons {
		target := lastObserved.Date.AddDate(0, 0, h.Days)

		// Nearest-match below only bridges granularity gaps; a forecast
		// that ends before the target is genuinely too short.
		if len(f.Points) == 0 || f.Points[len(f.Points)-1].Date.Before(target) {
			return nil, fmt.Errorf("%w: %s (%d days past %s)",
				ErrOutOfRange, h.Label, h.Days, lastObserved.Date.Format("2006-01-02"))
		}

		idx := -1
		for i, p := range f.Points {
			if p.Date.After(target) {
				break
			}
			if p.Date.After(lastObserved.Date) {
				idx = i
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s (%d days past %s)",
				ErrOutOfRange, h.Label, h.Days, lastObserved.Date.Format("2006-01-02"))
		}

		p := f.Points[idx]
		abs := p.Estimate - lastObserved.Price
		results = append(results, model.HorizonResult{
			Label:      h.Label,
			Days:       h.Days,
			TargetDate: p.Date,
			Predicted:  p.Estimate,
			Lower:      p.Lower,
			Upper:      p.Upper,
			AbsChange:  abs,
			PctChange:  abs / lastObserved.Price * 100,
		})
	}
	return results, nil
}
