package sanitize

import (
	"errors"
	"sort"
)

// Median returns the middle value of the given prices.
func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], nil
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

// MAD returns the median absolute deviation around the given center.
// It is the robust dispersion measure used for outlier detection: a
// single spike moves it far less than a standard deviation.
func MAD(values []float64, center float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	devs := make([]float64, len(values))
	for i, v := range values {
		d := v - center
		if d < 0 {
			d = -d
		}
		devs[i] = d
	}
	return Median(devs)
}

// interpolateNeighbors returns the linear interpolation between the
// nearest non-flagged neighbors of index i. Flagged entries are the
// outliers under repair; they never contribute to their own replacement.
func interpolateNeighbors(values []float64, flagged []bool, i int) (float64, bool) {
	lo := i - 1
	for lo >= 0 && flagged[lo] {
		lo--
	}
	hi := i + 1
	for hi < len(values) && flagged[hi] {
		hi++
	}
	switch {
	case lo >= 0 && hi < len(values):
		span := float64(hi - lo)
		frac := float64(i-lo) / span
		return values[lo] + (values[hi]-values[lo])*frac, true
	case lo >= 0:
		return values[lo], true
	case hi < len(values):
		return values[hi], true
	default:
		return 0, false
	}
}
