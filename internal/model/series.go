package model

import "time"

// PricePoint is a single daily close observation.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// PriceSeries holds the daily close history for one symbol,
// ordered by date. Before sanitization it may contain NaN prices
// and duplicate dates; afterwards it is strictly increasing and clean.
type PriceSeries struct {
	Symbol    string
	Points    []PricePoint
	FetchedAt time.Time
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Last returns the most recent observation. The series must be non-empty.
func (s *PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }
