// Package pipeline wires the end-to-end forecast run:
// fetch → sanitize → fit under the cache, then horizon extraction.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"StockSeer/internal/cache"
	"StockSeer/internal/forecast"
	"StockSeer/internal/horizon"
	"StockSeer/internal/marketdata"
	"StockSeer/internal/model"
	"StockSeer/internal/sanitize"
)

// Result is the complete output of one pipeline run: the continuous
// forecast plus its six horizon summaries. It is the sole contract the
// presentation layer consumes.
type Result struct {
	Symbol        string
	LookbackYears int
	Forecast      *model.Forecast
	Horizons      []model.HorizonResult
	LastObserved  model.PricePoint
	RowsFitted    int
	CacheHit      bool
}

// Runner runs forecast pipelines against injected collaborators. The
// cache is shared, passed in by the caller rather than held as package
// state, so concurrent sessions and tests control their own instances.
type Runner struct {
	Fetcher marketdata.Fetcher
	Engine  *forecast.Engine
	Cache   *cache.Cache
}

// NewRunner creates a Runner.
func NewRunner(fetcher marketdata.Fetcher, engine *forecast.Engine, c *cache.Cache) *Runner {
	return &Runner{Fetcher: fetcher, Engine: engine, Cache: c}
}

// Run executes one end-to-end forecast for symbol. It blocks through
// the network fetch (which honors ctx) and the model fit (which does
// not support cancellation); a run either completes or fails. Every
// error kind propagates unmodified: no fallback values, no degraded
// models.
func (r *Runner) Run(ctx context.Context, symbol string, lookbackYears int) (*Result, error) {
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if lookbackYears < 1 {
		return nil, fmt.Errorf("lookback years must be >= 1, got %d", lookbackYears)
	}

	key := cache.Key{Symbol: symbol, LookbackYears: lookbackYears}
	computed := false

	fc, err := r.Cache.GetOrCompute(key, func() (*model.Forecast, error) {
		computed = true
		raw, err := r.Fetcher.FetchDailyHistory(ctx, symbol, lookbackYears)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		clean, err := sanitize.Sanitize(raw)
		if err != nil {
			return nil, fmt.Errorf("sanitize %s: %w", symbol, err)
		}
		log.Printf("[INFO] fitting %s: %d clean rows over %d years", symbol, clean.Len(), lookbackYears)
		return r.Engine.Fit(clean, model.MaxHorizonDays)
	})
	if err != nil {
		return nil, err
	}

	results, err := horizon.ExtractSummaries(fc, fc.LastObserved, model.Horizons)
	if err != nil {
		return nil, fmt.Errorf("extract horizons for %s: %w", symbol, err)
	}

	return &Result{
		Symbol:        symbol,
		LookbackYears: lookbackYears,
		Forecast:      fc,
		Horizons:      results,
		LastObserved:  fc.LastObserved,
		RowsFitted:    fc.RowsFitted,
		CacheHit:      !computed,
	}, nil
}
