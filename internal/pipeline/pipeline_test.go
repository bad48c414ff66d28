package pipeline

import (
	"context"
	"testing"
	"time"

	"StockSeer/internal/cache"
	"StockSeer/internal/forecast"
	"StockSeer/internal/marketdata"
	"StockSeer/internal/model"
	"StockSeer/internal/sanitize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(fetcher marketdata.Fetcher) *Runner {
	return NewRunner(fetcher, forecast.NewEngine(forecast.DefaultConfig()), cache.New(time.Hour))
}

func TestRun_EndToEnd(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		Series: marketdata.GenerateMockSeries("AAPL", 600, 150),
	}
	runner := newTestRunner(fetcher)

	res, err := runner.Run(context.Background(), "AAPL", 5)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, 5, res.LookbackYears)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 600, res.RowsFitted)
	require.Len(t, res.Horizons, len(model.Horizons))
	assert.Equal(t, res.Forecast.LastObserved, res.LastObserved)

	for _, h := range res.Horizons {
		assert.True(t, h.TargetDate.After(res.LastObserved.Date))
		assert.LessOrEqual(t, h.Lower, h.Predicted)
		assert.LessOrEqual(t, h.Predicted, h.Upper)

		// Horizon targets routinely land on weekends; a smooth input
		// must never yield a collapsed prediction there.
		assert.Greater(t, h.Predicted, 0.0, "%s target %s", h.Label, h.TargetDate.Format("2006-01-02"))
		assert.Greater(t, h.PctChange, -90.0, "%s target %s", h.Label, h.TargetDate.Format("2006-01-02"))
	}
}

func TestRun_SecondCallHitsCache(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		Series: marketdata.GenerateMockSeries("AAPL", 600, 150),
	}
	runner := newTestRunner(fetcher)
	ctx := context.Background()

	first, err := runner.Run(ctx, "AAPL", 5)
	require.NoError(t, err)
	second, err := runner.Run(ctx, "AAPL", 5)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.Calls, "cache hit must not refetch")
	assert.True(t, second.CacheHit)
	assert.Same(t, first.Forecast, second.Forecast)
	assert.Equal(t, first.RowsFitted, second.RowsFitted, "fit metadata must survive a cache hit")
	assert.Equal(t, 600, second.RowsFitted)

	// A different lookback window is a different cache key.
	_, err = runner.Run(ctx, "AAPL", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.Calls)
}

func TestRun_ValidatesInputs(t *testing.T) {
	runner := newTestRunner(&marketdata.MockFetcher{})

	_, err := runner.Run(context.Background(), "", 5)
	assert.Error(t, err)

	_, err = runner.Run(context.Background(), "AAPL", 0)
	assert.Error(t, err)
}

func TestRun_PropagatesErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		fetcher marketdata.Fetcher
		wantErr error
	}{
		{
			name:    "data unavailable",
			fetcher: &marketdata.MockFetcher{Err: marketdata.ErrDataUnavailable},
			wantErr: marketdata.ErrDataUnavailable,
		},
		{
			name:    "transient fetch",
			fetcher: &marketdata.MockFetcher{Err: marketdata.ErrTransientFetch},
			wantErr: marketdata.ErrTransientFetch,
		},
		{
			name:    "insufficient data",
			fetcher: &marketdata.MockFetcher{Series: marketdata.GenerateMockSeries("AAPL", 10, 150)},
			wantErr: sanitize.ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newTestRunner(tt.fetcher)
			_, err := runner.Run(context.Background(), "AAPL", 5)
			assert.ErrorIs(t, err, tt.wantErr, "error kind must propagate unmodified")
		})
	}
}

func TestRun_FailedComputeNotCached(t *testing.T) {
	fetcher := &marketdata.MockFetcher{Err: marketdata.ErrTransientFetch}
	runner := newTestRunner(fetcher)
	ctx := context.Background()

	_, err := runner.Run(ctx, "AAPL", 5)
	require.ErrorIs(t, err, marketdata.ErrTransientFetch)

	// Upstream recovers; the next run must fetch again rather than see
	// a poisoned cache entry.
	fetcher.Err = nil
	fetcher.Series = marketdata.GenerateMockSeries("AAPL", 600, 150)

	res, err := runner.Run(ctx, "AAPL", 5)
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 2, fetcher.Calls)
}
