package cache

import (
	"errors"
	"testing"
	"time"

	"StockSeer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForecast(symbol string) *model.Forecast {
	return &model.Forecast{Symbol: symbol, FittedAt: time.Now()}
}

func TestGetOrCompute_IdempotentWithinTTL(t *testing.T) {
	c := New(time.Hour)
	key := Key{Symbol: "AAPL", LookbackYears: 5}

	calls := 0
	compute := func() (*model.Forecast, error) {
		calls++
		return newForecast("AAPL"), nil
	}

	first, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)
	second, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call within TTL must not recompute")
	assert.Same(t, first, second, "cached result is returned as-is")
}

func TestGetOrCompute_ExpiryTriggersExactlyOneRecompute(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := NewWithClock(time.Hour, clock)
	key := Key{Symbol: "AAPL", LookbackYears: 5}

	calls := 0
	compute := func() (*model.Forecast, error) {
		calls++
		return newForecast("AAPL"), nil
	}

	stale, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)

	fresh, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expiry triggers exactly one new compute")
	assert.NotSame(t, stale, fresh, "old entry is discarded")

	again, err := c.GetOrCompute(key, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Same(t, fresh, again)
}

func TestGetOrCompute_DistinctKeys(t *testing.T) {
	c := New(time.Hour)
	calls := 0
	compute := func() (*model.Forecast, error) {
		calls++
		return newForecast("X"), nil
	}

	_, err := c.GetOrCompute(Key{Symbol: "AAPL", LookbackYears: 5}, compute)
	require.NoError(t, err)
	_, err = c.GetOrCompute(Key{Symbol: "AAPL", LookbackYears: 3}, compute)
	require.NoError(t, err)
	_, err = c.GetOrCompute(Key{Symbol: "MSFT", LookbackYears: 5}, compute)
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, c.Len())
}

func TestGetOrCompute_ErrorNotCached(t *testing.T) {
	c := New(time.Hour)
	key := Key{Symbol: "AAPL", LookbackYears: 5}
	boom := errors.New("upstream down")

	calls := 0
	_, err := c.GetOrCompute(key, func() (*model.Forecast, error) {
		calls++
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, c.Len(), "failed computes leave no entry")

	got, err := c.GetOrCompute(key, func() (*model.Forecast, error) {
		calls++
		return newForecast("AAPL"), nil
	})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, calls)
}

func TestNew_NonPositiveTTLFallsBack(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
