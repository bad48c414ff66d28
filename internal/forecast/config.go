package forecast

// Config is the immutable tuning surface of the forecast engine. It is
// fixed at construction time and never exposed to callers of the
// pipeline; the defaults below are the only supported configuration.
type Config struct {
	// Changepoints is the number of potential trend changepoints,
	// placed uniformly over the first ChangepointRange of history.
	Changepoints     int
	ChangepointRange float64

	// ChangepointPrior controls trend flexibility: higher values allow
	// sharper trend reversals. Zero selects automatically by series
	// length: longer histories can estimate changepoints reliably and
	// get the looser prior.
	ChangepointPrior float64

	YearlySeasonality bool
	WeeklySeasonality bool
	YearlyOrder       int // Fourier order of the yearly component
	WeeklyOrder       int // Fourier order of the weekly component
	SeasonalityPrior  float64

	// IntervalWidth is the credible interval mass, e.g. 0.95 spans the
	// 2.5th to 97.5th percentile.
	IntervalWidth float64
}

// Automatic changepoint prior selection: series longer than
// longSeriesRows get the looser prior, short series the tighter one to
// avoid overfitting.
const (
	longSeriesRows        = 500
	changepointPriorLong  = 0.10
	changepointPriorShort = 0.05
)

// trendPrior regularizes the base slope and offset only weakly.
const trendPrior = 5.0

// DefaultConfig returns the fixed production configuration.
func DefaultConfig() Config {
	return Config{
		Changepoints:      25,
		ChangepointRange:  0.8,
		ChangepointPrior:  0, // automatic
		YearlySeasonality: true,
		WeeklySeasonality: true,
		YearlyOrder:       10,
		WeeklyOrder:       3,
		SeasonalityPrior:  10.0,
		IntervalWidth:     0.95,
	}
}

// changepointPriorFor resolves the automatic prior for a series length.
func (c Config) changepointPriorFor(rows int) float64 {
	if c.ChangepointPrior > 0 {
		return c.ChangepointPrior
	}
	if rows > longSeriesRows {
		return changepointPriorLong
	}
	return changepointPriorShort
}
