package recorder

import (
	"time"

	"StockSeer/internal/model"
)

// RunRecord holds everything persisted about one completed forecast run.
type RunRecord struct {
	RunID         string
	Symbol        string
	LookbackYears int
	RowsFitted    int
	CacheHit      bool
	LastObserved  model.PricePoint
	Horizons      []model.HorizonResult
	RanAt         time.Time
}

// Recorder persists completed forecast runs for later analysis. It is
// an audit log outside the pipeline's correctness contract: a failed
// write is logged and ignored, never surfaced as a pipeline error.
type Recorder interface {
	RecordRun(run *RunRecord) error
	Close() error
}
