// Package scheduler drives watch mode: cron-triggered re-forecasts of
// the configured watchlist, recorded and optionally pushed to Telegram.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockSeer/internal/notifier"
	"StockSeer/internal/pipeline"
	"StockSeer/internal/recorder"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler re-forecasts each watchlist symbol on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *pipeline.Runner
	Recorder recorder.Recorder
	Notifier *notifier.TelegramNotifier // nil when Telegram is not configured
	Ctx      context.Context

	symbols       []string
	lookbackYears int
}

// NewScheduler creates a Scheduler.
func NewScheduler(ctx context.Context, runner *pipeline.Runner, rec recorder.Recorder, tn *notifier.TelegramNotifier, symbols []string, lookbackYears int) *Scheduler {
	return &Scheduler{
		Cron:          cron.New(cron.WithSeconds()),
		Runner:        runner,
		Recorder:      rec,
		Notifier:      tn,
		Ctx:           ctx,
		symbols:       symbols,
		lookbackYears: lookbackYears,
	}
}

// Register registers the refresh task on the given cron expression.
func (s *Scheduler) Register(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.refreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Printf("[INFO] scheduler started, watching %d symbols", len(s.symbols))
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshAll()
}

// refreshAll runs one pipeline per watchlist symbol. A failing symbol
// is logged and skipped; it never blocks the rest of the watchlist, and
// transient fetch errors are simply retried on the next tick.
func (s *Scheduler) refreshAll() {
	log.Println("[INFO] running watchlist refresh")
	for _, symbol := range s.symbols {
		res, err := s.Runner.Run(s.Ctx, symbol, s.lookbackYears)
		if err != nil {
			log.Printf("[ERROR] refresh %s: %v", symbol, err)
			continue
		}

		if err := s.Recorder.RecordRun(&recorder.RunRecord{
			RunID:         uuid.NewString(),
			Symbol:        res.Symbol,
			LookbackYears: res.LookbackYears,
			RowsFitted:    res.RowsFitted,
			CacheHit:      res.CacheHit,
			LastObserved:  res.LastObserved,
			Horizons:      res.Horizons,
			RanAt:         time.Now(),
		}); err != nil {
			log.Printf("[ERROR] record run %s: %v", symbol, err)
		}

		if s.Notifier != nil {
			report := notifier.FormatForecastReport(res)
			if err := s.Notifier.SendWithRetry(s.Ctx, report, 3); err != nil {
				log.Printf("[ERROR] send notification for %s: %v", symbol, err)
			}
		}
	}
}
