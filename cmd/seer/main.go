package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockSeer/internal/cache"
	"StockSeer/internal/config"
	"StockSeer/internal/forecast"
	"StockSeer/internal/marketdata"
	"StockSeer/internal/notifier"
	"StockSeer/internal/pipeline"
	"StockSeer/internal/recorder"
	"StockSeer/internal/scheduler"

	"github.com/google/uuid"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	symbol := flag.String("symbol", "", "ticker symbol to forecast")
	lookback := flag.Int("lookback", 0, "lookback window in years (default from config)")
	watch := flag.Bool("watch", false, "run the watchlist scheduler instead of a one-shot forecast")
	flag.Parse()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher marketdata.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = marketdata.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = marketdata.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	engine := forecast.NewEngine(forecast.DefaultConfig())
	runner := pipeline.NewRunner(fetcher, engine, cache.New(cfg.CacheTTL()))

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	years := cfg.Forecast.LookbackYears
	if *lookback > 0 {
		years = *lookback
	}

	if *watch {
		runWatch(cfg, runner, rec, years)
		return
	}

	if *symbol == "" {
		log.Fatal("[FATAL] -symbol is required (or use -watch)")
	}

	res, err := runner.Run(context.Background(), *symbol, years)
	if err != nil {
		log.Fatalf("[FATAL] forecast %s: %v", *symbol, err)
	}

	if err := rec.RecordRun(&recorder.RunRecord{
		RunID:         uuid.NewString(),
		Symbol:        res.Symbol,
		LookbackYears: res.LookbackYears,
		RowsFitted:    res.RowsFitted,
		CacheHit:      res.CacheHit,
		LastObserved:  res.LastObserved,
		Horizons:      res.Horizons,
		RanAt:         time.Now(),
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	fmt.Println(notifier.FormatForecastReport(res))
}

func runWatch(cfg *config.Config, runner *pipeline.Runner, rec recorder.Recorder, years int) {
	if len(cfg.Watch.Symbols) == 0 {
		log.Fatal("[FATAL] watch mode requires watch.symbols in config")
	}

	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, runner, rec, tn, cfg.Watch.Symbols, years)
	if err := sched.Register(cfg.Watch.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing watchlist now")
		go sched.RunNow()
	}

	log.Println("[INFO] StockSeer is watching. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}
