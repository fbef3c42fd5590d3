// review-sync runs one sync cycle: load the trading calendar, fetch the
// limit-up pool, market breadth, and sector boards for the reference date,
// and persist them.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/config"
	"github.com/BBbandit/Dayil-Review/internal/gather"
	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
	"github.com/BBbandit/Dayil-Review/internal/util"
)

func main() {
	cfg := loadConfig()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := provider.NewClient(provider.Options{
		Timeout:         time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		RateLimitPerMin: cfg.Provider.RateLimitPerMin,
		MaxRetries:      cfg.Provider.MaxRetries,
		UserAgent:       cfg.Provider.UserAgent,
	}, logger)

	calStore := tradecal.NewStore(provider.NewCalendarClient(client), cfg.Calendar.CachePath, logger)
	calStore.Freshness = time.Duration(cfg.Calendar.FreshnessDays) * 24 * time.Hour
	calStore.Lookback = cfg.Calendar.LookbackDays
	if err := calStore.Load(ctx, false); err != nil {
		log.Fatalf("loading trading calendar: %v", err)
	}

	clock, err := tradecal.NewClock(calStore, tradecal.DefaultSchedule)
	if err != nil {
		log.Fatalf("building trading clock: %v", err)
	}

	sqlite, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer sqlite.Close()

	archive := store.NewParquetStore(cfg.Storage.DataDir)
	market := provider.NewMarketClient(client)

	limitup := gather.NewLimitUpGatherer(market, sqlite, archive, clock, calStore, cfg.Sync.Days, logger)
	sentiment := gather.NewSentimentGatherer(market, sqlite, sqlite, clock, logger)
	boards := gather.NewBoardGatherer(market, sqlite, clock, logger)

	if err := gather.RunAll(ctx, logger, limitup, sentiment, boards); err != nil {
		log.Fatalf("sync cycle failed: %v", err)
	}
	logger.Info("sync cycle complete")
}

func loadConfig() *config.Config {
	cfgPath := "config/review.yaml"
	if p := os.Getenv("REVIEW_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if os.IsNotExist(err) {
		return config.Default()
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	return cfg
}
