// review-daemon runs the sync cycle on a cron schedule in exchange time,
// rendering the static review page after each successful cycle.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/BBbandit/Dayil-Review/internal/config"
	"github.com/BBbandit/Dayil-Review/internal/gather"
	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/render"
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

	renderer, err := render.NewRenderer(sqlite, sqlite, sqlite, cfg.Storage.OutputDir, logger)
	if err != nil {
		log.Fatalf("building renderer: %v", err)
	}

	cycle := func() {
		// Each cycle refreshes the calendar first; a stale cache is refetched
		// and a degraded calendar retried.
		if err := calStore.Load(ctx, false); err != nil {
			logger.Error("loading trading calendar", "error", err)
			return
		}
		if err := gather.RunAll(ctx, logger, limitup, sentiment, boards); err != nil {
			logger.Error("sync cycle failed", "error", err)
			return
		}
		refDate, err := clock.ReferenceDate(tradecal.MarketNow())
		if err != nil {
			logger.Warn("no reference date to render", "error", err)
			return
		}
		if _, err := renderer.Render(ctx, refDate); err != nil {
			logger.Error("rendering review page", "date", refDate, "error", err)
		}
	}

	c := cron.New(cron.WithLocation(tradecal.MarketLocation()))
	if _, err := c.AddFunc(cfg.Sync.Schedule, cycle); err != nil {
		log.Fatalf("invalid sync schedule %q: %v", cfg.Sync.Schedule, err)
	}

	logger.Info("review daemon starting", "schedule", cfg.Sync.Schedule)
	cycle() // catch up immediately on startup
	c.Start()

	<-ctx.Done()
	logger.Info("shutting down review daemon")
	<-c.Stop().Done()
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
