// review-render writes the static HTML review page for a trading date.
//
// Usage: review-render [YYYYMMDD]
//
// Without an argument it renders the resolved reference date.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/config"
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

	sqlite, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer sqlite.Close()

	var date tradecal.Date
	if len(os.Args) > 1 {
		date, err = tradecal.ParseDate(os.Args[1])
		if err != nil {
			log.Fatalf("invalid date %q: %v", os.Args[1], err)
		}
	} else {
		date, err = resolveReferenceDate(ctx, cfg, logger)
		if err != nil {
			log.Fatalf("resolving reference date: %v", err)
		}
	}

	renderer, err := render.NewRenderer(sqlite, sqlite, sqlite, cfg.Storage.OutputDir, logger)
	if err != nil {
		log.Fatalf("building renderer: %v", err)
	}

	path, err := renderer.Render(ctx, date)
	if err != nil {
		log.Fatalf("rendering %s: %v", date, err)
	}
	fmt.Println(path)
}

func resolveReferenceDate(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tradecal.Date, error) {
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
		return "", err
	}

	clock, err := tradecal.NewClock(calStore, tradecal.DefaultSchedule)
	if err != nil {
		return "", err
	}
	return clock.ReferenceDate(tradecal.MarketNow())
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
