// review-server serves the review JSON API over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/config"
	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
	"github.com/BBbandit/Dayil-Review/internal/util"
	"github.com/BBbandit/Dayil-Review/internal/webapi"
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

	srv := webapi.NewServer(sqlite, sqlite, sqlite, clock, calStore, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("review server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down review server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
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
