package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

var _ Gatherer = (*LimitUpGatherer)(nil)

// LimitUpGatherer backfills the limit-up pool for the most recent trading
// days up to the resolved reference date. Dates already present in the
// store are not refetched, except the reference date itself, which is
// re-synced because its intraday data may have changed.
type LimitUpGatherer struct {
	fetcher LimitUpFetcher
	store   store.LimitUpStore
	archive *store.ParquetStore
	clock   *tradecal.Clock
	src     tradecal.CalendarSource
	days    int
	log     *slog.Logger
	now     nowFunc
}

// NewLimitUpGatherer creates a LimitUpGatherer covering the given number of
// recent trading days.
func NewLimitUpGatherer(
	fetcher LimitUpFetcher,
	st store.LimitUpStore,
	archive *store.ParquetStore,
	clock *tradecal.Clock,
	src tradecal.CalendarSource,
	days int,
	log *slog.Logger,
) *LimitUpGatherer {
	if days < 1 {
		days = 1
	}
	return &LimitUpGatherer{
		fetcher: fetcher,
		store:   st,
		archive: archive,
		clock:   clock,
		src:     src,
		days:    days,
		log:     log,
		now:     tradecal.MarketNow,
	}
}

// Name returns the gatherer identifier.
func (g *LimitUpGatherer) Name() string { return "limitup" }

// Run performs one sync cycle.
func (g *LimitUpGatherer) Run(ctx context.Context) error {
	now := g.now()

	refDate, err := g.clock.ReferenceDate(now)
	if errors.Is(err, tradecal.ErrDateNotFound) {
		g.log.Warn("no reference trading date available, skipping limit-up sync")
		return nil
	}
	if err != nil {
		return err
	}

	cal := g.src.Calendar()
	if cal.Degraded {
		g.log.Warn("syncing against degraded weekday calendar", "refDate", refDate)
	}

	targets := g.targetDates(cal, refDate)

	existing, err := g.store.LimitUpDates(ctx)
	if err != nil {
		return fmt.Errorf("listing existing limit-up dates: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, d := range existing {
		have[d] = true
	}

	var synced int
	for _, date := range targets {
		// Historical dates already in the store are final.
		if have[string(date)] && date != refDate {
			continue
		}

		stocks, err := g.fetcher.FetchLimitUpPool(ctx, date)
		if err != nil {
			return fmt.Errorf("fetching limit-up pool for %s: %w", date, err)
		}
		if err := g.store.SaveLimitUpStocks(ctx, stocks); err != nil {
			return err
		}
		if g.archive != nil {
			if err := g.archive.WriteLimitUpSnapshot(ctx, string(date), stocks); err != nil {
				// Archive failure does not invalidate the relational sync.
				g.log.Error("archiving limit-up snapshot", "date", date, "error", err)
			}
		}
		g.log.Info("limit-up pool synced", "date", date, "stocks", len(stocks))
		synced++
	}

	g.log.Info("limit-up sync cycle done", "refDate", refDate, "synced", synced, "window", len(targets))
	return nil
}

// targetDates returns the g.days trading dates ending at refDate, ascending.
func (g *LimitUpGatherer) targetDates(cal *tradecal.Calendar, refDate tradecal.Date) []tradecal.Date {
	dates := []tradecal.Date{refDate}
	for n := 1; n < g.days; n++ {
		d, err := cal.PreviousTradingDate(refDate, n)
		if err != nil {
			break // calendar window exhausted; sync what we have
		}
		dates = append([]tradecal.Date{d}, dates...)
	}
	return dates
}
