package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

var _ Gatherer = (*SentimentGatherer)(nil)

// SentimentGatherer records the market breadth summary for the reference
// date, enriched with the limit-up count from the already-synced pool.
type SentimentGatherer struct {
	fetcher  BreadthFetcher
	store    store.SentimentStore
	limitups store.LimitUpStore
	clock    *tradecal.Clock
	log      *slog.Logger
	now      nowFunc
}

// NewSentimentGatherer creates a SentimentGatherer.
func NewSentimentGatherer(
	fetcher BreadthFetcher,
	st store.SentimentStore,
	limitups store.LimitUpStore,
	clock *tradecal.Clock,
	log *slog.Logger,
) *SentimentGatherer {
	return &SentimentGatherer{
		fetcher:  fetcher,
		store:    st,
		limitups: limitups,
		clock:    clock,
		log:      log,
		now:      tradecal.MarketNow,
	}
}

// Name returns the gatherer identifier.
func (g *SentimentGatherer) Name() string { return "sentiment" }

// Run performs one sync cycle.
func (g *SentimentGatherer) Run(ctx context.Context) error {
	refDate, err := g.clock.ReferenceDate(g.now())
	if errors.Is(err, tradecal.ErrDateNotFound) {
		g.log.Warn("no reference trading date available, skipping sentiment sync")
		return nil
	}
	if err != nil {
		return err
	}

	sentiment, err := g.fetcher.FetchMarketBreadth(ctx, refDate)
	if err != nil {
		return fmt.Errorf("fetching market breadth: %w", err)
	}

	if g.limitups != nil {
		pool, err := g.limitups.LimitUpStocks(ctx, string(refDate))
		if err != nil {
			return fmt.Errorf("counting limit-up stocks: %w", err)
		}
		sentiment.LimitUps = len(pool)
	}

	if err := g.store.SaveSentiment(ctx, sentiment); err != nil {
		return err
	}
	g.log.Info("market sentiment synced", "date", refDate,
		"advances", sentiment.Advances, "declines", sentiment.Declines,
		"limitUps", sentiment.LimitUps)
	return nil
}
