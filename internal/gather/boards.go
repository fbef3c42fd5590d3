package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

var _ Gatherer = (*BoardGatherer)(nil)

// BoardGatherer records the daily performance of theme and industry boards
// for the reference date.
type BoardGatherer struct {
	fetcher BoardFetcher
	store   store.BoardStore
	clock   *tradecal.Clock
	log     *slog.Logger
	now     nowFunc
}

// NewBoardGatherer creates a BoardGatherer.
func NewBoardGatherer(fetcher BoardFetcher, st store.BoardStore, clock *tradecal.Clock, log *slog.Logger) *BoardGatherer {
	return &BoardGatherer{
		fetcher: fetcher,
		store:   st,
		clock:   clock,
		log:     log,
		now:     tradecal.MarketNow,
	}
}

// Name returns the gatherer identifier.
func (g *BoardGatherer) Name() string { return "boards" }

// Run performs one sync cycle.
func (g *BoardGatherer) Run(ctx context.Context) error {
	refDate, err := g.clock.ReferenceDate(g.now())
	if errors.Is(err, tradecal.ErrDateNotFound) {
		g.log.Warn("no reference trading date available, skipping board sync")
		return nil
	}
	if err != nil {
		return err
	}

	for _, kind := range []provider.BoardKind{provider.BoardConcept, provider.BoardIndustry} {
		boards, err := g.fetcher.FetchBoards(ctx, kind, refDate)
		if err != nil {
			return fmt.Errorf("fetching %s boards: %w", kind, err)
		}
		if err := g.store.SaveBoards(ctx, string(kind), boards); err != nil {
			return err
		}
		g.log.Info("sector boards synced", "date", refDate, "kind", kind, "boards", len(boards))
	}
	return nil
}
