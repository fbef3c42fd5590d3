// Package gather implements the daily data synchronization jobs. Each
// gatherer resolves the authoritative reference trading date through the
// calendar clock, fetches from its upstream endpoint, and persists the
// result. A cycle with no resolvable reference date is skipped, not failed.
package gather

import (
	"context"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

// Gatherer is the interface for all data gathering jobs.
type Gatherer interface {
	// Name returns the gatherer identifier.
	Name() string
	// Run performs one gathering cycle.
	Run(ctx context.Context) error
}

// LimitUpFetcher fetches the limit-up pool for a trading date.
type LimitUpFetcher interface {
	FetchLimitUpPool(ctx context.Context, date tradecal.Date) ([]domain.LimitUpStock, error)
}

// BreadthFetcher fetches the market advance/decline summary.
type BreadthFetcher interface {
	FetchMarketBreadth(ctx context.Context, date tradecal.Date) (domain.MarketSentiment, error)
}

// BoardFetcher fetches sector board performance.
type BoardFetcher interface {
	FetchBoards(ctx context.Context, kind provider.BoardKind, date tradecal.Date) ([]domain.BoardDaily, error)
}

// nowFunc returns the current wall-clock time; injectable for tests.
type nowFunc func() time.Time
