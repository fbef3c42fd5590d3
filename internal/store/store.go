// Package store defines storage interfaces for persisting and retrieving the
// daily review data: limit-up pool rows, market sentiment, and sector boards.
package store

import (
	"context"

	"github.com/BBbandit/Dayil-Review/internal/domain"
)

// LimitUpStore persists and retrieves limit-up pool rows.
type LimitUpStore interface {
	// SaveLimitUpStocks upserts a batch of limit-up rows, keyed by (date, code).
	SaveLimitUpStocks(ctx context.Context, stocks []domain.LimitUpStock) error

	// LimitUpStocks returns the limit-up pool for one trading date, ordered by
	// streak descending then first seal time.
	LimitUpStocks(ctx context.Context, date string) ([]domain.LimitUpStock, error)

	// LimitUpDates returns the distinct dates with limit-up data, ascending.
	LimitUpDates(ctx context.Context) ([]string, error)
}

// SentimentStore persists and retrieves market sentiment rows.
type SentimentStore interface {
	// SaveSentiment upserts one sentiment row, keyed by date.
	SaveSentiment(ctx context.Context, s domain.MarketSentiment) error

	// SentimentRange returns sentiment rows in [start, end], ascending by date.
	SentimentRange(ctx context.Context, start, end string) ([]domain.MarketSentiment, error)
}

// BoardStore persists and retrieves sector board rows.
type BoardStore interface {
	// SaveBoards upserts a batch of board rows, keyed by (date, kind, code).
	SaveBoards(ctx context.Context, kind string, boards []domain.BoardDaily) error

	// TopBoards returns the best performing boards of the given kind for one
	// date, ordered by percent change descending, up to limit rows.
	TopBoards(ctx context.Context, kind, date string, limit int) ([]domain.BoardDaily, error)
}
