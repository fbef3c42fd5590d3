package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/BBbandit/Dayil-Review/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface checks.
var _ LimitUpStore = (*SQLiteStore)(nil)
var _ SentimentStore = (*SQLiteStore)(nil)
var _ BoardStore = (*SQLiteStore)(nil)

// SQLiteStore implements LimitUpStore, SentimentStore, and BoardStore backed
// by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS limitup_pool (
	date              TEXT NOT NULL,
	code              TEXT NOT NULL,
	name              TEXT NOT NULL,
	pct_change        REAL,
	price             REAL,
	amount            REAL,
	float_market_cap  REAL,
	total_market_cap  REAL,
	turnover_rate     REAL,
	sealed_fund       REAL,
	first_limit_time  TEXT,
	last_limit_time   TEXT,
	break_count       INTEGER,
	limit_up_stat     TEXT,
	streak            INTEGER,
	industry          TEXT,
	themes            TEXT,
	one_word_board    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (date, code)
);
CREATE INDEX IF NOT EXISTS idx_limitup_date ON limitup_pool(date);
CREATE INDEX IF NOT EXISTS idx_limitup_streak ON limitup_pool(streak);

CREATE TABLE IF NOT EXISTS market_sentiment (
	date        TEXT PRIMARY KEY,
	advances    INTEGER,
	declines    INTEGER,
	flat        INTEGER,
	limit_ups   INTEGER,
	limit_downs INTEGER,
	suspended   INTEGER,
	activity    REAL
);

CREATE TABLE IF NOT EXISTS board_daily (
	date          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	code          TEXT NOT NULL,
	name          TEXT NOT NULL,
	pct_change    REAL,
	market_cap    REAL,
	turnover_rate REAL,
	advances      INTEGER,
	declines      INTEGER,
	leader        TEXT,
	leader_pct    REAL,
	PRIMARY KEY (date, kind, code)
);
CREATE INDEX IF NOT EXISTS idx_board_date_kind ON board_daily(date, kind);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// schema if needed, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL plus a busy timeout: the gatherers write concurrently.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// LimitUpStore implementation
// ---------------------------------------------------------------------------

// SaveLimitUpStocks upserts a batch of limit-up rows inside one transaction.
func (s *SQLiteStore) SaveLimitUpStocks(ctx context.Context, stocks []domain.LimitUpStock) error {
	if len(stocks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO limitup_pool (
			date, code, name, pct_change, price, amount,
			float_market_cap, total_market_cap, turnover_rate, sealed_fund,
			first_limit_time, last_limit_time, break_count, limit_up_stat,
			streak, industry, themes, one_word_board
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range stocks {
		themes, err := json.Marshal(st.Themes)
		if err != nil {
			return fmt.Errorf("encoding themes for %s: %w", st.Code, err)
		}
		if _, err := stmt.ExecContext(ctx,
			st.Date, st.Code, st.Name, st.PctChange, st.Price, st.Amount,
			st.FloatMarketCap, st.TotalMarketCap, st.TurnoverRate, st.SealedFund,
			st.FirstLimitTime, st.LastLimitTime, st.BreakCount, st.LimitUpStat,
			st.Streak, st.Industry, string(themes), boolToInt(st.OneWordBoard),
		); err != nil {
			return fmt.Errorf("upserting limit-up row %s/%s: %w", st.Date, st.Code, err)
		}
	}
	return tx.Commit()
}

// LimitUpStocks returns the limit-up pool for one trading date.
func (s *SQLiteStore) LimitUpStocks(ctx context.Context, date string) ([]domain.LimitUpStock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, code, name, pct_change, price, amount,
		       float_market_cap, total_market_cap, turnover_rate, sealed_fund,
		       first_limit_time, last_limit_time, break_count, limit_up_stat,
		       streak, industry, themes, one_word_board
		FROM limitup_pool
		WHERE date = ?
		ORDER BY streak DESC, first_limit_time ASC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []domain.LimitUpStock
	for rows.Next() {
		var st domain.LimitUpStock
		var themes string
		var oneWord int
		if err := rows.Scan(
			&st.Date, &st.Code, &st.Name, &st.PctChange, &st.Price, &st.Amount,
			&st.FloatMarketCap, &st.TotalMarketCap, &st.TurnoverRate, &st.SealedFund,
			&st.FirstLimitTime, &st.LastLimitTime, &st.BreakCount, &st.LimitUpStat,
			&st.Streak, &st.Industry, &themes, &oneWord,
		); err != nil {
			return nil, err
		}
		if themes != "" {
			if err := json.Unmarshal([]byte(themes), &st.Themes); err != nil {
				return nil, fmt.Errorf("decoding themes for %s: %w", st.Code, err)
			}
		}
		st.OneWordBoard = oneWord != 0
		stocks = append(stocks, st)
	}
	return stocks, rows.Err()
}

// LimitUpDates returns the distinct dates with limit-up data, ascending.
func (s *SQLiteStore) LimitUpDates(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM limitup_pool ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ---------------------------------------------------------------------------
// SentimentStore implementation
// ---------------------------------------------------------------------------

// SaveSentiment upserts one sentiment row.
func (s *SQLiteStore) SaveSentiment(ctx context.Context, m domain.MarketSentiment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO market_sentiment (
			date, advances, declines, flat, limit_ups, limit_downs, suspended, activity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Date, m.Advances, m.Declines, m.Flat,
		m.LimitUps, m.LimitDowns, m.Suspended, m.Activity)
	if err != nil {
		return fmt.Errorf("upserting sentiment for %s: %w", m.Date, err)
	}
	return nil
}

// SentimentRange returns sentiment rows in [start, end], ascending by date.
func (s *SQLiteStore) SentimentRange(ctx context.Context, start, end string) ([]domain.MarketSentiment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, advances, declines, flat, limit_ups, limit_downs, suspended, activity
		FROM market_sentiment
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MarketSentiment
	for rows.Next() {
		var m domain.MarketSentiment
		if err := rows.Scan(&m.Date, &m.Advances, &m.Declines, &m.Flat,
			&m.LimitUps, &m.LimitDowns, &m.Suspended, &m.Activity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// BoardStore implementation
// ---------------------------------------------------------------------------

// SaveBoards upserts a batch of board rows inside one transaction.
func (s *SQLiteStore) SaveBoards(ctx context.Context, kind string, boards []domain.BoardDaily) error {
	if len(boards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO board_daily (
			date, kind, code, name, pct_change, market_cap, turnover_rate,
			advances, declines, leader, leader_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range boards {
		if _, err := stmt.ExecContext(ctx,
			b.Date, kind, b.Code, b.Name, b.PctChange, b.MarketCap, b.TurnoverRate,
			b.Advances, b.Declines, b.Leader, b.LeaderPct,
		); err != nil {
			return fmt.Errorf("upserting board row %s/%s/%s: %w", b.Date, kind, b.Code, err)
		}
	}
	return tx.Commit()
}

// TopBoards returns the best performing boards of the given kind for one date.
func (s *SQLiteStore) TopBoards(ctx context.Context, kind, date string, limit int) ([]domain.BoardDaily, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, code, name, pct_change, market_cap, turnover_rate,
		       advances, declines, leader, leader_pct
		FROM board_daily
		WHERE date = ? AND kind = ?
		ORDER BY pct_change DESC
		LIMIT ?`, date, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BoardDaily
	for rows.Next() {
		var b domain.BoardDaily
		if err := rows.Scan(&b.Date, &b.Code, &b.Name, &b.PctChange, &b.MarketCap,
			&b.TurnoverRate, &b.Advances, &b.Declines, &b.Leader, &b.LeaderPct); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
