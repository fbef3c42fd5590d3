package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/BBbandit/Dayil-Review/internal/domain"
)

// ParquetStore archives the raw per-day limit-up pool snapshots as Parquet
// files, one file per trading date. The SQLite store holds the queryable
// rows; the archive keeps the provider captures for reprocessing.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// LimitUpRecord is the Parquet schema for an archived limit-up pool row.
type LimitUpRecord struct {
	Date           string  `parquet:"date"`
	Code           string  `parquet:"code"`
	Name           string  `parquet:"name"`
	PctChange      float64 `parquet:"pct_change"`
	Price          float64 `parquet:"price"`
	Amount         float64 `parquet:"amount"`
	FloatMarketCap float64 `parquet:"float_market_cap"`
	TotalMarketCap float64 `parquet:"total_market_cap"`
	TurnoverRate   float64 `parquet:"turnover_rate"`
	SealedFund     float64 `parquet:"sealed_fund"`
	FirstLimitTime string  `parquet:"first_limit_time"`
	LastLimitTime  string  `parquet:"last_limit_time"`
	BreakCount     int32   `parquet:"break_count"`
	LimitUpStat    string  `parquet:"limit_up_stat"`
	Streak         int32   `parquet:"streak"`
	Industry       string  `parquet:"industry"`
	Themes         string  `parquet:"themes"` // comma-joined
	OneWordBoard   bool    `parquet:"one_word_board"`
}

// WriteLimitUpSnapshot archives the limit-up pool for one date, replacing any
// existing snapshot for that date.
func (s *ParquetStore) WriteLimitUpSnapshot(_ context.Context, date string, stocks []domain.LimitUpStock) error {
	records := make([]LimitUpRecord, 0, len(stocks))
	for _, st := range stocks {
		records = append(records, LimitUpRecord{
			Date:           st.Date,
			Code:           st.Code,
			Name:           st.Name,
			PctChange:      st.PctChange,
			Price:          st.Price,
			Amount:         st.Amount,
			FloatMarketCap: st.FloatMarketCap,
			TotalMarketCap: st.TotalMarketCap,
			TurnoverRate:   st.TurnoverRate,
			SealedFund:     st.SealedFund,
			FirstLimitTime: st.FirstLimitTime,
			LastLimitTime:  st.LastLimitTime,
			BreakCount:     int32(st.BreakCount),
			LimitUpStat:    st.LimitUpStat,
			Streak:         int32(st.Streak),
			Industry:       st.Industry,
			Themes:         strings.Join(st.Themes, ","),
			OneWordBoard:   st.OneWordBoard,
		})
	}

	path := s.snapshotPath(date)
	if err := writeParquetFile(path, records); err != nil {
		return fmt.Errorf("writing limit-up snapshot for %s: %w", date, err)
	}
	return nil
}

// ReadLimitUpSnapshot reads the archived limit-up pool for one date. A
// missing snapshot returns an empty slice, not an error.
func (s *ParquetStore) ReadLimitUpSnapshot(_ context.Context, date string) ([]domain.LimitUpStock, error) {
	path := s.snapshotPath(date)
	records, err := readParquetFile[LimitUpRecord](path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading limit-up snapshot for %s: %w", date, err)
	}

	stocks := make([]domain.LimitUpStock, 0, len(records))
	for _, r := range records {
		var themes []string
		if r.Themes != "" {
			themes = strings.Split(r.Themes, ",")
		}
		stocks = append(stocks, domain.LimitUpStock{
			Date:           r.Date,
			Code:           r.Code,
			Name:           r.Name,
			PctChange:      r.PctChange,
			Price:          r.Price,
			Amount:         r.Amount,
			FloatMarketCap: r.FloatMarketCap,
			TotalMarketCap: r.TotalMarketCap,
			TurnoverRate:   r.TurnoverRate,
			SealedFund:     r.SealedFund,
			FirstLimitTime: r.FirstLimitTime,
			LastLimitTime:  r.LastLimitTime,
			BreakCount:     int(r.BreakCount),
			LimitUpStat:    r.LimitUpStat,
			Streak:         int(r.Streak),
			Industry:       r.Industry,
			Themes:         themes,
			OneWordBoard:   r.OneWordBoard,
		})
	}
	return stocks, nil
}

// SnapshotDates lists the dates with an archived snapshot, ascending.
func (s *ParquetStore) SnapshotDates() ([]string, error) {
	dir := filepath.Join(s.DataDir, "limitup")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".parquet") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".parquet"))
	}
	sort.Strings(dates)
	return dates, nil
}

// snapshotPath returns the archive path for one date.
// Layout: <dataDir>/limitup/<YYYYMMDD>.parquet
func (s *ParquetStore) snapshotPath(date string) string {
	return filepath.Join(s.DataDir, "limitup", date+".parquet")
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
