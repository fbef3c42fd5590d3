package tradecal

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Default calendar store parameters, matching the provider's usable history.
const (
	DefaultFreshness = 7 * 24 * time.Hour
	DefaultLookback  = 730 // days of history requested from the provider
)

// Provider supplies trading dates for a requested window.
type Provider interface {
	FetchTradingDates(ctx context.Context, start, end Date) ([]Date, error)
}

// Store owns the calendar snapshot. It loads from a durable JSON cache when
// fresh enough, refetches from the Provider otherwise, and synthesizes a
// weekday calendar when the provider is unavailable. Readers get an immutable
// snapshot via Calendar(); refreshes swap the snapshot atomically.
type Store struct {
	provider  Provider
	cachePath string
	log       *slog.Logger

	// Freshness is the maximum cache age before a refetch; Lookback is the
	// provider window in days. Both default when zero.
	Freshness time.Duration
	Lookback  int

	now func() time.Time // injectable for tests

	mu  sync.Mutex // serializes Load
	cal atomic.Pointer[Calendar]
}

// NewStore creates a Store that caches its calendar at cachePath.
func NewStore(provider Provider, cachePath string, log *slog.Logger) *Store {
	s := &Store{
		provider:  provider,
		cachePath: cachePath,
		log:       log,
		Freshness: DefaultFreshness,
		Lookback:  DefaultLookback,
		now:       time.Now,
	}
	s.cal.Store(NewCalendar(nil, time.Time{}, false))
	return s
}

// Calendar returns the current snapshot. Before the first Load it is empty.
func (s *Store) Calendar() *Calendar {
	return s.cal.Load()
}

// cacheEntry is the on-disk cache format.
type cacheEntry struct {
	Dates     []Date    `json:"dates"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Load populates the calendar snapshot. Unless forceRefresh is set, a cache
// entry younger than Freshness is used as-is. A provider failure is not an
// error: the store falls back to a synthesized weekday calendar and stays
// usable, marked Degraded. The cache is not written on fallback so a later
// Load retries the real fetch.
func (s *Store) Load(ctx context.Context, forceRefresh bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if !forceRefresh {
		if entry, ok := s.readCache(); ok && now.Sub(entry.FetchedAt) < s.Freshness {
			s.cal.Store(NewCalendar(entry.Dates, entry.FetchedAt, false))
			s.log.Info("trading calendar loaded from cache",
				"dates", len(entry.Dates), "fetchedAt", entry.FetchedAt)
			return nil
		}
	}

	end := DateOf(now)
	start := DateOf(now.AddDate(0, 0, -s.Lookback))

	dates, err := s.provider.FetchTradingDates(ctx, start, end)
	if err != nil {
		s.log.Error("trading calendar fetch failed, using weekday fallback",
			"start", start, "end", end, "error", err)
		s.cal.Store(NewCalendar(weekdayDates(start, end), now, true))
		return nil
	}

	normalized := make([]Date, 0, len(dates))
	for _, d := range dates {
		nd, err := ParseDate(string(d))
		if err != nil {
			s.log.Warn("skipping malformed calendar date", "date", d, "error", err)
			continue
		}
		normalized = append(normalized, nd)
	}

	if err := s.writeCache(cacheEntry{Dates: normalized, FetchedAt: now}); err != nil {
		// The in-memory calendar is still good; only the cache write failed.
		s.log.Error("writing trading calendar cache", "error", err)
	}

	s.cal.Store(NewCalendar(normalized, now, false))
	s.log.Info("trading calendar refreshed", "dates", len(normalized), "start", start, "end", end)
	return nil
}

// readCache reads and parses the cache file. Any failure is a cache miss.
func (s *Store) readCache() (cacheEntry, bool) {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading trading calendar cache", "path", s.cachePath, "error", err)
		}
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.log.Warn("corrupt trading calendar cache, refetching", "path", s.cachePath, "error", err)
		return cacheEntry{}, false
	}
	return entry, true
}

// writeCache persists the cache entry with an atomic replace, so concurrent
// refreshes can never leave a torn file behind.
func (s *Store) writeCache(entry cacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0o755); err != nil {
		return err
	}
	tmp := s.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.cachePath)
}

// weekdayDates synthesizes a Monday-Friday calendar over [start, end]. It is
// the degraded fallback when the provider cannot be reached; holidays will be
// wrong, but date navigation keeps working.
func weekdayDates(start, end Date) []Date {
	st, err := start.Time(time.UTC)
	if err != nil {
		return nil
	}
	en, err := end.Time(time.UTC)
	if err != nil {
		return nil
	}

	var dates []Date
	for d := st; !d.After(en); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd >= time.Monday && wd <= time.Friday {
			dates = append(dates, DateOf(d))
		}
	}
	return dates
}
