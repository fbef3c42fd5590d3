package tradecal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// countingProvider records fetch calls and serves a fixed date list or a
// fixed error.
type countingProvider struct {
	dates []Date
	err   error
	calls int
}

func (p *countingProvider) FetchTradingDates(_ context.Context, _, _ Date) ([]Date, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.dates, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func newTestStore(t *testing.T, provider Provider) *Store {
	t.Helper()
	cachePath := filepath.Join(t.TempDir(), "trade_date_cache.json")
	return NewStore(provider, cachePath, discardLogger())
}

func TestLoadFetchesAndCaches(t *testing.T) {
	provider := &countingProvider{dates: mustDates(t, "20250903", "20250901", "20250902")}
	store := newTestStore(t, provider)

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}

	cal := store.Calendar()
	if cal.Len() != 3 {
		t.Errorf("calendar has %d dates, want 3", cal.Len())
	}
	if cal.Degraded {
		t.Error("calendar marked degraded after successful fetch")
	}
	if !cal.IsTradingDate("20250902") {
		t.Error("fetched date missing from calendar")
	}

	// Fresh cache: a second Load must not hit the provider again.
	if err := store.Load(context.Background(), false); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls after cached Load = %d, want 1", provider.calls)
	}
}

func TestLoadForceRefreshBypassesCache(t *testing.T) {
	provider := &countingProvider{dates: mustDates(t, "20250901")}
	store := newTestStore(t, provider)

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if err := store.Load(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
}

func TestLoadExpiredCacheRefetches(t *testing.T) {
	provider := &countingProvider{dates: mustDates(t, "20250901")}
	store := newTestStore(t, provider)

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	// Move the store's clock past the freshness window.
	base := store.now()
	store.now = func() time.Time { return base.Add(store.Freshness + time.Hour) }

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (cache expired)", provider.calls)
	}
}

func TestLoadProviderFailureFallsBackToWeekdays(t *testing.T) {
	provider := &countingProvider{err: errors.New("connection refused")}
	store := newTestStore(t, provider)
	store.Lookback = 14

	// Fix "now" to a known Friday so the weekday window is deterministic.
	now := time.Date(2025, 9, 5, 16, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatalf("Load must not fail on provider error, got %v", err)
	}

	cal := store.Calendar()
	if !cal.Degraded {
		t.Error("fallback calendar not marked degraded")
	}
	if !cal.IsTradingDate("20250905") { // Friday
		t.Error("fallback calendar missing a weekday")
	}
	if cal.IsTradingDate("20250830") { // Saturday
		t.Error("fallback calendar contains a weekend day")
	}

	// Fallback must not write the cache, so the next Load retries the fetch.
	if _, err := os.Stat(store.cachePath); !os.IsNotExist(err) {
		t.Errorf("cache file written on fallback (stat err = %v)", err)
	}
	if err := store.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (fallback must not cache)", provider.calls)
	}
}

func TestLoadCorruptCacheTreatedAsMiss(t *testing.T) {
	provider := &countingProvider{dates: mustDates(t, "20250901")}
	store := newTestStore(t, provider)

	if err := os.WriteFile(store.cachePath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (corrupt cache is a miss)", provider.calls)
	}
	if !store.Calendar().IsTradingDate("20250901") {
		t.Error("calendar not refreshed after corrupt cache")
	}
}

func TestLoadNormalizesProviderDates(t *testing.T) {
	// Provider returns mixed formats and one malformed entry.
	provider := &countingProvider{dates: []Date{"2025-09-01", "20250902", "garbage"}}
	store := newTestStore(t, provider)

	if err := store.Load(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	cal := store.Calendar()
	if cal.Len() != 2 {
		t.Fatalf("calendar has %d dates, want 2", cal.Len())
	}
	if !cal.IsTradingDate("20250901") || !cal.IsTradingDate("20250902") {
		t.Errorf("normalized dates missing: %v", cal.Dates())
	}

	// The cache holds the normalized forms.
	data, err := os.ReadFile(store.cachePath)
	if err != nil {
		t.Fatal(err)
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatal(err)
	}
	if len(entry.Dates) != 2 || entry.Dates[0] != "20250901" {
		t.Errorf("cache entry dates = %v, want normalized [20250901 20250902]", entry.Dates)
	}
}

func TestCalendarBeforeLoadIsEmpty(t *testing.T) {
	store := newTestStore(t, &countingProvider{})
	cal := store.Calendar()
	if cal == nil {
		t.Fatal("Calendar() returned nil before Load")
	}
	if cal.Len() != 0 {
		t.Errorf("calendar before Load has %d dates, want 0", cal.Len())
	}
}
