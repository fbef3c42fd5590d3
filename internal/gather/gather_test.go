package gather

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/provider"
	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

func testCalendar(t *testing.T) *tradecal.Calendar {
	t.Helper()
	var dates []tradecal.Date
	for _, s := range []string{"20250901", "20250902", "20250903", "20250904", "20250905"} {
		d, err := tradecal.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		dates = append(dates, d)
	}
	return tradecal.NewCalendar(dates, time.Now(), false)
}

func testClock(t *testing.T, cal *tradecal.Calendar) *tradecal.Clock {
	t.Helper()
	clock, err := tradecal.NewClock(cal, tradecal.DefaultSchedule)
	if err != nil {
		t.Fatal(err)
	}
	return clock
}

func testSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedNow is Friday 2025-09-05 16:00, post-close: reference date 20250905.
var fixedNow = time.Date(2025, 9, 5, 16, 0, 0, 0, time.UTC)

type fakeLimitUpFetcher struct {
	calls []tradecal.Date
}

func (f *fakeLimitUpFetcher) FetchLimitUpPool(_ context.Context, date tradecal.Date) ([]domain.LimitUpStock, error) {
	f.calls = append(f.calls, date)
	return []domain.LimitUpStock{
		{Date: string(date), Code: "000001", Name: "平安银行", Streak: 2},
	}, nil
}

func TestLimitUpGathererBackfillsMissingDates(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	fetcher := &fakeLimitUpFetcher{}
	ctx := context.Background()

	// 20250903 already synced; it must not be refetched.
	if err := sqlite.SaveLimitUpStocks(ctx, []domain.LimitUpStock{
		{Date: "20250903", Code: "600519", Name: "贵州茅台"},
	}); err != nil {
		t.Fatal(err)
	}

	g := NewLimitUpGatherer(fetcher, sqlite, nil, testClock(t, cal), cal, 3, testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []tradecal.Date{"20250904", "20250905"}
	if len(fetcher.calls) != len(want) {
		t.Fatalf("fetch calls = %v, want %v", fetcher.calls, want)
	}
	for i := range want {
		if fetcher.calls[i] != want[i] {
			t.Errorf("fetch call %d = %s, want %s", i, fetcher.calls[i], want[i])
		}
	}

	dates, err := sqlite.LimitUpDates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 3 {
		t.Errorf("stored dates = %v, want 3 entries", dates)
	}
}

func TestLimitUpGathererResyncsReferenceDate(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	fetcher := &fakeLimitUpFetcher{}
	ctx := context.Background()

	// The reference date is already present but gets refreshed anyway:
	// intraday syncs capture a moving pool.
	if err := sqlite.SaveLimitUpStocks(ctx, []domain.LimitUpStock{
		{Date: "20250905", Code: "600519", Name: "贵州茅台"},
	}); err != nil {
		t.Fatal(err)
	}

	g := NewLimitUpGatherer(fetcher, sqlite, nil, testClock(t, cal), cal, 1, testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0] != "20250905" {
		t.Errorf("fetch calls = %v, want [20250905]", fetcher.calls)
	}
}

func TestLimitUpGathererArchivesSnapshots(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	archive := store.NewParquetStore(t.TempDir())
	fetcher := &fakeLimitUpFetcher{}
	ctx := context.Background()

	g := NewLimitUpGatherer(fetcher, sqlite, archive, testClock(t, cal), cal, 1, testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}

	snap, err := archive.ReadLimitUpSnapshot(ctx, "20250905")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap) != 1 || snap[0].Code != "000001" {
		t.Errorf("archived snapshot = %+v", snap)
	}
}

func TestLimitUpGathererSkipsWithoutReferenceDate(t *testing.T) {
	empty := tradecal.NewCalendar(nil, time.Time{}, false)
	sqlite := testSQLite(t)
	fetcher := &fakeLimitUpFetcher{}

	g := NewLimitUpGatherer(fetcher, sqlite, nil, testClock(t, empty), empty, 5, testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run must skip, not fail: %v", err)
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("fetcher called %d times on empty calendar", len(fetcher.calls))
	}
}

type fakeBreadthFetcher struct{}

func (fakeBreadthFetcher) FetchMarketBreadth(_ context.Context, date tradecal.Date) (domain.MarketSentiment, error) {
	return domain.MarketSentiment{Date: string(date), Advances: 3000, Declines: 2000, Flat: 100}, nil
}

func TestSentimentGathererCountsLimitUps(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	ctx := context.Background()

	if err := sqlite.SaveLimitUpStocks(ctx, []domain.LimitUpStock{
		{Date: "20250905", Code: "000001", Name: "平安银行"},
		{Date: "20250905", Code: "000002", Name: "万科A"},
	}); err != nil {
		t.Fatal(err)
	}

	g := NewSentimentGatherer(fakeBreadthFetcher{}, sqlite, sqlite, testClock(t, cal), testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}

	rows, err := sqlite.SentimentRange(ctx, "20250905", "20250905")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("sentiment rows = %d, want 1", len(rows))
	}
	if rows[0].Advances != 3000 || rows[0].LimitUps != 2 {
		t.Errorf("sentiment = %+v, want advances 3000 limitUps 2", rows[0])
	}
}

type fakeBoardFetcher struct {
	kinds []provider.BoardKind
}

func (f *fakeBoardFetcher) FetchBoards(_ context.Context, kind provider.BoardKind, date tradecal.Date) ([]domain.BoardDaily, error) {
	f.kinds = append(f.kinds, kind)
	return []domain.BoardDaily{
		{Date: string(date), Code: "BK1", Name: string(kind) + "-board", PctChange: 2.0},
	}, nil
}

func TestBoardGathererSyncsBothKinds(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	fetcher := &fakeBoardFetcher{}
	ctx := context.Background()

	g := NewBoardGatherer(fetcher, sqlite, testClock(t, cal), testLogger())
	g.now = func() time.Time { return fixedNow }

	if err := g.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(fetcher.kinds) != 2 {
		t.Fatalf("fetched kinds = %v, want 2", fetcher.kinds)
	}

	concepts, err := sqlite.TopBoards(ctx, "concept", "20250905", 10)
	if err != nil {
		t.Fatal(err)
	}
	industries, err := sqlite.TopBoards(ctx, "industry", "20250905", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(concepts) != 1 || len(industries) != 1 {
		t.Errorf("boards stored: concept=%d industry=%d, want 1 each", len(concepts), len(industries))
	}
}

func TestRunAll(t *testing.T) {
	cal := testCalendar(t)
	sqlite := testSQLite(t)
	limitFetcher := &fakeLimitUpFetcher{}
	boardFetcher := &fakeBoardFetcher{}

	lg := NewLimitUpGatherer(limitFetcher, sqlite, nil, testClock(t, cal), cal, 1, testLogger())
	lg.now = func() time.Time { return fixedNow }
	sg := NewSentimentGatherer(fakeBreadthFetcher{}, sqlite, sqlite, testClock(t, cal), testLogger())
	sg.now = func() time.Time { return fixedNow }
	bg := NewBoardGatherer(boardFetcher, sqlite, testClock(t, cal), testLogger())
	bg.now = func() time.Time { return fixedNow }

	if err := RunAll(context.Background(), testLogger(), lg, sg, bg); err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	// The sentiment row sees the limit-up rows synced in the same cycle.
	rows, err := sqlite.SentimentRange(context.Background(), "20250905", "20250905")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].LimitUps != 1 {
		t.Errorf("sentiment after RunAll = %+v", rows)
	}
}
