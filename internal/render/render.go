// Package render produces the static HTML review page for a trading date:
// market sentiment summary, the limit-up pool grouped by streak, and the top
// theme and industry boards.
package render

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

//go:embed templates/review.html
var templateFS embed.FS

// Renderer writes static HTML review pages from the stores.
type Renderer struct {
	limitups   store.LimitUpStore
	sentiments store.SentimentStore
	boards     store.BoardStore
	outputDir  string
	log        *slog.Logger
	tmpl       *template.Template
}

// NewRenderer creates a Renderer writing into outputDir.
func NewRenderer(
	limitups store.LimitUpStore,
	sentiments store.SentimentStore,
	boards store.BoardStore,
	outputDir string,
	log *slog.Logger,
) (*Renderer, error) {
	tmpl, err := template.New("review.html").Funcs(template.FuncMap{
		"yuan":   FormatYuan,
		"pct":    FormatPct,
		"num":    FormatInt,
		"seal":   FormatSealTime,
		"streak": FormatStreak,
	}).ParseFS(templateFS, "templates/review.html")
	if err != nil {
		return nil, fmt.Errorf("parsing review template: %w", err)
	}
	return &Renderer{
		limitups:   limitups,
		sentiments: sentiments,
		boards:     boards,
		outputDir:  outputDir,
		log:        log,
		tmpl:       tmpl,
	}, nil
}

// StreakGroup is the limit-up stocks sharing one consecutive-board count.
type StreakGroup struct {
	Streak int
	Stocks []domain.LimitUpStock
}

// Page is the data rendered into the review template.
type Page struct {
	Date        string
	DateISO     string
	GeneratedAt string
	Sentiment   *domain.MarketSentiment
	AdvancePct  float64
	Groups      []StreakGroup
	Themes      []domain.BoardDaily
	Industries  []domain.BoardDaily
}

// ErrNoData is returned when the date has no synced limit-up data to render.
var ErrNoData = errors.New("render: no data for date")

// Render writes the review page for date to <outputDir>/review-<date>.html
// and refreshes index.html to point at it.
func (r *Renderer) Render(ctx context.Context, date tradecal.Date) (string, error) {
	page, err := r.buildPage(ctx, date)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(r.outputDir, fmt.Sprintf("review-%s.html", date))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.tmpl.Execute(f, page); err != nil {
		f.Close()
		return "", fmt.Errorf("rendering review page: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	// index.html always shows the most recently rendered date.
	index := filepath.Join(r.outputDir, "index.html")
	if err := copyFile(path, index); err != nil {
		r.log.Warn("refreshing index.html", "error", err)
	}

	r.log.Info("review page rendered", "date", date, "path", path, "stocks", countStocks(page.Groups))
	return path, nil
}

func (r *Renderer) buildPage(ctx context.Context, date tradecal.Date) (*Page, error) {
	stocks, err := r.limitups.LimitUpStocks(ctx, string(date))
	if err != nil {
		return nil, fmt.Errorf("reading limit-up pool: %w", err)
	}
	if len(stocks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, date)
	}

	page := &Page{
		Date:        string(date),
		DateISO:     date.ISO(),
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Groups:      groupByStreak(stocks),
	}

	rows, err := r.sentiments.SentimentRange(ctx, string(date), string(date))
	if err != nil {
		return nil, fmt.Errorf("reading sentiment: %w", err)
	}
	if len(rows) == 1 {
		page.Sentiment = &rows[0]
		page.AdvancePct = rows[0].AdvanceRate() * 100
	}

	if page.Themes, err = r.boards.TopBoards(ctx, "concept", string(date), 10); err != nil {
		return nil, fmt.Errorf("reading theme boards: %w", err)
	}
	if page.Industries, err = r.boards.TopBoards(ctx, "industry", string(date), 10); err != nil {
		return nil, fmt.Errorf("reading industry boards: %w", err)
	}
	return page, nil
}

// groupByStreak buckets stocks by consecutive-board count, highest first.
// Stocks inside a group keep the store order (first seal time).
func groupByStreak(stocks []domain.LimitUpStock) []StreakGroup {
	byStreak := make(map[int][]domain.LimitUpStock)
	for _, s := range stocks {
		streak := s.Streak
		if streak < 1 {
			streak = 1
		}
		byStreak[streak] = append(byStreak[streak], s)
	}

	groups := make([]StreakGroup, 0, len(byStreak))
	for streak, ss := range byStreak {
		groups = append(groups, StreakGroup{Streak: streak, Stocks: ss})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Streak > groups[j].Streak })
	return groups
}

func countStocks(groups []StreakGroup) int {
	var n int
	for _, g := range groups {
		n += len(g.Stocks)
	}
	return n
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
