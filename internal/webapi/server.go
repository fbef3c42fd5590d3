// Package webapi serves the daily review data over HTTP JSON: trading dates,
// the resolved reference date, the limit-up pool, market sentiment, and the
// top theme and industry boards.
package webapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/store"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

// Server serves the review API.
type Server struct {
	limitups   store.LimitUpStore
	sentiments store.SentimentStore
	boards     store.BoardStore
	clock      *tradecal.Clock
	src        tradecal.CalendarSource
	log        *slog.Logger
	cache      sync.Map // date → *LimitUpResponse, finalized dates only
	cacheSize  atomic.Int64
	cacheMax   int64
	now        func() time.Time
}

// defaultCacheMax bounds the finalized-date cache; past it the whole cache is
// dropped and rebuilt on demand.
const defaultCacheMax = 512

// NewServer creates a Server over the given stores and trading clock.
func NewServer(
	limitups store.LimitUpStore,
	sentiments store.SentimentStore,
	boards store.BoardStore,
	clock *tradecal.Clock,
	src tradecal.CalendarSource,
	log *slog.Logger,
) *Server {
	return &Server{
		limitups:   limitups,
		sentiments: sentiments,
		boards:     boards,
		clock:      clock,
		src:        src,
		log:        log,
		cacheMax:   defaultCacheMax,
		now:        tradecal.MarketNow,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dates", s.handleDates)
	mux.HandleFunc("GET /api/reference-date", s.handleReferenceDate)
	mux.HandleFunc("GET /api/limitup", s.handleLimitUp)
	mux.HandleFunc("GET /api/sentiment", s.handleSentiment)
	mux.HandleFunc("GET /api/themes", s.boardHandler("concept"))
	mux.HandleFunc("GET /api/industries", s.boardHandler("industry"))
	return corsMiddleware(mux)
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.limitups.LimitUpDates(r.Context())
	if err != nil {
		s.log.Error("listing dates", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, DatesResponse{Dates: dates})
}

func (s *Server) handleReferenceDate(w http.ResponseWriter, r *http.Request) {
	refDate, err := s.clock.ReferenceDate(s.now())
	if errors.Is(err, tradecal.ErrDateNotFound) {
		http.Error(w, "no reference trading date available", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, ReferenceDateResponse{
		Date:     string(refDate),
		Degraded: s.src.Calendar().Degraded,
	})
}

func (s *Server) handleLimitUp(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	refDate, refErr := s.clock.ReferenceDate(s.now())
	if date == "" {
		if refErr != nil {
			http.Error(w, "no dates available", http.StatusNotFound)
			return
		}
		date = string(refDate)
	} else {
		d, err := tradecal.ParseDate(date)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		date = string(d)
	}

	if cached, ok := s.cache.Load(date); ok {
		writeJSON(w, cached.(*LimitUpResponse))
		return
	}

	stocks, err := s.limitups.LimitUpStocks(r.Context(), date)
	if err != nil {
		s.log.Error("reading limit-up pool", "date", date, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := &LimitUpResponse{Date: date, Stocks: make([]LimitUpEntry, len(stocks))}
	for i, stock := range stocks {
		resp.Stocks[i] = toLimitUpEntry(stock)
	}

	// Only finalized dates are cached: the reference date's pool can still
	// change intraday.
	if refErr == nil && date < string(refDate) {
		if s.cacheSize.Add(1) > s.cacheMax {
			s.cache.Clear()
			s.cacheSize.Store(1)
		}
		s.cache.Store(date, resp)
	}
	writeJSON(w, resp)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 1 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		if n > 250 {
			n = 250
		}
		days = n
	}

	refDate, err := s.clock.ReferenceDate(s.now())
	if errors.Is(err, tradecal.ErrDateNotFound) {
		writeJSON(w, SentimentResponse{Days: []SentimentDay{}})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	end, err := refDate.Time(time.UTC)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// Twice the window in calendar days comfortably covers the trading days.
	start := tradecal.DateOf(end.AddDate(0, 0, -days*2))

	rows, err := s.sentiments.SentimentRange(r.Context(), string(start), string(refDate))
	if err != nil {
		s.log.Error("reading sentiment range", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(rows) > days {
		rows = rows[len(rows)-days:]
	}

	resp := SentimentResponse{Days: make([]SentimentDay, len(rows))}
	for i, row := range rows {
		resp.Days[i] = toSentimentDay(row)
	}
	writeJSON(w, resp)
}

func (s *Server) boardHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			refDate, err := s.clock.ReferenceDate(s.now())
			if err != nil {
				http.Error(w, "no dates available", http.StatusNotFound)
				return
			}
			date = string(refDate)
		}

		limit := 20
		if l := r.URL.Query().Get("limit"); l != "" {
			n, err := strconv.Atoi(l)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			if n > 100 {
				n = 100
			}
			limit = n
		}

		boards, err := s.boards.TopBoards(r.Context(), kind, date, limit)
		if err != nil {
			s.log.Error("reading boards", "kind", kind, "date", date, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		resp := BoardsResponse{Date: date, Kind: kind, Boards: make([]BoardEntry, len(boards))}
		for i, b := range boards {
			resp.Boards[i] = toBoardEntry(b)
		}
		writeJSON(w, resp)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing JSON response", "error", err)
	}
}
