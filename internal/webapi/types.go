package webapi

import "github.com/BBbandit/Dayil-Review/internal/domain"

// DatesResponse lists the trading dates with synced review data.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// ReferenceDateResponse carries the resolved reference trading date.
type ReferenceDateResponse struct {
	Date     string `json:"date"`
	Degraded bool   `json:"degraded"`
}

// LimitUpEntry is one limit-up pool row in API form.
type LimitUpEntry struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	PctChange      float64  `json:"pctChange"`
	Price          float64  `json:"price"`
	Amount         float64  `json:"amount"`
	FloatMarketCap float64  `json:"floatMarketCap"`
	TurnoverRate   float64  `json:"turnoverRate"`
	SealedFund     float64  `json:"sealedFund"`
	FirstLimitTime string   `json:"firstLimitTime"`
	LastLimitTime  string   `json:"lastLimitTime"`
	BreakCount     int      `json:"breakCount"`
	LimitUpStat    string   `json:"limitUpStat"`
	Streak         int      `json:"streak"`
	Industry       string   `json:"industry"`
	Themes         []string `json:"themes"`
	OneWordBoard   bool     `json:"oneWordBoard"`
}

// LimitUpResponse is the limit-up pool for one trading date.
type LimitUpResponse struct {
	Date   string         `json:"date"`
	Stocks []LimitUpEntry `json:"stocks"`
}

// SentimentDay is one day of market breadth in API form.
type SentimentDay struct {
	Date        string  `json:"date"`
	Advances    int     `json:"advances"`
	Declines    int     `json:"declines"`
	Flat        int     `json:"flat"`
	LimitUps    int     `json:"limitUps"`
	LimitDowns  int     `json:"limitDowns"`
	Suspended   int     `json:"suspended"`
	Activity    float64 `json:"activity"`
	AdvanceRate float64 `json:"advanceRate"`
}

// SentimentResponse is a date-ordered run of sentiment days.
type SentimentResponse struct {
	Days []SentimentDay `json:"days"`
}

// BoardEntry is one sector board row in API form.
type BoardEntry struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	PctChange float64 `json:"pctChange"`
	Advances  int     `json:"advances"`
	Declines  int     `json:"declines"`
	Leader    string  `json:"leader"`
	LeaderPct float64 `json:"leaderPct"`
}

// BoardsResponse lists the top boards of one kind for one date.
type BoardsResponse struct {
	Date   string       `json:"date"`
	Kind   string       `json:"kind"`
	Boards []BoardEntry `json:"boards"`
}

func toLimitUpEntry(s domain.LimitUpStock) LimitUpEntry {
	themes := s.Themes
	if themes == nil {
		themes = []string{}
	}
	return LimitUpEntry{
		Code:           s.Code,
		Name:           s.Name,
		PctChange:      s.PctChange,
		Price:          s.Price,
		Amount:         s.Amount,
		FloatMarketCap: s.FloatMarketCap,
		TurnoverRate:   s.TurnoverRate,
		SealedFund:     s.SealedFund,
		FirstLimitTime: s.FirstLimitTime,
		LastLimitTime:  s.LastLimitTime,
		BreakCount:     s.BreakCount,
		LimitUpStat:    s.LimitUpStat,
		Streak:         s.Streak,
		Industry:       s.Industry,
		Themes:         themes,
		OneWordBoard:   s.OneWordBoard,
	}
}

func toSentimentDay(m domain.MarketSentiment) SentimentDay {
	return SentimentDay{
		Date:        m.Date,
		Advances:    m.Advances,
		Declines:    m.Declines,
		Flat:        m.Flat,
		LimitUps:    m.LimitUps,
		LimitDowns:  m.LimitDowns,
		Suspended:   m.Suspended,
		Activity:    m.Activity,
		AdvanceRate: m.AdvanceRate(),
	}
}

func toBoardEntry(b domain.BoardDaily) BoardEntry {
	return BoardEntry{
		Code:      b.Code,
		Name:      b.Name,
		PctChange: b.PctChange,
		Advances:  b.Advances,
		Declines:  b.Declines,
		Leader:    b.Leader,
		LeaderPct: b.LeaderPct,
	}
}
