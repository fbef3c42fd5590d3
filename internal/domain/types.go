// Package domain defines the market data records shared across the fetch,
// persistence, and rendering layers.
package domain

// LimitUpStock is one row of the daily limit-up pool: a stock that reached
// its +10% (or +20% on STAR/ChiNext) daily limit, with sealing details.
type LimitUpStock struct {
	Date           string   // trading date, YYYYMMDD
	Code           string   // stock code, e.g. "000001"
	Name           string   // stock name
	PctChange      float64  // daily percent change
	Price          float64  // latest price, yuan
	Amount         float64  // turnover, yuan
	FloatMarketCap float64  // circulating market cap, yuan
	TotalMarketCap float64  // total market cap, yuan
	TurnoverRate   float64  // percent
	SealedFund     float64  // funds sealing the limit order book, yuan
	FirstLimitTime string   // HHMMSS of first seal
	LastLimitTime  string   // HHMMSS of last seal
	BreakCount     int      // times the board was broken intraday
	LimitUpStat    string   // "days/boards" statistic, e.g. "3/2"
	Streak         int      // consecutive limit-up days
	Industry       string   // industry board name
	Themes         []string // theme/concept tags
	OneWordBoard   bool     // sealed at limit from the opening auction
}

// MarketSentiment is the per-day market breadth summary.
type MarketSentiment struct {
	Date       string  // trading date, YYYYMMDD
	Advances   int     // rising stocks
	Declines   int     // falling stocks
	Flat       int     // unchanged
	LimitUps   int     // stocks at upper limit
	LimitDowns int     // stocks at lower limit
	Suspended  int     // suspended stocks
	Activity   float64 // market activity percent
}

// AdvanceRate returns the share of advancing stocks among movers, in [0, 1].
func (m MarketSentiment) AdvanceRate() float64 {
	total := m.Advances + m.Declines + m.Flat
	if total == 0 {
		return 0
	}
	return float64(m.Advances) / float64(total)
}

// BoardDaily is one day of a sector board (theme/concept or industry).
type BoardDaily struct {
	Date         string  // trading date, YYYYMMDD
	Code         string  // board code, e.g. "BK0420"
	Name         string  // board name
	PctChange    float64 // board percent change
	MarketCap    float64 // total market cap, yuan
	TurnoverRate float64
	Advances     int    // rising constituents
	Declines     int    // falling constituents
	Leader       string // top gaining constituent name
	LeaderPct    float64
}
