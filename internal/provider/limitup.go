package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

const ztPoolURL = "https://push2ex.eastmoney.com/getTopicZTPool"

// MarketClient fetches daily review data from the Eastmoney push endpoints.
type MarketClient struct {
	client     *Client
	ztPoolURL  string
	clistURL   string
	breadthURL string
}

// NewMarketClient creates a MarketClient on top of the shared Client.
func NewMarketClient(client *Client) *MarketClient {
	return &MarketClient{
		client:     client,
		ztPoolURL:  ztPoolURL,
		clistURL:   clistURL,
		breadthURL: breadthURL,
	}
}

// ztPoolResponse mirrors the getTopicZTPool payload. Prices come scaled by
// 1000, times as HHMMSS integers.
type ztPoolResponse struct {
	Data struct {
		Pool []struct {
			Code         string    `json:"c"`
			Name         string    `json:"n"`
			Price        jsonFloat `json:"p"` // ×1000
			PctChange    jsonFloat `json:"zdp"`
			Amount       jsonFloat `json:"amount"`
			FloatCap     jsonFloat `json:"ltsz"`
			TotalCap     jsonFloat `json:"tshare"`
			TurnoverRate jsonFloat `json:"hs"`
			SealedFund   jsonFloat `json:"fund"`
			FirstTime    int       `json:"fbt"` // HHMMSS
			LastTime     int       `json:"lbt"` // HHMMSS
			BreakCount   int       `json:"zbc"`
			Streak       int       `json:"lbc"`
			Industry     string    `json:"hybk"`
			Stat         struct {
				Days   int `json:"days"`
				Boards int `json:"ct"`
			} `json:"zttj"`
		} `json:"pool"`
	} `json:"data"`
}

// FetchLimitUpPool returns the limit-up pool for the given trading date.
func (c *MarketClient) FetchLimitUpPool(ctx context.Context, date tradecal.Date) ([]domain.LimitUpStock, error) {
	params := url.Values{}
	params.Set("ut", "7eea3edcaed734bea9cbfc24409ed989")
	params.Set("dpt", "wz.ztzt")
	params.Set("Pageindex", "0")
	params.Set("pagesize", "500")
	params.Set("sort", "fbt:asc")
	params.Set("date", string(date))

	var resp ztPoolResponse
	if err := c.client.getJSON(ctx, c.ztPoolURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching limit-up pool for %s: %w", date, err)
	}

	stocks := make([]domain.LimitUpStock, 0, len(resp.Data.Pool))
	for _, p := range resp.Data.Pool {
		firstTime := fmt.Sprintf("%06d", p.FirstTime)
		stocks = append(stocks, domain.LimitUpStock{
			Date:           string(date),
			Code:           p.Code,
			Name:           p.Name,
			PctChange:      float64(p.PctChange),
			Price:          float64(p.Price) / 1000,
			Amount:         float64(p.Amount),
			FloatMarketCap: float64(p.FloatCap),
			TotalMarketCap: float64(p.TotalCap),
			TurnoverRate:   float64(p.TurnoverRate),
			SealedFund:     float64(p.SealedFund),
			FirstLimitTime: firstTime,
			LastLimitTime:  fmt.Sprintf("%06d", p.LastTime),
			BreakCount:     p.BreakCount,
			LimitUpStat:    fmt.Sprintf("%d/%d", p.Stat.Days, p.Stat.Boards),
			Streak:         p.Streak,
			Industry:       p.Industry,
			// Sealed from the opening auction and never broken.
			OneWordBoard: firstTime == "092500" && p.BreakCount == 0,
		})
	}
	return stocks, nil
}
