package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

const breadthURL = "https://push2.eastmoney.com/api/qt/ulist.np/get"

// breadthResponse carries the advance/decline counts reported alongside the
// Shanghai composite quote (f104 advancing, f105 declining, f106 flat).
type breadthResponse struct {
	Data struct {
		Diff []struct {
			Advances jsonFloat `json:"f104"`
			Declines jsonFloat `json:"f105"`
			Flat     jsonFloat `json:"f106"`
		} `json:"diff"`
	} `json:"data"`
}

// FetchMarketBreadth returns the advance/decline summary for the whole
// market as of the latest session. The endpoint only reports the current
// state, so the caller stamps the record with the resolved reference date.
func (c *MarketClient) FetchMarketBreadth(ctx context.Context, date tradecal.Date) (domain.MarketSentiment, error) {
	params := url.Values{}
	params.Set("fltt", "2")
	params.Set("np", "1")
	params.Set("secids", "1.000001")
	params.Set("fields", "f104,f105,f106")

	var resp breadthResponse
	if err := c.client.getJSON(ctx, c.breadthURL+"?"+params.Encode(), &resp); err != nil {
		return domain.MarketSentiment{}, fmt.Errorf("fetching market breadth: %w", err)
	}
	if len(resp.Data.Diff) == 0 {
		return domain.MarketSentiment{}, fmt.Errorf("market breadth response empty")
	}

	d := resp.Data.Diff[0]
	s := domain.MarketSentiment{
		Date:     string(date),
		Advances: int(d.Advances),
		Declines: int(d.Declines),
		Flat:     int(d.Flat),
	}
	if total := s.Advances + s.Declines + s.Flat; total > 0 {
		s.Activity = float64(s.Advances+s.Declines) / float64(total) * 100
	}
	return s, nil
}
