package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/BBbandit/Dayil-Review/internal/domain"
	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

const clistURL = "https://push2.eastmoney.com/api/qt/clist/get"

// BoardKind selects which sector board list to fetch.
type BoardKind string

const (
	BoardIndustry BoardKind = "industry" // Eastmoney industry boards (m:90 t:2)
	BoardConcept  BoardKind = "concept"  // Eastmoney concept/theme boards (m:90 t:3)
)

// clistResponse mirrors the board list payload.
type clistResponse struct {
	Data struct {
		Total int `json:"total"`
		Diff  []struct {
			Code         string    `json:"f12"`
			Name         string    `json:"f14"`
			PctChange    jsonFloat `json:"f3"`
			MarketCap    jsonFloat `json:"f20"`
			TurnoverRate jsonFloat `json:"f8"`
			Advances     jsonFloat `json:"f104"`
			Declines     jsonFloat `json:"f105"`
			Leader       string    `json:"f128"`
			LeaderPct    jsonFloat `json:"f136"`
		} `json:"diff"`
	} `json:"data"`
}

// FetchBoards returns the daily performance of all boards of the given kind,
// stamped with the resolved reference date.
func (c *MarketClient) FetchBoards(ctx context.Context, kind BoardKind, date tradecal.Date) ([]domain.BoardDaily, error) {
	fs := "m:90+t:2+f:!50"
	if kind == BoardConcept {
		fs = "m:90+t:3+f:!50"
	}

	params := url.Values{}
	params.Set("pn", "1")
	params.Set("pz", "500")
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("fid", "f3")
	params.Set("fs", fs)
	params.Set("fields", "f3,f8,f12,f14,f20,f104,f105,f128,f136")

	var resp clistResponse
	if err := c.client.getJSON(ctx, c.clistURL+"?"+params.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetching %s boards: %w", kind, err)
	}

	boards := make([]domain.BoardDaily, 0, len(resp.Data.Diff))
	for _, b := range resp.Data.Diff {
		boards = append(boards, domain.BoardDaily{
			Date:         string(date),
			Code:         b.Code,
			Name:         b.Name,
			PctChange:    float64(b.PctChange),
			MarketCap:    float64(b.MarketCap),
			TurnoverRate: float64(b.TurnoverRate),
			Advances:     int(b.Advances),
			Declines:     int(b.Declines),
			Leader:       b.Leader,
			LeaderPct:    float64(b.LeaderPct),
		})
	}
	return boards, nil
}
