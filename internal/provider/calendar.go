package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/BBbandit/Dayil-Review/internal/tradecal"
)

const szseCalendarURL = "https://www.szse.cn/api/report/exchange/onepersistenthour/monthList"

// CalendarClient fetches the A-share trading calendar from the Shenzhen
// exchange month-list endpoint. It implements tradecal.Provider.
type CalendarClient struct {
	client  *Client
	baseURL string
}

// NewCalendarClient creates a CalendarClient on top of the shared Client.
func NewCalendarClient(client *Client) *CalendarClient {
	return &CalendarClient{client: client, baseURL: szseCalendarURL}
}

var _ tradecal.Provider = (*CalendarClient)(nil)

// szse month-list response: data is a list of days for the requested month,
// jybz "1" marking trading days.
type szseMonthResponse struct {
	Data []struct {
		Date    string `json:"jyrq"` // "2025-09-05"
		Trading string `json:"jybz"` // "1" trading, "0" not
	} `json:"data"`
}

// FetchTradingDates returns the trading dates in [start, end], queried one
// exchange month at a time.
func (c *CalendarClient) FetchTradingDates(ctx context.Context, start, end tradecal.Date) ([]tradecal.Date, error) {
	st, err := start.Time(time.UTC)
	if err != nil {
		return nil, fmt.Errorf("calendar window start: %w", err)
	}
	en, err := end.Time(time.UTC)
	if err != nil {
		return nil, fmt.Errorf("calendar window end: %w", err)
	}
	if en.Before(st) {
		return nil, fmt.Errorf("calendar window end %s before start %s", end, start)
	}

	var dates []tradecal.Date
	for month := time.Date(st.Year(), st.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(en); month = month.AddDate(0, 1, 0) {
		params := url.Values{}
		params.Set("month", month.Format("2006-01"))

		var resp szseMonthResponse
		if err := c.client.getJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
			return nil, fmt.Errorf("fetching calendar month %s: %w", month.Format("2006-01"), err)
		}

		for _, day := range resp.Data {
			if day.Trading != "1" {
				continue
			}
			d, err := tradecal.ParseDate(day.Date)
			if err != nil {
				c.client.log.Warn("skipping malformed calendar entry", "date", day.Date, "error", err)
				continue
			}
			if d >= start && d <= end {
				dates = append(dates, d)
			}
		}
	}
	return dates, nil
}
