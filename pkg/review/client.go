// Package review provides a Go client for the review-server HTTP API.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ReferenceDate is the server's resolved reference trading date.
type ReferenceDate struct {
	Date     string `json:"date"`
	Degraded bool   `json:"degraded"`
}

// LimitUpStock is one limit-up pool row.
type LimitUpStock struct {
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

// LimitUpPool is the limit-up pool for one trading date.
type LimitUpPool struct {
	Date   string         `json:"date"`
	Stocks []LimitUpStock `json:"stocks"`
}

// SentimentDay is one day of market breadth.
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

// Board is one sector board row.
type Board struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	PctChange float64 `json:"pctChange"`
	Advances  int     `json:"advances"`
	Declines  int     `json:"declines"`
	Leader    string  `json:"leader"`
	LeaderPct float64 `json:"leaderPct"`
}

// Boards lists the top boards of one kind for one date.
type Boards struct {
	Date   string  `json:"date"`
	Kind   string  `json:"kind"`
	Boards []Board `json:"boards"`
}

type datesResponse struct {
	Dates []string `json:"dates"`
}

type sentimentResponse struct {
	Days []SentimentDay `json:"days"`
}

// Client calls the review-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetDates retrieves the trading dates with synced review data.
func (c *Client) GetDates(ctx context.Context) ([]string, error) {
	var resp datesResponse
	if err := c.get(ctx, "/api/dates", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dates, nil
}

// GetReferenceDate retrieves the resolved reference trading date.
func (c *Client) GetReferenceDate(ctx context.Context) (ReferenceDate, error) {
	var resp ReferenceDate
	err := c.get(ctx, "/api/reference-date", nil, &resp)
	return resp, err
}

// GetLimitUp retrieves the limit-up pool for date; an empty date means the
// server's reference date.
func (c *Client) GetLimitUp(ctx context.Context, date string) (LimitUpPool, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var resp LimitUpPool
	err := c.get(ctx, "/api/limitup", q, &resp)
	return resp, err
}

// GetSentiment retrieves the most recent days of market sentiment.
func (c *Client) GetSentiment(ctx context.Context, days int) ([]SentimentDay, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var resp sentimentResponse
	if err := c.get(ctx, "/api/sentiment", q, &resp); err != nil {
		return nil, err
	}
	return resp.Days, nil
}

// GetThemes retrieves the top theme boards for date; an empty date means the
// server's reference date.
func (c *Client) GetThemes(ctx context.Context, date string, limit int) (Boards, error) {
	return c.getBoards(ctx, "/api/themes", date, limit)
}

// GetIndustries retrieves the top industry boards for date.
func (c *Client) GetIndustries(ctx context.Context, date string, limit int) (Boards, error) {
	return c.getBoards(ctx, "/api/industries", date, limit)
}

func (c *Client) getBoards(ctx context.Context, path, date string, limit int) (Boards, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp Boards
	err := c.get(ctx, path, q, &resp)
	return resp, err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", path, err)
	}
	return nil
}
