package pjm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"GridPull/internal/domain/models"
	drepo "GridPull/internal/domain/repository"
	xhttp "GridPull/pkg/http"
)

const (
	feedDAHourly = "da_hrl_lmps"
	feedRTHourly = "rt_hrl_lmps"

	maxRowsPerPage = 50000
	eptTimeLayout  = "2006-01-02T15:04:05"
)

// Client implements an ObservationFeed backed by the PJM Data Miner 2 API.
// Data Miner has no streaming endpoint, so Read polls the hourly LMP feeds
// on an interval and emits rows for the current and previous market day.
type Client struct {
	apiKey       string
	baseURL      string
	hub          string
	markets      []models.Market
	pollInterval time.Duration

	http   *xhttp.Client
	cancel context.CancelFunc
}

// New creates a PJM Data Miner feed for the given hub and markets.
func New(apiKey, baseURL, hub string, markets []models.Market, pollInterval time.Duration) drepo.ObservationFeed {
	if pollInterval <= 0 {
		pollInterval = time.Hour
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		hub:          hub,
		markets:      markets,
		pollInterval: pollInterval,
		http:         xhttp.NewClient(xhttp.WithTimeout(60 * time.Second)),
	}
}

type dataMinerPage struct {
	Items     []map[string]interface{} `json:"items"`
	TotalRows int                      `json:"totalRows"`
}

func feedFor(market models.Market) (string, error) {
	switch market {
	case models.MarketDayAhead:
		return feedDAHourly, nil
	case models.MarketRealTime:
		return feedRTHourly, nil
	default:
		// The spread market is derived downstream, never fetched.
		return "", fmt.Errorf("no data miner feed for market %s", market)
	}
}

// componentFields maps our component enum to the feed's column names.
// Data Miner suffixes every price column with the market.
func componentFields(market models.Market) map[models.Component]string {
	suffix := "_da"
	if market == models.MarketRealTime {
		suffix = "_rt"
	}
	return map[models.Component]string{
		models.ComponentTotal:      "total_lmp" + suffix,
		models.ComponentEnergy:     "system_energy_price" + suffix,
		models.ComponentCongestion: "congestion_price" + suffix,
		models.ComponentLoss:       "marginal_loss_price" + suffix,
	}
}

// Read polls the configured feeds and streams observations. The error channel
// reports fetch failures without stopping the poll loop.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceObservation, <-chan error) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	obs := make(chan *models.PriceObservation, 1024)
	errs := make(chan error, 8)

	go func() {
		defer close(obs)
		defer close(errs)

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		c.pollOnce(ctx, obs, errs)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.pollOnce(ctx, obs, errs)
			}
		}
	}()

	return obs, errs
}

func (c *Client) pollOnce(ctx context.Context, obs chan<- *models.PriceObservation, errs chan<- error) {
	// Yesterday through today covers late RT settlements and the DA
	// publication for the next operating day.
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -1).Format("2006-01-02")
	end := now.AddDate(0, 0, 1).Format("2006-01-02")

	for _, market := range c.markets {
		rows, err := c.FetchRange(ctx, c.hub, market, start, end)
		if err != nil {
			select {
			case errs <- fmt.Errorf("pjm poll %s: %w", market, err):
			default:
			}
			continue
		}
		for _, o := range rows {
			select {
			case obs <- o:
			case <-ctx.Done():
				return
			}
		}
	}
}

// FetchRange pulls hourly LMP rows for [start, end] (inclusive dates,
// YYYY-MM-DD) from the corresponding Data Miner feed, following pagination.
func (c *Client) FetchRange(ctx context.Context, hub string, market models.Market, start, end string) ([]*models.PriceObservation, error) {
	feed, err := feedFor(market)
	if err != nil {
		return nil, err
	}

	var out []*models.PriceObservation
	startRow := 1
	for {
		page, err := c.fetchPage(ctx, feed, hub, start, end, startRow)
		if err != nil {
			return nil, err
		}
		parsed, err := c.parseItems(page.Items, market)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed...)

		startRow += len(page.Items)
		if len(page.Items) == 0 || startRow > page.TotalRows {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, feed, hub, start, end string, startRow int) (*dataMinerPage, error) {
	var page dataMinerPage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.baseURL, feed),
		Headers: map[string]string{
			"Ocp-Apim-Subscription-Key": c.apiKey,
		},
		QueryParams: map[string][]string{
			"rowCount":               {strconv.Itoa(maxRowsPerPage)},
			"startRow":               {strconv.Itoa(startRow)},
			"format":                 {"json"},
			"pnode_name":             {hub},
			"datetime_beginning_ept": {fmt.Sprintf("%s 00:00to%s 23:59", start, end)},
		},
	}, &page)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed, err)
	}
	return &page, nil
}

func (c *Client) parseItems(items []map[string]interface{}, market models.Market) ([]*models.PriceObservation, error) {
	fields := componentFields(market)
	out := make([]*models.PriceObservation, 0, len(items)*len(fields))

	for _, item := range items {
		ts, ok := item["datetime_beginning_ept"].(string)
		if !ok {
			continue
		}
		begin, err := time.Parse(eptTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse datetime %q: %w", ts, err)
		}
		hub, _ := item["pnode_name"].(string)

		// Hour beginning 0..23 maps to hour ending 1..24.
		date := time.Date(begin.Year(), begin.Month(), begin.Day(), 0, 0, 0, 0, time.UTC)
		hourEnding := begin.Hour() + 1

		for comp, field := range fields {
			v, ok := asFloat(item[field])
			if !ok {
				continue
			}
			out = append(out, &models.PriceObservation{
				Date:       date,
				HourEnding: hourEnding,
				Hub:        hub,
				Market:     market,
				Component:  comp,
				Value:      v,
			})
		}
	}
	return out, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Close stops the poll loop.
func (c *Client) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}
