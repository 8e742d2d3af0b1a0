package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const chartPath = "/v8/finance/chart/"

// YahooOptions parameterise the Yahoo Finance fetcher.
type YahooOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Yahoo fetches daily bars from the Yahoo Finance chart API.
type Yahoo struct {
	opts    YahooOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewYahoo constructs a Yahoo Finance fetcher.
func NewYahoo(opts YahooOptions, logger zerolog.Logger) *Yahoo {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}

	return &Yahoo{
		opts:    opts,
		logger:  logger.With().Str("component", "yahoo_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchDaily retrieves daily adjusted-close bars for ticker within [from, to).
func (y *Yahoo) FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error) {
	if ticker == "" {
		return nil, errors.New("ticker is required")
	}
	if !from.Before(to) {
		return nil, errors.New("from must be before to")
	}

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	params.Set("period2", fmt.Sprintf("%d", to.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,split")

	endpoint := y.baseURL + chartPath + url.PathEscape(ticker) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(y.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "etfstats/1.0")
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(ticker, resp.StatusCode, payload)
	}

	var chartRes chartResponse
	if err := json.Unmarshal(payload, &chartRes); err != nil {
		return nil, fmt.Errorf("decode chart response for %s: %w", ticker, err)
	}

	return chartRes.bars(ticker)
}

// chartResponse is the top-level chart API container.
type chartResponse struct {
	Chart struct {
		Result []chartResult   `json:"result"`
		Error  json.RawMessage `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (c *chartResponse) bars(ticker string) ([]PriceBar, error) {
	if len(c.Chart.Error) > 0 && string(c.Chart.Error) != "null" {
		return nil, fmt.Errorf("chart api error for %s: %s", ticker, strings.TrimSpace(string(c.Chart.Error)))
	}
	if len(c.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart api returned no result for %s", ticker)
	}

	result := c.Chart.Result[0]
	closes := result.adjustedCloses()
	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("chart api returned %d closes for %d timestamps (%s)", len(closes), len(result.Timestamp), ticker)
	}

	bars := make([]PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			// Market holidays and halted sessions surface as nulls.
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		bars = append(bars, PriceBar{
			Ticker:   ticker,
			Date:     day,
			AdjClose: decimal.NewFromFloat(*closes[i]),
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("chart api returned no usable bars for %s", ticker)
	}

	return bars, nil
}

// adjustedCloses prefers the adjclose indicator and falls back to raw close.
func (r *chartResult) adjustedCloses() []*float64 {
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		return r.Indicators.AdjClose[0].AdjClose
	}
	if len(r.Indicators.Quote) > 0 {
		return r.Indicators.Quote[0].Close
	}
	return nil
}

type errorResponse struct {
	Chart struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func parseHTTPError(ticker string, status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Chart.Error.Description != "" {
			return fmt.Errorf("chart api error for %s (%d): %s", ticker, status, apiErr.Chart.Error.Description)
		}
		if apiErr.Chart.Error.Code != "" {
			return fmt.Errorf("chart api error for %s (%d): %s", ticker, status, apiErr.Chart.Error.Code)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("chart api error for %s (%d): %s", ticker, status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("chart api error for %s (%d)", ticker, status)
}

var _ PriceFetcher = (*Yahoo)(nil)
