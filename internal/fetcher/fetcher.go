package fetcher

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one daily adjusted-close observation for a ticker.
type PriceBar struct {
	Ticker   string
	Date     time.Time
	AdjClose decimal.Decimal
}

// PriceFetcher retrieves daily adjusted-close price history for a ticker.
type PriceFetcher interface {
	FetchDaily(ctx context.Context, ticker string, from, to time.Time) ([]PriceBar, error)
}
