package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is a persisted daily adjusted-close observation.
type PriceRecord struct {
	Ticker    string
	Date      time.Time
	AdjClose  decimal.Decimal
	Source    string
	CreatedAt time.Time
}
