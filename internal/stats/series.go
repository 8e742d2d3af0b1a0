package stats

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Series is an ordered (date, value) sequence for one ticker.
type Series struct {
	Ticker string
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Values) }

// LogReturns derives the log-return series ln(p[t]/p[t-1]) from a price
// series ordered by date. The first observation has no return and is
// dropped. Dates must be strictly increasing; a duplicate or out-of-order
// date and a non-positive price both fail with ErrInvalidInput.
func LogReturns(prices Series) (Series, error) {
	if len(prices.Values) != len(prices.Dates) {
		return Series{}, fmt.Errorf("%w: %s has %d values for %d dates", ErrInvalidInput, prices.Ticker, len(prices.Values), len(prices.Dates))
	}
	if prices.Len() < 2 {
		return Series{}, fmt.Errorf("%w: %s needs at least 2 prices to derive returns, got %d", ErrInsufficientData, prices.Ticker, prices.Len())
	}

	for i, p := range prices.Values {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return Series{}, fmt.Errorf("%w: %s has non-positive price %v on %s", ErrInvalidInput, prices.Ticker, p, prices.Dates[i].Format(time.DateOnly))
		}
		if i > 0 && !prices.Dates[i].After(prices.Dates[i-1]) {
			return Series{}, fmt.Errorf("%w: %s has duplicate or out-of-order date %s", ErrInvalidInput, prices.Ticker, prices.Dates[i].Format(time.DateOnly))
		}
	}

	returns := Series{
		Ticker: prices.Ticker,
		Dates:  make([]time.Time, prices.Len()-1),
		Values: make([]float64, prices.Len()-1),
	}
	for i := 1; i < prices.Len(); i++ {
		returns.Dates[i-1] = prices.Dates[i]
		returns.Values[i-1] = math.Log(prices.Values[i] / prices.Values[i-1])
	}

	return returns, nil
}

// Wide is a date-aligned table of return series, one column per ticker.
// Only dates present in every input series are retained.
type Wide struct {
	Tickers []string
	Dates   []time.Time
	Columns [][]float64
}

// Rows returns the number of aligned dates.
func (w Wide) Rows() int { return len(w.Dates) }

// Column returns the values for ticker.
func (w Wide) Column(ticker string) ([]float64, error) {
	for i, t := range w.Tickers {
		if t == ticker {
			return w.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: ticker %s not present in aligned table", ErrInvalidInput, ticker)
}

// Align inner-joins return series on date. It fails with
// ErrMisalignedSeries when no date is shared by every series.
func Align(series []Series) (Wide, error) {
	if len(series) < 2 {
		return Wide{}, fmt.Errorf("%w: alignment needs at least 2 series, got %d", ErrInvalidInput, len(series))
	}

	counts := make(map[int64]int)
	for _, s := range series {
		seen := make(map[int64]bool, s.Len())
		for _, d := range s.Dates {
			key := d.Unix()
			if seen[key] {
				return Wide{}, fmt.Errorf("%w: %s has duplicate date %s", ErrInvalidInput, s.Ticker, d.Format(time.DateOnly))
			}
			seen[key] = true
			counts[key]++
		}
	}

	shared := make([]int64, 0)
	for key, n := range counts {
		if n == len(series) {
			shared = append(shared, key)
		}
	}
	if len(shared) == 0 {
		tickers := make([]string, len(series))
		for i, s := range series {
			tickers[i] = s.Ticker
		}
		return Wide{}, fmt.Errorf("%w: no overlapping dates across %v", ErrMisalignedSeries, tickers)
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })

	wide := Wide{
		Tickers: make([]string, len(series)),
		Dates:   make([]time.Time, len(shared)),
		Columns: make([][]float64, len(series)),
	}
	for i, key := range shared {
		wide.Dates[i] = time.Unix(key, 0).UTC()
	}

	for i, s := range series {
		byDate := make(map[int64]float64, s.Len())
		for j, d := range s.Dates {
			byDate[d.Unix()] = s.Values[j]
		}
		col := make([]float64, len(shared))
		for j, key := range shared {
			col[j] = byDate[key]
		}
		wide.Tickers[i] = s.Ticker
		wide.Columns[i] = col
	}

	return wide, nil
}
