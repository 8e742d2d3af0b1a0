package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func priceSeries(ticker string, prices ...float64) Series {
	dates := make([]time.Time, len(prices))
	for i := range prices {
		dates[i] = day(i)
	}
	return Series{Ticker: ticker, Dates: dates, Values: prices}
}

func TestLogReturnsConcreteScenario(t *testing.T) {
	// Prices [100, 105, 100] must produce [ln(1.05), ln(100/105)].
	returns, err := LogReturns(priceSeries("X", 100, 105, 100))
	require.NoError(t, err)

	require.Equal(t, 2, returns.Len())
	assert.Equal(t, math.Log(105.0/100.0), returns.Values[0])
	assert.Equal(t, math.Log(100.0/105.0), returns.Values[1])
	assert.True(t, returns.Dates[0].Equal(day(1)))
	assert.True(t, returns.Dates[1].Equal(day(2)))

	// One return is the exact negative of the other, so the mean is zero
	// up to floating error.
	mean := (returns.Values[0] + returns.Values[1]) / 2
	assert.InDelta(t, 0, mean, 1e-15)
}

func TestLogReturnsRoundTrip(t *testing.T) {
	prices := priceSeries("X", 100, 104.2, 99.7, 101.31, 108.4, 107.9)
	returns, err := LogReturns(prices)
	require.NoError(t, err)

	cum := 0.0
	for _, r := range returns.Values {
		cum += r
	}
	recovered := math.Exp(cum) * prices.Values[0]
	assert.InDelta(t, prices.Values[len(prices.Values)-1], recovered, 1e-9)
}

func TestLogReturnsNonPositivePrice(t *testing.T) {
	_, err := LogReturns(priceSeries("X", 100, 0, 101))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = LogReturns(priceSeries("X", 100, -5, 101))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogReturnsDuplicateDate(t *testing.T) {
	s := priceSeries("X", 100, 101, 102)
	s.Dates[2] = s.Dates[1]
	_, err := LogReturns(s)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogReturnsTooShort(t *testing.T) {
	_, err := LogReturns(priceSeries("X", 100))
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestAlignInnerJoin(t *testing.T) {
	a := Series{Ticker: "A", Dates: []time.Time{day(0), day(1), day(2)}, Values: []float64{1, 2, 3}}
	b := Series{Ticker: "B", Dates: []time.Time{day(1), day(2), day(3)}, Values: []float64{10, 20, 30}}

	wide, err := Align([]Series{a, b})
	require.NoError(t, err)

	require.Equal(t, 2, wide.Rows())
	assert.True(t, wide.Dates[0].Equal(day(1)))
	assert.True(t, wide.Dates[1].Equal(day(2)))

	colA, err := wide.Column("A")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, colA)

	colB, err := wide.Column("B")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, colB)
}

func TestAlignDisjointDatesReportsMisalignment(t *testing.T) {
	a := Series{Ticker: "A", Dates: []time.Time{day(0), day(1)}, Values: []float64{1, 2}}
	b := Series{Ticker: "B", Dates: []time.Time{day(10), day(11)}, Values: []float64{3, 4}}

	_, err := Align([]Series{a, b})
	require.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestAlignNeedsTwoSeries(t *testing.T) {
	a := Series{Ticker: "A", Dates: []time.Time{day(0)}, Values: []float64{1}}
	_, err := Align([]Series{a})
	require.ErrorIs(t, err, ErrInvalidInput)
}
