package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func returnSeries(ticker string, values ...float64) Series {
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = day(i)
	}
	return Series{Ticker: ticker, Dates: dates, Values: values}
}

func TestMomentsSymmetricSkewnessIsZero(t *testing.T) {
	// Mirrored pairs around zero: odd moments cancel exactly.
	m, err := Moments(returnSeries("X", -0.03, 0.03, -0.01, 0.01, -0.02, 0.02))
	require.NoError(t, err)

	assert.InDelta(t, 0, m.Mean, 1e-15)
	assert.InDelta(t, 0, m.Skewness, 1e-12)
	assert.Greater(t, m.StdDev, 0.0)
	assert.Equal(t, 6, m.N)
}

func TestMomentsTwoObservations(t *testing.T) {
	m, err := Moments(returnSeries("X", 0.01, 0.03))
	require.NoError(t, err)

	assert.InDelta(t, 0.02, m.Mean, 1e-15)
	// Sample standard deviation of {0.01, 0.03} with ddof=1.
	assert.InDelta(t, 0.014142135623730951, m.StdDev, 1e-12)
	assert.GreaterOrEqual(t, m.StdDev, 0.0)
}

func TestMomentsKurtosisConvention(t *testing.T) {
	// A large normal sample should land near the non-excess baseline of 3,
	// not the excess baseline of 0.
	m, err := Moments(returnSeries("X", normalDraws(42, 20000, 0, 0.01)...))
	require.NoError(t, err)

	assert.InDelta(t, 3, m.Kurtosis, 0.15)
	assert.InDelta(t, 0.01, m.StdDev, 0.001)
}

func TestMomentsInsufficientData(t *testing.T) {
	_, err := Moments(returnSeries("X", 0.01))
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = Moments(returnSeries("X"))
	require.ErrorIs(t, err, ErrInsufficientData)
}
