package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// MomentSummary holds the four distribution moments of a return series.
// StdDev is the sample standard deviation (ddof=1). Kurtosis is reported
// on the non-excess convention where a normal distribution scores 3.
type MomentSummary struct {
	N        int
	Mean     float64
	StdDev   float64
	Skewness float64
	Kurtosis float64
}

// Moments computes the distribution moments of a return series.
func Moments(returns Series) (MomentSummary, error) {
	if returns.Len() < 2 {
		return MomentSummary{}, fmt.Errorf("%w: %s needs at least 2 returns for moments, got %d", ErrInsufficientData, returns.Ticker, returns.Len())
	}

	xs := returns.Values
	return MomentSummary{
		N:        len(xs),
		Mean:     stat.Mean(xs, nil),
		StdDev:   stat.StdDev(xs, nil),
		Skewness: stat.Skew(xs, nil),
		Kurtosis: stat.ExKurtosis(xs, nil) + 3,
	}, nil
}
