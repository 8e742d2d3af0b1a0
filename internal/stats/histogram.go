package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistogramBins holds equal-width histogram bin centers and counts.
type HistogramBins struct {
	Centers []float64
	Counts  []float64
	Width   float64
}

// Histogram bins a return series into bins equal-width buckets spanning
// the observed range.
func Histogram(returns Series, bins int) (HistogramBins, error) {
	if bins <= 0 {
		return HistogramBins{}, fmt.Errorf("%w: histogram bin count must be positive, got %d", ErrInvalidInput, bins)
	}
	if returns.Len() == 0 {
		return HistogramBins{}, fmt.Errorf("%w: %s has no returns to bin", ErrInsufficientData, returns.Ticker)
	}

	sorted := append([]float64(nil), returns.Values...)
	sort.Float64s(sorted)

	lo := sorted[0]
	hi := sorted[len(sorted)-1]
	if lo == hi {
		// Degenerate constant series: one occupied bin.
		hi = lo + 1e-12
	}

	width := (hi - lo) / float64(bins)
	dividers := make([]float64, bins+1)
	for i := 0; i <= bins; i++ {
		dividers[i] = lo + width*float64(i)
	}
	// gonum requires every value strictly below the last divider.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	centers := make([]float64, bins)
	for i := 0; i < bins; i++ {
		centers[i] = lo + width*(float64(i)+0.5)
	}

	return HistogramBins{Centers: centers, Counts: counts, Width: width}, nil
}
