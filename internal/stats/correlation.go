package stats

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CorrelationMatrix is a symmetric Kendall tau matrix over aligned return
// columns, with paired two-sided p-values and a display ordering derived
// from single-linkage clustering of the correlation structure. The
// underlying matrices themselves stay in input ticker order.
type CorrelationMatrix struct {
	Tickers []string
	Tau     *mat.SymDense
	PValues *mat.SymDense
	Order   []int
}

// At returns tau for the ticker pair at (i, j).
func (c *CorrelationMatrix) At(i, j int) float64 { return c.Tau.At(i, j) }

// KendallMatrix computes the pairwise Kendall rank correlation of the
// aligned columns along with two-sided significance p-values.
func KendallMatrix(wide Wide) (*CorrelationMatrix, error) {
	if len(wide.Tickers) < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 tickers, got %d", ErrInvalidInput, len(wide.Tickers))
	}
	if wide.Rows() < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 overlapping dates, got %d", ErrInsufficientData, wide.Rows())
	}

	n := len(wide.Tickers)
	tau := mat.NewSymDense(n, nil)
	pvals := mat.NewSymDense(n, nil)

	for i := 0; i < n; i++ {
		tau.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			t := stat.Kendall(wide.Columns[i], wide.Columns[j], nil)
			tau.SetSym(i, j, t)
			pvals.SetSym(i, j, kendallPValue(t, wide.Rows()))
		}
	}

	return &CorrelationMatrix{
		Tickers: wide.Tickers,
		Tau:     tau,
		PValues: pvals,
		Order:   clusterOrder(tau),
	}, nil
}

// kendallPValue is the two-sided significance of tau under the null of
// independence, via the large-sample normal approximation
// z = 3*tau*sqrt(n(n-1)) / sqrt(2(2n+5)). Ties are not corrected for.
func kendallPValue(tau float64, n int) float64 {
	if n < 2 {
		return 1
	}
	fn := float64(n)
	z := 3 * tau * math.Sqrt(fn*(fn-1)) / math.Sqrt(2*(2*fn+5))
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return math.Min(p, 1)
}

// clusterOrder orders tickers by single-linkage agglomerative clustering
// over the distance 1-tau, so strongly associated assets sit adjacent in
// rendered tables.
func clusterOrder(tau *mat.SymDense) []int {
	n := tau.SymmetricDim()
	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	dist := func(a, b []int) float64 {
		best := math.Inf(1)
		for _, i := range a {
			for _, j := range b {
				if d := 1 - tau.At(i, j); d < best {
					best = d
				}
			}
		}
		return best
	}

	for len(clusters) > 1 {
		bi, bj := 0, 1
		best := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if d := dist(clusters[i], clusters[j]); d < best {
					best = d
					bi, bj = i, j
				}
			}
		}
		merged := append(append([]int{}, clusters[bi]...), clusters[bj]...)
		next := make([][]int, 0, len(clusters)-1)
		for k, c := range clusters {
			if k != bi && k != bj {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}

	return clusters[0]
}

// RollingSeries is a trailing-window correlation series. Dates hold the
// window end dates; the first defined point is the one ending at the
// window-th observation.
type RollingSeries struct {
	Window int
	Dates  []time.Time
	Values []float64
}

// RollingCorrelation computes the trailing-window Pearson correlation of
// two aligned return columns. Windows are strictly backward and inclusive
// of the end date; dates before the window fills are excluded rather than
// zero-filled.
func RollingCorrelation(dates []time.Time, x, y []float64, window int) (RollingSeries, error) {
	if window < 2 {
		return RollingSeries{}, fmt.Errorf("%w: rolling window must be at least 2, got %d", ErrInvalidInput, window)
	}
	if len(x) != len(y) || len(x) != len(dates) {
		return RollingSeries{}, fmt.Errorf("%w: rolling correlation needs equal-length aligned inputs (%d, %d, %d dates)", ErrInvalidInput, len(x), len(y), len(dates))
	}
	if len(x) < window {
		return RollingSeries{}, fmt.Errorf("%w: %d observations for window %d", ErrInsufficientData, len(x), window)
	}

	out := RollingSeries{
		Window: window,
		Dates:  make([]time.Time, 0, len(x)-window+1),
		Values: make([]float64, 0, len(x)-window+1),
	}
	for end := window; end <= len(x); end++ {
		r := stat.Correlation(x[end-window:end], y[end-window:end], nil)
		out.Dates = append(out.Dates, dates[end-1])
		out.Values = append(out.Values, r)
	}

	return out, nil
}

// Kendall is the whole-history Kendall rank correlation of two aligned
// columns, used as the static overlay on rolling correlation charts.
func Kendall(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: series lengths differ (%d vs %d)", ErrInvalidInput, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: kendall correlation needs at least 2 observations, got %d", ErrInsufficientData, len(x))
	}
	return stat.Kendall(x, y, nil), nil
}
