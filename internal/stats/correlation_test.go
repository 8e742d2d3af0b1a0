package stats

import (
	"testing"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wideFromColumns(tickers []string, columns ...[]float64) Wide {
	dates := make([]time.Time, len(columns[0]))
	for i := range dates {
		dates[i] = day(i)
	}
	return Wide{Tickers: tickers, Dates: dates, Columns: columns}
}

func TestKendallMatrixPerfectMonotonic(t *testing.T) {
	x := []float64{0.01, 0.02, 0.03, 0.04, 0.05}
	up := []float64{0.02, 0.04, 0.06, 0.08, 0.10} // perfectly increasing with x
	down := []float64{0.05, 0.04, 0.03, 0.02, 0.01}

	cm, err := KendallMatrix(wideFromColumns([]string{"X", "UP", "DOWN"}, x, up, down))
	require.NoError(t, err)

	assert.Equal(t, 1.0, cm.At(0, 1))
	assert.Equal(t, -1.0, cm.At(0, 2))

	// Symmetric with unit diagonal.
	n := len(cm.Tickers)
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, cm.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, cm.At(i, j), cm.At(j, i))
		}
	}

	// Perfect association should be highly significant, and more so than
	// the diagonal convention of zero.
	assert.Less(t, cm.PValues.At(0, 1), 0.05)
}

func TestKendallMatrixDisplayOrderIsPermutation(t *testing.T) {
	a := normalDraws(1, 300, 0, 0.01)
	b := make([]float64, len(a))
	for i := range b {
		b[i] = a[i] * 0.9 // tightly coupled to a
	}
	c := normalDraws(2, 300, 0, 0.01)
	d := normalDraws(3, 300, 0, 0.01)

	cm, err := KendallMatrix(wideFromColumns([]string{"A", "B", "C", "D"}, a, b, c, d))
	require.NoError(t, err)

	require.Len(t, cm.Order, 4)
	seen := make(map[int]bool)
	for _, idx := range cm.Order {
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 4)
		require.False(t, seen[idx], "display order repeats index %d", idx)
		seen[idx] = true
	}

	// The tightly coupled pair must end up adjacent.
	posA, posB := -1, -1
	for pos, idx := range cm.Order {
		switch idx {
		case 0:
			posA = pos
		case 1:
			posB = pos
		}
	}
	assert.Equal(t, 1, abs(posA-posB), "clustered pair should be adjacent in display order")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestKendallMatrixInsufficientOverlap(t *testing.T) {
	_, err := KendallMatrix(wideFromColumns([]string{"A", "B"}, []float64{0.01}, []float64{0.02}))
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRollingCorrelationWindowSemantics(t *testing.T) {
	const window = 5
	x := normalDraws(7, 40, 0, 0.01)
	y := normalDraws(8, 40, 0, 0.01)
	dates := make([]time.Time, len(x))
	for i := range dates {
		dates[i] = day(i)
	}

	rs, err := RollingCorrelation(dates, x, y, window)
	require.NoError(t, err)

	// The first window-1 points are absent, not zero-filled.
	require.Len(t, rs.Values, len(x)-window+1)
	assert.True(t, rs.Dates[0].Equal(dates[window-1]))

	// The first defined point equals the static Pearson correlation of
	// exactly the first window observations.
	want := stat.Correlation(x[:window], y[:window], nil)
	assert.InDelta(t, want, rs.Values[0], 1e-12)

	// And the last point covers exactly the trailing window.
	wantLast := stat.Correlation(x[len(x)-window:], y[len(y)-window:], nil)
	assert.InDelta(t, wantLast, rs.Values[len(rs.Values)-1], 1e-12)
}

func TestRollingCorrelationErrors(t *testing.T) {
	dates := []time.Time{day(0), day(1), day(2)}
	x := []float64{0.01, 0.02, 0.03}
	y := []float64{0.02, 0.01, 0.04}

	_, err := RollingCorrelation(dates, x, y, 1)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = RollingCorrelation(dates, x, y, 4)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = RollingCorrelation(dates, x, y[:2], 2)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestKendallScalar(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	tau, err := Kendall(x, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tau)

	_, err = Kendall(x, y[:2])
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Kendall(x[:1], y[:1])
	require.ErrorIs(t, err, ErrInsufficientData)
}
