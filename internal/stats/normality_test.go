package stats

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarqueBeraPValueUniformUnderNull(t *testing.T) {
	// Under the null the p-value is uniform on [0,1]; this is a
	// distributional property, so check it over repeated trials rather
	// than asserting on a single run.
	const trials = 200
	const n = 500

	var sum float64
	rejections := 0
	for trial := 0; trial < trials; trial++ {
		xs := normalDraws(uint64(trial+1), n, 0, 0.01)
		res, err := JarqueBera(returnSeries("X", xs...))
		require.NoError(t, err)
		sum += res.PValue
		if res.PValue < 0.05 {
			rejections++
		}
	}

	mean := sum / trials
	assert.InDelta(t, 0.5, mean, 0.1, "p-values under the null should average near 0.5")
	assert.LessOrEqual(t, rejections, trials/5, "rejection rate under the null should stay near the nominal level")
}

func TestJarqueBeraRejectsSkewedSeries(t *testing.T) {
	// Squared normals are severely right-skewed.
	src := rand.NewPCG(9, 0)
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	xs := make([]float64, 500)
	for i := range xs {
		v := dist.Rand()
		xs[i] = v * v
	}

	res, err := JarqueBera(returnSeries("X", xs...))
	require.NoError(t, err)

	assert.Greater(t, res.Statistic, 0.0)
	assert.Less(t, res.PValue, 0.05)
	assert.Equal(t, MethodJarqueBera, res.Method)
}

func TestJarqueBeraMinimumSampleSize(t *testing.T) {
	_, err := JarqueBera(returnSeries("X", 0.01, 0.02, -0.01, 0.03, 0.02, -0.02, 0.01))
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestKolmogorovSmirnovNormalSample(t *testing.T) {
	// Quantile-spaced draws track the normal CDF as closely as a sample
	// of this size can, so the test must come nowhere near rejecting.
	const n = 500
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = 0.01 * distuv.UnitNormal.Quantile((float64(i)+0.5)/n)
	}

	res, err := KolmogorovSmirnov(returnSeries("X", xs...))
	require.NoError(t, err)

	assert.Equal(t, MethodKolmogorovSmirnov, res.Method)
	assert.Greater(t, res.Statistic, 0.0)
	assert.Greater(t, res.PValue, 0.5, "a near-perfect normal sample must not be rejected")
	assert.Equal(t, n, res.N)
}

func TestKolmogorovSmirnovRejectsUniformSample(t *testing.T) {
	src := rand.NewPCG(5, 0)
	u := distuv.Uniform{Min: -1, Max: 1, Src: src}
	xs := make([]float64, 2000)
	for i := range xs {
		xs[i] = u.Rand()
	}

	res, err := KolmogorovSmirnov(returnSeries("X", xs...))
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.05)
}

func TestKolmogorovSmirnovErrors(t *testing.T) {
	_, err := KolmogorovSmirnov(returnSeries("X", 0.01))
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = KolmogorovSmirnov(returnSeries("X", 0.01, 0.01, 0.01))
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestHistogramBinning(t *testing.T) {
	h, err := Histogram(returnSeries("X", 0, 0.25, 0.5, 0.75, 1.0), 4)
	require.NoError(t, err)

	require.Len(t, h.Counts, 4)
	require.Len(t, h.Centers, 4)

	var total float64
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 5.0, total, "every observation lands in exactly one bin")
	assert.InDelta(t, 0.25, h.Width, 1e-12)
	assert.InDelta(t, 0.125, h.Centers[0], 1e-12)
}

func TestHistogramErrors(t *testing.T) {
	_, err := Histogram(returnSeries("X"), 10)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = Histogram(returnSeries("X", 0.01), 0)
	require.ErrorIs(t, err, ErrInvalidInput)
}
