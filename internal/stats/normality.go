package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MethodJarqueBera labels the joint skewness-kurtosis normality test.
	MethodJarqueBera = "jarque-bera"
	// MethodKolmogorovSmirnov labels the one-sample goodness-of-fit test
	// against the standard normal.
	MethodKolmogorovSmirnov = "kolmogorov-smirnov"

	// jarqueBeraMinN is the minimum sample size for the moment-based test;
	// below it the chi-squared asymptotics are meaningless.
	jarqueBeraMinN = 8
)

// NormalityResult is a test statistic and p-value under the null of
// normality.
type NormalityResult struct {
	Ticker    string
	Method    string
	Statistic float64
	PValue    float64
	N         int
}

// JarqueBera tests a return series for normality via its sample skewness
// and kurtosis. The statistic n/6*(S^2 + (K-3)^2/4) is asymptotically
// chi-squared with 2 degrees of freedom; S and K use population moments
// (ddof=0) per the test's definition.
func JarqueBera(returns Series) (NormalityResult, error) {
	n := returns.Len()
	if n < jarqueBeraMinN {
		return NormalityResult{}, fmt.Errorf("%w: %s has %d returns, jarque-bera needs at least %d", ErrInsufficientData, returns.Ticker, n, jarqueBeraMinN)
	}

	mean := stat.Mean(returns.Values, nil)
	var m2, m3, m4 float64
	for _, v := range returns.Values {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	fn := float64(n)
	m2 /= fn
	m3 /= fn
	m4 /= fn
	if m2 == 0 {
		return NormalityResult{}, fmt.Errorf("%w: %s has zero variance", ErrInsufficientData, returns.Ticker)
	}

	skew := m3 / math.Pow(m2, 1.5)
	kurt := m4 / (m2 * m2)
	jb := fn / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)

	chi2 := distuv.ChiSquared{K: 2}
	return NormalityResult{
		Ticker:    returns.Ticker,
		Method:    MethodJarqueBera,
		Statistic: jb,
		PValue:    chi2.Survival(jb),
		N:         n,
	}, nil
}

// KolmogorovSmirnov tests a return series against the standard normal
// after standardising by the sample mean and standard deviation. The
// p-value uses the asymptotic Kolmogorov distribution with Stephens'
// small-sample adjustment of the statistic.
func KolmogorovSmirnov(returns Series) (NormalityResult, error) {
	n := returns.Len()
	if n < 2 {
		return NormalityResult{}, fmt.Errorf("%w: %s has %d returns, kolmogorov-smirnov needs at least 2", ErrInsufficientData, returns.Ticker, n)
	}

	mean, sd := stat.MeanStdDev(returns.Values, nil)
	if sd == 0 {
		return NormalityResult{}, fmt.Errorf("%w: %s has zero variance", ErrInsufficientData, returns.Ticker)
	}

	z := make([]float64, n)
	for i, v := range returns.Values {
		z[i] = (v - mean) / sd
	}
	sort.Float64s(z)

	fn := float64(n)
	var d float64
	for i, v := range z {
		cdf := distuv.UnitNormal.CDF(v)
		upper := float64(i+1)/fn - cdf
		lower := cdf - float64(i)/fn
		d = math.Max(d, math.Max(upper, lower))
	}

	return NormalityResult{
		Ticker:    returns.Ticker,
		Method:    MethodKolmogorovSmirnov,
		Statistic: d,
		PValue:    ksPValue(d, n),
		N:         n,
	}, nil
}

// ksPValue approximates P(D >= d) with the Kolmogorov asymptotic series
// on the Stephens-adjusted statistic lambda = (sqrt(n)+0.12+0.11/sqrt(n))*d.
func ksPValue(d float64, n int) float64 {
	if d <= 0 {
		return 1
	}
	sqrtN := math.Sqrt(float64(n))
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d

	var sum float64
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j)*float64(j)*lambda*lambda)
		sum += term
		sign = -sign
		if math.Abs(term) < 1e-12 {
			break
		}
	}
	p := 2 * sum
	return math.Min(math.Max(p, 0), 1)
}
