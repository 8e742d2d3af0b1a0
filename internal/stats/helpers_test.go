package stats

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// normalDraws returns n deterministic draws from N(mu, sigma).
func normalDraws(seed uint64, n int, mu, sigma float64) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rand.NewPCG(seed, 0)}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = dist.Rand()
	}
	return xs
}
