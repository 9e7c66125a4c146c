package timedataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// GenerateYears returns n consecutive years starting at start.
func GenerateYears(start, n int) []int {
	years := make([]int, 0, n)
	for i := 0; i < n; i++ {
		years = append(years, start+i)
	}
	return years
}

// Values is a helper for building synthetic series in tests and benchmarks.
type Values []float64

func (v Values) Add(src Values) Values {
	floats.Add(v, src)
	return v
}

// Observations pairs the values with years, skipping nothing.
func (v Values) Observations(years []int) Observations {
	obs := make(Observations, len(v))
	for i := 0; i < len(v) && i < len(years); i++ {
		obs.Set(years[i], v[i])
	}
	return obs
}

func GenerateLinearY(n int, intercept, slope float64) Values {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, intercept+slope*float64(i))
	}
	return Values(y)
}

func GenerateConstY(n int, val float64) Values {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Values(y)
}

// GenerateNoise returns gaussian noise with the given scale. The seed keeps test
// fixtures reproducible.
func GenerateNoise(n int, scale float64, seed uint64) Values {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, r.NormFloat64()*scale)
	}
	return Values(y)
}
