package stats

import (
	"math"

	"github.com/aouyang1/indicator-forecaster/models"
	"github.com/aouyang1/indicator-forecaster/timedataset"
	"gonum.org/v1/gonum/stat"
)

// MinResidualSize is the fewest finite residuals needed for a spread estimate
const MinResidualSize = 2

// ResidualStd computes the sample standard deviation (n-1 divisor) of the model
// residuals. When the model exposes too few residuals they are recomputed as the
// observed minus fitted values over the series. A result of 0 means no band can be
// derived.
func ResidualStd(model models.Model, s *timedataset.Series) float64 {
	if model == nil {
		return 0
	}

	resid := finite(model.Residuals())
	if len(resid) < MinResidualSize {
		resid = finite(observedMinusFitted(s, model.FittedValues()))
	}
	if len(resid) < MinResidualSize {
		return 0
	}

	std := stat.StdDev(resid, nil)
	if math.IsNaN(std) {
		return 0
	}
	return std
}

func observedMinusFitted(s *timedataset.Series, fitted []float64) []float64 {
	if s.Len() == 0 || len(fitted) == 0 {
		return nil
	}
	n := min(s.Len(), len(fitted))
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		res[i] = s.Y[i] - fitted[i]
	}
	return res
}

func finite(x []float64) []float64 {
	res := make([]float64, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		res = append(res, v)
	}
	return res
}
