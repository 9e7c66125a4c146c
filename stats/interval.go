package stats

import "math"

// DefaultZScore is used for any confidence level outside the lookup table
const DefaultZScore = 1.96

// zScores maps the supported confidence levels to a z multiplier. 0.975 maps to 2.24.
var zScores = map[float64]float64{
	0.90:  1.645,
	0.95:  1.96,
	0.975: 2.24,
	0.99:  2.576,
}

// ZScore returns the multiplier for a confidence level
func ZScore(level float64) float64 {
	if z, exists := zScores[level]; exists {
		return z
	}
	return DefaultZScore
}

// Bounds returns the symmetric band value ± z*sigma. Both bounds are nil when sigma is
// not a positive finite number, meaning the uncertainty could not be estimated.
func Bounds(value, sigma, level float64) (*float64, *float64) {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma <= 0 {
		return nil, nil
	}
	z := ZScore(level)
	lower := value - z*sigma
	upper := value + z*sigma
	return &lower, &upper
}
