// Package models contains the exponential smoothing models fit by the forecaster
package models

import "github.com/aouyang1/indicator-forecaster/timedataset"

// YearValue is a single predicted value for a year. Value is NaN when the model cannot
// produce a finite prediction for that year.
type YearValue struct {
	Year  int
	Value float64
}

// Model is a fitted model. Its internal state is only reachable through predictions
// and residuals.
type Model interface {
	Predict(first, last int) []YearValue
	Residuals() []float64
	FittedValues() []float64
}

// Fitter fits a model against an annual series
type Fitter interface {
	Model
	Fit(s *timedataset.Series) error
}
