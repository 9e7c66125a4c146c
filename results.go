package forecaster

import (
	"github.com/aouyang1/indicator-forecaster/models"
	"github.com/aouyang1/indicator-forecaster/stats"
	"github.com/aouyang1/indicator-forecaster/timedataset"
)

// Point is a forecast for one year. Lower and Upper are nil when the residual spread
// could not be estimated.
type Point struct {
	Year  int      `json:"year"`
	Value float64  `json:"value"`
	Lower *float64 `json:"lower_bound"`
	Upper *float64 `json:"upper_bound"`
}

// Results holds everything produced while forecasting one series
type Results struct {
	LastActualYear int `json:"last_actual_year"`
	Horizon        int `json:"horizon"`

	History *timedataset.Series `json:"-"`
	Fitted  []float64           `json:"fitted"`
	Points  []Point             `json:"points"`

	Sigma   float64             `json:"sigma"`
	Summary *models.HoltSummary `json:"summary,omitempty"`
	Scores  *stats.Scores       `json:"scores,omitempty"`

	// SkipReason is set when no model could be fit
	SkipReason error `json:"-"`
}

// Skipped reports whether the series produced no model
func (r *Results) Skipped() bool {
	return r == nil || r.SkipReason != nil
}
