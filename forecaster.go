// Package forecaster forecasts annual indicator series one at a time. Each series is
// cleaned, fit with additive trend exponential smoothing, and extended to the horizon
// with a symmetric band derived from the in-sample residuals.
package forecaster

import (
	"fmt"
	"math"

	"github.com/aouyang1/indicator-forecaster/forecast"
	"github.com/aouyang1/indicator-forecaster/models"
	"github.com/aouyang1/indicator-forecaster/stats"
	"github.com/aouyang1/indicator-forecaster/timedataset"
)

type summarizer interface {
	Summary() (models.HoltSummary, error)
}

// Forecaster forecasts independent series with a shared set of options. It holds no
// per-series state and is safe for concurrent use.
type Forecaster struct {
	opt *Options
}

// New creates a new instance of a Forecaster using the provided options. If no options are
// provided a default is used.
func New(opt *Options) *Forecaster {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	return &Forecaster{opt: opt}
}

// Options returns the options the forecaster was created with
func (f *Forecaster) Options() *Options {
	return f.opt
}

// ForecastOne returns the forecast points for one series in ascending year order. The
// slice is empty when the series is skipped and never contains a year without a
// finite value.
func (f *Forecaster) ForecastOne(obs timedataset.Observations) []Point {
	return f.Forecast(obs).Points
}

// Forecast is ForecastOne but also returns the training history, fitted values and
// model summary. Failures are reported through SkipReason and never panic.
func (f *Forecaster) Forecast(obs timedataset.Observations) (res *Results) {
	res = &Results{
		LastActualYear: f.opt.LastActualYear,
		Horizon:        f.opt.Horizon,
	}

	defer func() {
		if r := recover(); r != nil {
			res.Points = nil
			res.SkipReason = fmt.Errorf("recovered from %v, %w", r, forecast.ErrFitFailed)
		}
	}()

	s := timedataset.Build(obs)
	res.History = s
	res.LastActualYear = f.lastActualYear(s)

	fr := forecast.FitAndPredict(s, res.LastActualYear, res.Horizon, f.opt.forecastOptions())
	m, ok := fr.Model()
	if !ok {
		res.SkipReason = fr.Reason()
		return res
	}

	res.Fitted = m.FittedValues()
	if sm, ok := m.(summarizer); ok {
		if summary, err := sm.Summary(); err == nil {
			res.Summary = &summary
		}
	}
	if scores, err := stats.NewScores(res.Fitted, s.Y); err == nil {
		res.Scores = scores
	}

	res.Sigma = stats.ResidualStd(m, s)

	predicted := forecast.Predict(m, res.LastActualYear+1, res.Horizon)
	res.Points = make([]Point, 0, len(predicted))
	for _, yv := range predicted {
		if math.IsNaN(yv.Value) {
			continue
		}
		lower, upper := stats.Bounds(yv.Value, res.Sigma, f.opt.ConfidenceLevel)
		res.Points = append(res.Points, Point{
			Year:  yv.Year,
			Value: yv.Value,
			Lower: lower,
			Upper: upper,
		})
	}
	return res
}

func (f *Forecaster) lastActualYear(s *timedataset.Series) int {
	if !f.opt.DeriveLastActualYear {
		return f.opt.LastActualYear
	}
	if last, ok := s.LastYear(); ok {
		return last
	}
	return f.opt.LastActualYear
}
