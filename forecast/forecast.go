// Package forecast fits an additive trend exponential smoothing model to one annual
// series and predicts a window of future years. Anything that prevents a fit is
// reported as a skipped result instead of an error so batches keep going.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/indicator-forecaster/models"
	"github.com/aouyang1/indicator-forecaster/timedataset"
)

// MaxWindowYears is the longest forecast window, in years, a series is predicted over
const MaxWindowYears = 1000

var (
	ErrInsufficientPoints = errors.New("insufficient observations to fit")
	ErrEmptyWindow        = errors.New("last actual year is not before the horizon")
	ErrWindowTooLong      = errors.New("forecast window is too long")
	ErrFitFailed          = errors.New("unable to fit model")
)

// Result is either a fitted model or the reason the series was skipped.
type Result struct {
	model  models.Model
	reason error
}

// Fitted wraps a fitted model in a Result
func Fitted(m models.Model) Result {
	return Result{model: m}
}

// Skip wraps the reason a series could not be forecast in a Result
func Skip(reason error) Result {
	if reason == nil {
		reason = ErrFitFailed
	}
	return Result{reason: reason}
}

// Model returns the fitted model and false if the series was skipped.
func (r Result) Model() (models.Model, bool) {
	if r.reason != nil || r.model == nil {
		return nil, false
	}
	return r.model, true
}

// Reason returns why the series was skipped, or nil for a fitted result.
func (r Result) Reason() error {
	if r.reason == nil && r.model == nil {
		return ErrFitFailed
	}
	return r.reason
}

// IsSkipped reports whether no model is available
func (r Result) IsSkipped() bool {
	_, ok := r.Model()
	return !ok
}

// FitAndPredict fits the series when it has enough points and the forecast window
// [lastActualYear+1, horizon] is neither empty nor longer than MaxWindowYears. A fit that fails or panics is returned as
// a skipped result wrapping ErrFitFailed.
func FitAndPredict(s *timedataset.Series, lastActualYear, horizon int, opt *Options) (res Result) {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	defer func() {
		if r := recover(); r != nil {
			res = Skip(fmt.Errorf("recovered from %v, %w", r, ErrFitFailed))
		}
	}()

	if s.Len() < opt.MinPoints {
		return Skip(fmt.Errorf("have %d points but need %d, %w", s.Len(), opt.MinPoints, ErrInsufficientPoints))
	}
	if lastActualYear >= horizon {
		return Skip(fmt.Errorf("last actual year %d, horizon %d, %w", lastActualYear, horizon, ErrEmptyWindow))
	}
	if horizon-lastActualYear > MaxWindowYears {
		return Skip(fmt.Errorf("%d years to horizon %d, %w", horizon-lastActualYear, horizon, ErrWindowTooLong))
	}

	var h models.Fitter = models.NewHolt(opt.holtOptions())
	if err := h.Fit(s); err != nil {
		return Skip(fmt.Errorf("%w, %w", ErrFitFailed, err))
	}
	return Fitted(h)
}

// Predict returns one value per year in [first, last] in ascending order. Values the
// model cannot produce as finite numbers are reported as NaN. Windows longer than
// MaxWindowYears return nothing.
func Predict(m models.Model, first, last int) []models.YearValue {
	if m == nil || last < first || last-first >= MaxWindowYears {
		return nil
	}

	res := m.Predict(first, last)
	for i := range res {
		if math.IsInf(res[i].Value, 0) {
			res[i].Value = math.NaN()
		}
	}
	return res
}
