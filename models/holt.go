package models

import (
	"fmt"
	"math"

	"github.com/aouyang1/indicator-forecaster/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

const (
	MinDampingTrend = 0.8
	MaxDampingTrend = 0.98

	DefaultMaxEvaluations = 5000
	DefaultRestarts       = 2
	DefaultTolerance      = 1e-12

	startSmoothingLevel = 0.5
	startSmoothingTrend = 0.1
	startDampingTrend   = 0.9
)

// HoltOptions configures the additive trend exponential smoothing fit.
type HoltOptions struct {
	Damped bool `json:"damped"`

	// optimizer limits
	MaxEvaluations int     `json:"max_evaluations"`
	Restarts       int     `json:"restarts"`
	Tolerance      float64 `json:"tolerance"`
}

func NewDefaultHoltOptions() *HoltOptions {
	return &HoltOptions{
		MaxEvaluations: DefaultMaxEvaluations,
		Restarts:       DefaultRestarts,
		Tolerance:      DefaultTolerance,
	}
}

// HoltParams are the estimated smoothing parameters and initial states. Phi is 1 for an
// undamped trend.
type HoltParams struct {
	Alpha        float64 `json:"smoothing_level"`
	Beta         float64 `json:"smoothing_trend"`
	Phi          float64 `json:"damping_trend"`
	InitialLevel float64 `json:"initial_level"`
	InitialTrend float64 `json:"initial_trend"`
}

// HoltSummary describes a fit
type HoltSummary struct {
	Params HoltParams `json:"params"`
	Damped bool       `json:"damped"`
	NObs   int        `json:"nobs"`
	SSE    float64    `json:"sse"`
	AIC    float64    `json:"aic"`
	AICc   float64    `json:"aicc"`
	BIC    float64    `json:"bic"`
}

// Holt is Holt's linear method: exponential smoothing with an additive, optionally
// damped, trend and no seasonal component. Each observation in the series is one
// step, so missing years shorten the series rather than adding steps.
type Holt struct {
	opt *HoltOptions

	params HoltParams

	years     []int
	y         []float64
	fitted    []float64
	residuals []float64

	level float64
	trend float64
	sse   float64

	trained bool
}

var _ Fitter = (*Holt)(nil)

// NewHolt creates a new Holt model with the given options. If none are provided a
// default is used.
func NewHolt(opt *HoltOptions) *Holt {
	if opt == nil {
		opt = NewDefaultHoltOptions()
	}
	return &Holt{opt: opt}
}

// Fit estimates the smoothing parameters by minimizing the sum of squared one step
// ahead errors. The initial level and trend are not estimated, they are fixed to the
// first observation and the first difference.
func (h *Holt) Fit(s *timedataset.Series) error {
	if h.opt == nil {
		return ErrNoOptions
	}
	if s.Len() < 2 {
		return fmt.Errorf("series has %d observations, %w", s.Len(), ErrInsufficientData)
	}
	for _, v := range s.Y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteData
		}
	}

	// fit on a standardized copy to keep the objective well scaled
	center, scale := stat.MeanStdDev(s.Y, nil)
	if math.IsNaN(scale) || scale <= 0 {
		scale = 1.0
	}
	z := make([]float64, len(s.Y))
	copy(z, s.Y)
	floats.AddConst(-center, z)
	floats.Scale(1.0/scale, z)

	params, err := h.optimize(z)
	if err != nil {
		return err
	}

	params.InitialLevel, params.InitialTrend = initialStates(s.Y)

	fitted := make([]float64, len(s.Y))
	sse, level, trend := holtFilter(s.Y, params, fitted)
	if !isFinite(sse) || !isFinite(level) || !isFinite(trend) {
		return ErrNonFiniteFit
	}

	residuals := make([]float64, len(s.Y))
	floats.SubTo(residuals, s.Y, fitted)

	h.params = params
	h.years = make([]int, len(s.Years))
	copy(h.years, s.Years)
	h.y = make([]float64, len(s.Y))
	copy(h.y, s.Y)
	h.fitted = fitted
	h.residuals = residuals
	h.level = level
	h.trend = trend
	h.sse = sse
	h.trained = true
	return nil
}

func (h *Holt) optimize(z []float64) (HoltParams, error) {
	x := h.initialX()
	l0, b0 := initialStates(z)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p := h.decode(x, l0, b0)
			sse, _, _ := holtFilter(z, p, nil)
			if !isFinite(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}

	best := math.Inf(1)
	for i := 0; i <= h.opt.Restarts; i++ {
		settings := &optimize.Settings{
			FuncEvaluations: h.opt.MaxEvaluations,
			Converger: &optimize.FunctionConverge{
				Absolute:   h.opt.Tolerance,
				Relative:   h.opt.Tolerance,
				Iterations: 200,
			},
		}
		res, err := optimize.Minimize(problem, x, settings, &optimize.NelderMead{})
		if res == nil || (err != nil && !isLimitStatus(res.Status)) {
			return HoltParams{}, fmt.Errorf("%w, %v", ErrOptimizationFailed, err)
		}
		if !isFinite(res.F) || floats.HasNaN(res.X) || res.F >= best {
			break
		}

		improved := best-res.F > h.opt.Tolerance
		best = res.F
		x = res.X
		if !improved {
			break
		}
	}
	if math.IsInf(best, 1) {
		return HoltParams{}, ErrOptimizationFailed
	}
	return h.decode(x, l0, b0), nil
}

// initialX encodes the starting point for the optimizer. Smoothing parameters are
// mapped through the logit so the search is unconstrained.
func (h *Holt) initialX() []float64 {
	x := []float64{
		logit(startSmoothingLevel),
		logit(startSmoothingTrend / startSmoothingLevel),
	}
	if h.opt.Damped {
		x = append(x, logit((startDampingTrend-MinDampingTrend)/(MaxDampingTrend-MinDampingTrend)))
	}
	return x
}

func (h *Holt) decode(x []float64, l0, b0 float64) HoltParams {
	p := HoltParams{
		Alpha:        sigmoid(x[0]),
		Phi:          1.0,
		InitialLevel: l0,
		InitialTrend: b0,
	}
	// trend smoothing never exceeds level smoothing
	p.Beta = p.Alpha * sigmoid(x[1])

	if h.opt.Damped {
		p.Phi = MinDampingTrend + (MaxDampingTrend-MinDampingTrend)*sigmoid(x[2])
	}
	return p
}

// initialStates is the level and trend before the first observation. A series with a
// trend is never fit exactly at its first step.
func initialStates(y []float64) (float64, float64) {
	return y[0], y[1] - y[0]
}

// holtFilter runs the smoothing recursion over y, optionally storing the one step ahead
// fitted values, and returns the sum of squared errors with the final level and trend.
func holtFilter(y []float64, p HoltParams, fitted []float64) (float64, float64, float64) {
	var sse float64
	l, b := p.InitialLevel, p.InitialTrend
	for i, v := range y {
		yhat := l + p.Phi*b
		if fitted != nil {
			fitted[i] = yhat
		}
		e := v - yhat
		sse += e * e

		// error correction form keeps a perfect fit exact
		prevL := l
		l = yhat + p.Alpha*e
		b = p.Phi*b + p.Beta*(l-prevL-p.Phi*b)
	}
	return sse, l, b
}

// Predict returns a value for every year in [first, last]. Years after the last fitted
// year are forecast from the final state, years inside the fit window return the in
// sample fitted value, and years the model has no value for are NaN.
func (h *Holt) Predict(first, last int) []YearValue {
	if h == nil || !h.trained || last < first {
		return nil
	}

	lastYear := h.years[len(h.years)-1]
	res := make([]YearValue, 0, last-first+1)
	for year := first; year <= last; year++ {
		val := math.NaN()
		if year > lastYear {
			val = h.level + h.trendMultiplier(year-lastYear)*h.trend
		} else if idx, ok := h.index(year); ok {
			val = h.fitted[idx]
		}
		res = append(res, YearValue{Year: year, Value: val})
	}
	return res
}

// trendMultiplier is phi + phi^2 + ... + phi^steps, or steps for an undamped trend.
func (h *Holt) trendMultiplier(steps int) float64 {
	phi := h.params.Phi
	if phi == 1.0 {
		return float64(steps)
	}
	var m, p float64 = 0, 1
	for i := 0; i < steps; i++ {
		p *= phi
		m += p
	}
	return m
}

func (h *Holt) index(year int) (int, bool) {
	for i, y := range h.years {
		if y == year {
			return i, true
		}
		if y > year {
			break
		}
	}
	return 0, false
}

// Residuals returns the observed minus fitted values over the fit window
func (h *Holt) Residuals() []float64 {
	if h == nil || !h.trained {
		return nil
	}
	res := make([]float64, len(h.residuals))
	copy(res, h.residuals)
	return res
}

// FittedValues returns the one step ahead fitted values over the fit window
func (h *Holt) FittedValues() []float64 {
	if h == nil || !h.trained {
		return nil
	}
	res := make([]float64, len(h.fitted))
	copy(res, h.fitted)
	return res
}

// Params returns the estimated parameters
func (h *Holt) Params() HoltParams {
	if h == nil {
		return HoltParams{}
	}
	return h.params
}

// Summary returns the estimated parameters along with information criteria assuming
// gaussian errors.
func (h *Holt) Summary() (HoltSummary, error) {
	if h == nil || !h.trained {
		return HoltSummary{}, ErrUntrainedModel
	}

	n := float64(len(h.y))
	k := 2.0
	if h.opt.Damped {
		k++
	}

	sm := HoltSummary{
		Params: h.params,
		Damped: h.opt.Damped,
		NObs:   len(h.y),
		SSE:    h.sse,
	}

	if h.sse > 0 {
		logLik := -n / 2 * (math.Log(2*math.Pi) + math.Log(h.sse/n) + 1)
		sm.AIC = -2*logLik + 2*k
		sm.BIC = -2*logLik + k*math.Log(n)
	} else {
		sm.AIC = math.Inf(-1)
		sm.BIC = math.Inf(-1)
	}

	if n-k-1 > 0 {
		sm.AICc = sm.AIC + 2*k*(k+1)/(n-k-1)
	} else {
		sm.AICc = math.Inf(1)
	}
	return sm, nil
}

func isLimitStatus(s optimize.Status) bool {
	switch s {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return true
	default:
		return false
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1.0 - p))
}
