package forecaster

import (
	"errors"
	"fmt"

	"github.com/aouyang1/indicator-forecaster/forecast"
	"github.com/aouyang1/indicator-forecaster/stats"
)

const (
	DefaultLastActualYear  = 2022
	DefaultHorizon         = 2050
	DefaultMinPoints       = forecast.DefaultMinPoints
	DefaultConfidenceLevel = 0.95

	MethodAdditive       = "ets_additive"
	MethodAdditiveDamped = "ets_additive_damped"
)

var (
	ErrInvalidHorizon   = errors.New("horizon must be after the last actual year")
	ErrHorizonTooFar    = errors.New("horizon is too far after the last actual year")
	ErrInvalidMinPoints = errors.New("minimum points to fit must be at least 2")
)

// Options configures every series forecast in a run
type Options struct {
	// LastActualYear is the last observed year. Forecasts cover
	// [LastActualYear+1, Horizon].
	LastActualYear int `json:"last_actual_year" mapstructure:"last_actual"`

	// DeriveLastActualYear uses each series' own last observed year instead of
	// LastActualYear.
	DeriveLastActualYear bool `json:"derive_last_actual_year" mapstructure:"derive_last_actual"`

	// Horizon is the final forecast year, inclusive
	Horizon int `json:"horizon" mapstructure:"horizon"`

	MinPoints       int     `json:"min_points" mapstructure:"min_points"`
	ConfidenceLevel float64 `json:"confidence_level" mapstructure:"ci"`
	DampedTrend     bool    `json:"damped_trend" mapstructure:"damped_trend"`
}

// NewDefaultOptions returns the default run options
func NewDefaultOptions() *Options {
	return &Options{
		LastActualYear:  DefaultLastActualYear,
		Horizon:         DefaultHorizon,
		MinPoints:       DefaultMinPoints,
		ConfidenceLevel: DefaultConfidenceLevel,
	}
}

// Validate checks the options that make a whole run meaningless. Forecasting a single
// series never calls this, an empty window there just yields no points.
func (o *Options) Validate() error {
	if !o.DeriveLastActualYear && o.LastActualYear >= o.Horizon {
		return fmt.Errorf("last actual year %d, horizon %d, %w", o.LastActualYear, o.Horizon, ErrInvalidHorizon)
	}
	if !o.DeriveLastActualYear && o.Horizon-o.LastActualYear > forecast.MaxWindowYears {
		return fmt.Errorf("%d years to forecast, at most %d, %w", o.Horizon-o.LastActualYear, forecast.MaxWindowYears, ErrHorizonTooFar)
	}
	if o.MinPoints < 2 {
		return fmt.Errorf("got %d, %w", o.MinPoints, ErrInvalidMinPoints)
	}
	return nil
}

// Method returns the tag describing the fitted model form
func (o *Options) Method() string {
	if o.DampedTrend {
		return MethodAdditiveDamped
	}
	return MethodAdditive
}

// ZScore returns the band multiplier for the configured confidence level
func (o *Options) ZScore() float64 {
	return stats.ZScore(o.ConfidenceLevel)
}

func (o *Options) forecastOptions() *forecast.Options {
	opt := forecast.NewDefaultOptions()
	opt.MinPoints = o.MinPoints
	opt.Damped = o.DampedTrend
	return opt
}
