package forecast

import "github.com/aouyang1/indicator-forecaster/models"

const DefaultMinPoints = 3

// Options configures a single series fit
type Options struct {
	// MinPoints is the fewest finite observations a series needs before a model is fit
	MinPoints int `json:"min_points"`

	// Damped damps the additive trend so long horizons flatten out
	Damped bool `json:"damped"`

	// HoltOptions overrides the optimizer limits. Damped always takes precedence over
	// the value set here.
	HoltOptions *models.HoltOptions `json:"holt_options,omitempty"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		MinPoints: DefaultMinPoints,
	}
}

func (o *Options) holtOptions() *models.HoltOptions {
	opt := models.NewDefaultHoltOptions()
	if o.HoltOptions != nil {
		copied := *o.HoltOptions
		opt = &copied
	}
	opt.Damped = o.Damped
	return opt
}
