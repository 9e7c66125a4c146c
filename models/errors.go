package models

import (
	"errors"
)

var (
	ErrNoOptions          = errors.New("no initialized model options")
	ErrInsufficientData   = errors.New("need at least 2 observations to fit")
	ErrNonFiniteData      = errors.New("series contains non-finite values")
	ErrOptimizationFailed = errors.New("parameter optimization failed")
	ErrNonFiniteFit       = errors.New("fit produced non-finite state")
	ErrUntrainedModel     = errors.New("model has not been fit yet")
)
