// Package stats estimates the uncertainty around point forecasts from the spread of the
// in-sample residuals and scores how well a model fits its training data.
package stats
