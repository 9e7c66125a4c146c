package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var ErrNoHistory = errors.New("no history to plot")

// missingValue leaves a gap in an echarts line
const missingValue = "-"

// LineForecast generates an echart line chart of the observed history, the in sample
// fit, and the forecast with its upper and lower bounds.
func LineForecast(title string, res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    title,
				Subtitle: fitSubtitle(res),
			},
		),
	)

	years := plotYears(res)
	actual := make([]opts.LineData, 0, len(years))
	fitted := make([]opts.LineData, 0, len(years))
	forecast := make([]opts.LineData, 0, len(years))
	upper := make([]opts.LineData, 0, len(years))
	lower := make([]opts.LineData, 0, len(years))

	points := make(map[int]Point, len(res.Points))
	for _, p := range res.Points {
		points[p.Year] = p
	}

	for _, year := range years {
		actualVal, fittedVal := any(missingValue), any(missingValue)
		if idx, ok := res.History.Index(year); ok {
			actualVal = res.History.Y[idx]
			if idx < len(res.Fitted) && !math.IsNaN(res.Fitted[idx]) {
				fittedVal = res.Fitted[idx]
			}
		}
		actual = append(actual, opts.LineData{Value: actualVal})
		fitted = append(fitted, opts.LineData{Value: fittedVal})

		forecastVal, upperVal, lowerVal := any(missingValue), any(missingValue), any(missingValue)
		if p, ok := points[year]; ok {
			forecastVal = p.Value
			if p.Upper != nil && p.Lower != nil {
				upperVal = *p.Upper
				lowerVal = *p.Lower
			}
		}
		forecast = append(forecast, opts.LineData{Value: forecastVal})
		upper = append(upper, opts.LineData{Value: upperVal})
		lower = append(lower, opts.LineData{Value: lowerVal})
	}

	line.SetXAxis(years).
		AddSeries("Actual", actual).
		AddSeries("Fitted", fitted).
		AddSeries("Forecast", forecast).
		AddSeries("Upper", upper).
		AddSeries("Lower", lower)
	return line
}

// plotYears spans the first observed year through the horizon
// fitSubtitle summarizes the in sample fit scores, or is empty when the series was not
// fit.
func fitSubtitle(res *Results) string {
	if res == nil || res.Scores == nil {
		return ""
	}
	return fmt.Sprintf("MSE %.4g, MAPE %.2f%%, R2 %.3f", res.Scores.MSE, 100*res.Scores.MAPE, res.Scores.R2)
}

func plotYears(res *Results) []int {
	first, ok := res.History.FirstYear()
	if !ok {
		return nil
	}
	last, _ := res.History.LastYear()
	if res.Horizon > last {
		last = res.Horizon
	}

	years := make([]int, 0, last-first+1)
	for year := first; year <= last; year++ {
		years = append(years, year)
	}
	return years
}

// PlotFit uses the Apache Echarts library to render an html page showing the history,
// fit and forecast for the series.
func (r *Results) PlotFit(w io.Writer, title string) error {
	if r == nil || r.History.Len() == 0 {
		return ErrNoHistory
	}

	page := components.NewPage()
	page.AddCharts(LineForecast(title, r))
	return page.Render(w)
}
