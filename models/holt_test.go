package models

import (
	"math"
	"testing"

	"github.com/aouyang1/indicator-forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeries(t *testing.T, years []int, y []float64) *timedataset.Series {
	t.Helper()
	s, err := timedataset.NewAnnualDataset(years, y)
	require.Nil(t, err)
	return s
}

func TestHoltFitErrors(t *testing.T) {
	testData := map[string]struct {
		opt    *HoltOptions
		series *timedataset.Series
		err    error
	}{
		"nil series": {
			series: nil,
			err:    ErrInsufficientData,
		},
		"single point": {
			series: &timedataset.Series{Years: []int{2000}, Y: []float64{1}},
			err:    ErrInsufficientData,
		},
		"non finite values": {
			series: &timedataset.Series{Years: []int{2000, 2001, 2002}, Y: []float64{1, math.NaN(), 3}},
			err:    ErrNonFiniteData,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h := NewHolt(td.opt)
			err := h.Fit(td.series)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, h.Predict(2001, 2003))
			assert.Nil(t, h.Residuals())
			assert.Nil(t, h.FittedValues())
		})
	}
}

func TestHoltFitNoOptions(t *testing.T) {
	h := &Holt{}
	err := h.Fit(mustSeries(t, []int{2000, 2001}, []float64{1, 2}))
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestHoltLinearTrend(t *testing.T) {
	testData := map[string]struct {
		years    []int
		y        []float64
		first    int
		last     int
		expected []float64
	}{
		"increasing": {
			years:    []int{2018, 2019, 2020, 2021, 2022},
			y:        []float64{1, 2, 3, 4, 5},
			first:    2023,
			last:     2024,
			expected: []float64{6, 7},
		},
		"decreasing large scale": {
			years:    []int{2010, 2011, 2012, 2013, 2014, 2015},
			y:        []float64{1000, 950, 900, 850, 800, 750},
			first:    2016,
			last:     2018,
			expected: []float64{700, 650, 600},
		},
		"constant": {
			years:    []int{2000, 2001, 2002, 2003},
			y:        []float64{3, 3, 3, 3},
			first:    2004,
			last:     2005,
			expected: []float64{3, 3},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h := NewHolt(nil)
			require.Nil(t, h.Fit(mustSeries(t, td.years, td.y)))

			res := h.Predict(td.first, td.last)
			require.Len(t, res, len(td.expected))
			for i, yv := range res {
				assert.Equal(t, td.first+i, yv.Year)
				assert.InDelta(t, td.expected[i], yv.Value, math.Abs(td.expected[i])*0.01+0.05)
			}

			p := h.Params()
			assert.Equal(t, 1.0, p.Phi)
			assert.GreaterOrEqual(t, p.Alpha, 0.0)
			assert.LessOrEqual(t, p.Alpha, 1.0)
			assert.LessOrEqual(t, p.Beta, p.Alpha)
		})
	}
}

func TestHoltInitialStates(t *testing.T) {
	testData := map[string]struct {
		y      []float64
		damped bool
	}{
		"increasing":        {y: []float64{1, 2, 3, 4, 5}},
		"offset increasing": {y: []float64{10, 11, 12, 13, 14}},
		"large scale":       {y: []float64{100, 200, 300, 400, 500}},
		"decreasing":        {y: []float64{5, 4, 3, 2, 1}},
		"damped increasing": {y: []float64{1, 2, 3, 4, 5}, damped: true},
		"irregular":         {y: []float64{2, 2.5, 4.1, 3.9}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := NewDefaultHoltOptions()
			opt.Damped = td.damped
			h := NewHolt(opt)
			require.Nil(t, h.Fit(mustSeries(t, timedataset.GenerateYears(2000, len(td.y)), td.y)))

			trend := td.y[1] - td.y[0]
			p := h.Params()
			assert.Equal(t, td.y[0], p.InitialLevel)
			assert.Equal(t, trend, p.InitialTrend)

			// the first step forecasts y0 + phi*b0 from fixed states, so a trending series
			// never fits exactly
			residuals := h.Residuals()
			assert.InDelta(t, -p.Phi*trend, residuals[0], 1e-9)

			sm, err := h.Summary()
			require.Nil(t, err)
			assert.Greater(t, sm.SSE, 0.0)
		})
	}
}

func TestHoltDampedTrend(t *testing.T) {
	years := timedataset.GenerateYears(2000, 15)
	y := timedataset.GenerateLinearY(15, 10, 2).Add(timedataset.GenerateNoise(15, 0.3, 3))

	opt := NewDefaultHoltOptions()
	opt.Damped = true
	h := NewHolt(opt)
	require.Nil(t, h.Fit(mustSeries(t, years, y)))

	p := h.Params()
	assert.GreaterOrEqual(t, p.Phi, MinDampingTrend)
	assert.LessOrEqual(t, p.Phi, MaxDampingTrend)

	res := h.Predict(2015, 2030)
	require.Len(t, res, 16)

	// increments shrink geometrically under a damped trend
	prevStep := math.Abs(res[1].Value - res[0].Value)
	for i := 2; i < len(res); i++ {
		step := math.Abs(res[i].Value - res[i-1].Value)
		assert.LessOrEqual(t, step, prevStep+1e-9)
		prevStep = step
	}

	sm, err := h.Summary()
	require.Nil(t, err)
	assert.True(t, sm.Damped)
	assert.Equal(t, 15, sm.NObs)
	assert.Greater(t, sm.SSE, 0.0)
	assert.False(t, math.IsNaN(sm.AIC))
	assert.Greater(t, sm.AICc, sm.AIC)
}

func TestHoltPredictWindow(t *testing.T) {
	h := NewHolt(nil)
	require.Nil(t, h.Fit(mustSeries(t, []int{2000, 2002, 2003, 2004}, []float64{1, 3, 4, 5})))

	fitted := h.FittedValues()
	residuals := h.Residuals()
	require.Len(t, fitted, 4)
	require.Len(t, residuals, 4)
	for i, v := range []float64{1, 3, 4, 5} {
		assert.InDelta(t, v-fitted[i], residuals[i], 1e-12)
	}

	res := h.Predict(2001, 2005)
	require.Len(t, res, 5)

	// gap year inside the fit window has no value
	assert.True(t, math.IsNaN(res[0].Value))
	assert.Equal(t, fitted[1], res[1].Value)
	assert.Equal(t, fitted[3], res[3].Value)
	assert.False(t, math.IsNaN(res[4].Value))

	assert.Empty(t, h.Predict(2010, 2009))
}

func TestHoltCopiesState(t *testing.T) {
	h := NewHolt(nil)
	require.Nil(t, h.Fit(mustSeries(t, []int{2000, 2001, 2002}, []float64{1, 2, 4})))

	r := h.Residuals()
	r[0] = 100
	assert.NotEqual(t, 100.0, h.Residuals()[0])
}

func TestTrendMultiplier(t *testing.T) {
	testData := map[string]struct {
		phi      float64
		steps    int
		expected float64
	}{
		"undamped":      {phi: 1.0, steps: 3, expected: 3},
		"damped 1 step": {phi: 0.9, steps: 1, expected: 0.9},
		"damped 3 step": {phi: 0.9, steps: 3, expected: 0.9 + 0.81 + 0.729},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h := &Holt{params: HoltParams{Phi: td.phi}}
			assert.InDelta(t, td.expected, h.trendMultiplier(td.steps), 1e-12)
		})
	}
}

func TestSummaryUntrained(t *testing.T) {
	_, err := NewHolt(nil).Summary()
	assert.ErrorIs(t, err, ErrUntrainedModel)
}

func TestSigmoidLogit(t *testing.T) {
	for _, p := range []float64{0.1, 0.5, 0.9} {
		assert.InDelta(t, p, sigmoid(logit(p)), 1e-12)
	}
}
