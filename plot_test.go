package forecaster

import (
	"bytes"
	"testing"

	"github.com/aouyang1/indicator-forecaster/stats"
	"github.com/aouyang1/indicator-forecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotYears(t *testing.T) {
	testData := map[string]struct {
		res      *Results
		expected []int
	}{
		"empty history": {
			res:      &Results{History: timedataset.Build(nil), Horizon: 2030},
			expected: nil,
		},
		"history through horizon": {
			res:      &Results{History: timedataset.Build(timedataset.Observations{2020: 1, 2022: 2}), Horizon: 2024},
			expected: []int{2020, 2021, 2022, 2023, 2024},
		},
		"horizon inside history": {
			res:      &Results{History: timedataset.Build(timedataset.Observations{2020: 1, 2022: 2}), Horizon: 2019},
			expected: []int{2020, 2021, 2022},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, plotYears(td.res))
		})
	}
}

func TestPlotFit(t *testing.T) {
	opt := &Options{LastActualYear: 2019, Horizon: 2025, MinPoints: 3, ConfidenceLevel: 0.95}
	res := New(opt).Forecast(noisyObservations(2000, 20, 3))
	require.False(t, res.Skipped())

	var buf bytes.Buffer
	require.Nil(t, res.PlotFit(&buf, "AAA score"))
	assert.Contains(t, buf.String(), "AAA score")
	assert.Contains(t, buf.String(), "Forecast")
	assert.Contains(t, buf.String(), fitSubtitle(res))

	var empty *Results
	assert.ErrorIs(t, empty.PlotFit(&buf, "none"), ErrNoHistory)
	assert.ErrorIs(t, (&Results{History: timedataset.Build(nil)}).PlotFit(&buf, "none"), ErrNoHistory)
}

func TestFitSubtitle(t *testing.T) {
	testData := map[string]struct {
		res      *Results
		expected string
	}{
		"nil results": {
			res:      nil,
			expected: "",
		},
		"skipped": {
			res:      &Results{},
			expected: "",
		},
		"scored": {
			res:      &Results{Scores: &stats.Scores{MSE: 0.25, MAPE: 0.1, R2: 0.9}},
			expected: "MSE 0.25, MAPE 10.00%, R2 0.900",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, fitSubtitle(td.res))
		})
	}
}
