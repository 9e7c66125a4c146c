package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	forecaster "github.com/aouyang1/indicator-forecaster"
	"github.com/aouyang1/indicator-forecaster/pipeline"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInput = "entity_id,year,gmi_score,wri_score,gmi_rank\n" +
	"AAA,2018,1,10,5\n" +
	"AAA,2019,2,11,4\n" +
	"AAA,2020,3,12.5,3\n" +
	"AAA,2021,4,13,2\n" +
	"AAA,2022,5,14.2,1\n" +
	"BBB,2021,7,,9\n" +
	"BBB,2022,8,,9\n"

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.Nil(t, os.WriteFile(path, []byte(testInput), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "disabled"))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func readRecords(t *testing.T, path string) []pipeline.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.Nil(t, err)

	var records []pipeline.Record
	require.Nil(t, json.Unmarshal(data, &records))
	return records
}

func TestForecastCmd(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "out", "forecasts.json")

	stdout, err := execute(t, "forecast", input, output,
		"--horizon", "2025",
		"--parallelism", "2",
	)
	require.Nil(t, err)
	assert.Equal(t, "processed_entities=2 predictions=6\n", stdout)

	records := readRecords(t, output)
	require.Len(t, records, 6)

	var keys []string
	for _, r := range records {
		keys = append(keys, r.EntityID+"/"+r.Metric)
		assert.NotEqual(t, "gmi_rank", r.Metric)
		assert.Equal(t, forecaster.MethodAdditive, r.Method)
		require.NotNil(t, r.Value)
	}
	assert.Equal(t, []string{
		"AAA/gmi_score", "AAA/gmi_score", "AAA/gmi_score",
		"AAA/wri_score", "AAA/wri_score", "AAA/wri_score",
	}, keys)
	assert.InDelta(t, 6.0, *records[0].Value, 0.05)
	assert.Equal(t, 2023, records[0].Year)
	assert.Equal(t, 2025, records[2].Year)
}

func TestForecastCmdFlags(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "forecasts.json")

	_, err := execute(t, "forecast", input, output,
		"--metrics", "gmi_score",
		"--horizon", "2024",
		"--min-points", "2",
		"--damped-trend",
		"--round", "1",
	)
	require.Nil(t, err)

	records := readRecords(t, output)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "gmi_score", r.Metric)
		assert.Equal(t, forecaster.MethodAdditiveDamped, r.Method)
		assert.Equal(t, pipeline.Round(*r.Value, 1), *r.Value)
	}
	assert.Equal(t, "AAA", records[0].EntityID)
	assert.Equal(t, "BBB", records[3].EntityID)
}

func TestForecastCmdConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "indicast.yaml")
	require.Nil(t, os.WriteFile(config, []byte("horizon: 2024\nmetrics:\n  - wri_score\n"), 0o644))

	input := writeInput(t)
	output := filepath.Join(dir, "forecasts.json")

	_, err := execute(t, "forecast", input, output, "--config", config)
	require.Nil(t, err)

	records := readRecords(t, output)
	require.Len(t, records, 2)
	assert.Equal(t, "wri_score", records[0].Metric)
}

func TestForecastCmdEnv(t *testing.T) {
	t.Setenv("INDICAST_HORIZON", "2023")

	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "forecasts.json")

	stdout, err := execute(t, "forecast", input, output)
	require.Nil(t, err)
	assert.Equal(t, "processed_entities=2 predictions=2\n", stdout)
}

func TestForecastCmdErrors(t *testing.T) {
	input := writeInput(t)

	testData := map[string]struct {
		args []string
		err  error
		msg  string
	}{
		"horizon before last actual": {
			args: []string{"--horizon", "2020"},
			err:  forecaster.ErrInvalidHorizon,
		},
		"horizon too far": {
			args: []string{"--horizon", "100000"},
			err:  forecaster.ErrHorizonTooFar,
		},
		"min points": {
			args: []string{"--min-points", "1"},
			err:  forecaster.ErrInvalidMinPoints,
		},
		"missing metrics": {
			args: []string{"--metrics", "nope"},
			err:  pipeline.ErrNoMetrics,
		},
		"missing columns": {
			args: []string{"--entity-column", "iso3"},
			err:  pipeline.ErrMissingColumns,
		},
		"invalid log level": {
			args: []string{"--log-level", "loud"},
			msg:  "invalid --log-level",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "forecasts.json")
			var stderr bytes.Buffer
			cmd := newRootCmd("test")
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&stderr)
			cmd.SetArgs(append([]string{"forecast", input, output}, td.args...))

			err := cmd.ExecuteContext(context.Background())
			require.NotNil(t, err)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
			}
			if td.msg != "" {
				assert.Contains(t, err.Error(), td.msg)
			}
		})
	}
}

func TestForecastCmdMissingInput(t *testing.T) {
	output := filepath.Join(t.TempDir(), "forecasts.json")
	_, err := execute(t, "forecast", filepath.Join(t.TempDir(), "missing.csv"), output)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPlotCmd(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "plots", "aaa.html")

	_, err := execute(t, "plot", input, output,
		"--entity", "aaa",
		"--metric", "gmi_score",
		"--horizon", "2030",
	)
	require.Nil(t, err)

	data, err := os.ReadFile(output)
	require.Nil(t, err)
	html := string(data)
	assert.True(t, strings.Contains(html, "AAA gmi_score"))
	assert.True(t, strings.Contains(html, "Forecast"))
}

func TestPlotCmdErrors(t *testing.T) {
	input := writeInput(t)

	testData := map[string]struct {
		args []string
		err  error
	}{
		"no entity": {
			args: []string{"--metric", "gmi_score"},
			err:  ErrNoEntity,
		},
		"no metric": {
			args: []string{"--entity", "AAA"},
			err:  ErrNoMetric,
		},
		"unknown entity": {
			args: []string{"--entity", "ZZZ", "--metric", "gmi_score"},
			err:  forecaster.ErrNoHistory,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			output := filepath.Join(t.TempDir(), "plot.html")
			_, err := execute(t, append([]string{"plot", input, output}, td.args...)...)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, err := execute(t, "version")
	require.Nil(t, err)
	assert.Equal(t, "indicast test\n", stdout)
}
