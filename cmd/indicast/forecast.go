package main

import (
	"fmt"
	"os"
	"path/filepath"

	forecaster "github.com/aouyang1/indicator-forecaster"
	"github.com/aouyang1/indicator-forecaster/pipeline"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func (a *app) newForecastCmd() *cobra.Command {
	var cpuProfile string

	cmd := &cobra.Command{
		Use:   "forecast INPUT_CSV OUTPUT_JSON",
		Short: "Forecast every entity and metric of a csv to a json array of records",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bindFlags(cmd.Flags(), forecastKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile != "" {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile), profile.Quiet).Stop()
			}
			return a.runForecast(cmd, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("metrics", pipeline.DefaultMetrics, "Metric columns to forecast, in output order")
	flags.Int("last-actual", forecaster.DefaultLastActualYear, "Last observed year, forecasts start the year after")
	flags.Bool("derive-last-actual", false, "Use each series' own last observed year as the last actual year")
	flags.Int("horizon", forecaster.DefaultHorizon, "Final forecast year, inclusive")
	flags.Int("min-points", forecaster.DefaultMinPoints, "Minimum observations needed to fit a series")
	flags.Float64("ci", forecaster.DefaultConfidenceLevel, "Confidence level of the bands: 0.90|0.95|0.975|0.99")
	flags.Bool("damped-trend", false, "Fit a damped additive trend")
	flags.Int("round", pipeline.DefaultRound, "Decimal places kept in values and bounds, -1 disables rounding")
	flags.String("entity-column", pipeline.DefaultEntityColumn, "Column holding the entity id")
	flags.String("year-column", pipeline.DefaultYearColumn, "Column holding the year")
	flags.Int("parallelism", 0, "Entities forecast at once, defaults to the number of cpus")
	flags.StringVar(&cpuProfile, "cpuprofile", "", "Write a cpu profile to this directory")
	return cmd
}

// forecastKeys maps forecast flags to their configuration keys
var forecastKeys = map[string]string{
	"metrics":            "metrics",
	"last-actual":        "last_actual",
	"derive-last-actual": "derive_last_actual",
	"horizon":            "horizon",
	"min-points":         "min_points",
	"ci":                 "ci",
	"damped-trend":       "damped_trend",
	"round":              "round",
	"entity-column":      "entity_column",
	"year-column":        "year_column",
	"parallelism":        "parallelism",
}

func (a *app) forecasterOptions() *forecaster.Options {
	return &forecaster.Options{
		LastActualYear:       a.v.GetInt("last_actual"),
		DeriveLastActualYear: a.v.GetBool("derive_last_actual"),
		Horizon:              a.v.GetInt("horizon"),
		MinPoints:            a.v.GetInt("min_points"),
		ConfidenceLevel:      a.v.GetFloat64("ci"),
		DampedTrend:          a.v.GetBool("damped_trend"),
	}
}

func (a *app) tableOptions() *pipeline.TableOptions {
	return &pipeline.TableOptions{
		EntityColumn: a.v.GetString("entity_column"),
		YearColumn:   a.v.GetString("year_column"),
		Metrics:      a.v.GetStringSlice("metrics"),
	}
}

func (a *app) pipelineOptions() *pipeline.Options {
	opt := pipeline.NewDefaultOptions()
	opt.Forecaster = a.forecasterOptions()
	opt.Precision = a.v.GetInt("round")
	if p := a.v.GetInt("parallelism"); p > 0 {
		opt.Parallelism = p
	}
	return opt
}

func (a *app) runForecast(cmd *cobra.Command, input, output string) error {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	opt := a.pipelineOptions()
	if err := opt.Forecaster.Validate(); err != nil {
		return err
	}

	table, err := readTable(input, a.tableOptions())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	sink := pipeline.NewJSONSink(f)
	summary, err := pipeline.Run(ctx, table, sink, opt)
	if err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info().Str("output", output).Msg("wrote forecasts")
	fmt.Fprintf(cmd.OutOrStdout(), "processed_entities=%d predictions=%d\n", summary.Entities, summary.Records)
	return nil
}

func readTable(path string, opt *pipeline.TableOptions) (*pipeline.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := pipeline.ReadTable(f, opt)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s, %w", path, err)
	}
	return table, nil
}
