package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	forecaster "github.com/aouyang1/indicator-forecaster"
	"github.com/aouyang1/indicator-forecaster/pipeline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	ErrNoEntity = errors.New("--entity is required")
	ErrNoMetric = errors.New("--metric is required")
)

// plotKeys maps plot flags to their configuration keys
var plotKeys = map[string]string{
	"last-actual":        "last_actual",
	"derive-last-actual": "derive_last_actual",
	"horizon":            "horizon",
	"min-points":         "min_points",
	"ci":                 "ci",
	"damped-trend":       "damped_trend",
	"entity-column":      "entity_column",
	"year-column":        "year_column",
}

func (a *app) newPlotCmd() *cobra.Command {
	var entity, metric string

	cmd := &cobra.Command{
		Use:   "plot INPUT_CSV OUTPUT_HTML",
		Short: "Render the history, fit and forecast of one series as an html chart",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return a.bindFlags(cmd.Flags(), plotKeys)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlot(cmd, args[0], args[1], entity, metric)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&entity, "entity", "", "Entity id of the series to plot")
	flags.StringVar(&metric, "metric", "", "Metric of the series to plot")
	flags.Int("last-actual", forecaster.DefaultLastActualYear, "Last observed year, forecasts start the year after")
	flags.Bool("derive-last-actual", false, "Use the series' own last observed year as the last actual year")
	flags.Int("horizon", forecaster.DefaultHorizon, "Final forecast year, inclusive")
	flags.Int("min-points", forecaster.DefaultMinPoints, "Minimum observations needed to fit the series")
	flags.Float64("ci", forecaster.DefaultConfidenceLevel, "Confidence level of the bands: 0.90|0.95|0.975|0.99")
	flags.Bool("damped-trend", false, "Fit a damped additive trend")
	flags.String("entity-column", pipeline.DefaultEntityColumn, "Column holding the entity id")
	flags.String("year-column", pipeline.DefaultYearColumn, "Column holding the year")
	return cmd
}

func (a *app) runPlot(cmd *cobra.Command, input, output, entity, metric string) error {
	entity = strings.ToUpper(strings.TrimSpace(entity))
	metric = strings.TrimSpace(metric)
	if entity == "" {
		return ErrNoEntity
	}
	if metric == "" {
		return ErrNoMetric
	}

	opt := a.forecasterOptions()
	if err := opt.Validate(); err != nil {
		return err
	}

	tableOpt := a.tableOptions()
	tableOpt.Metrics = []string{metric}
	table, err := readTable(input, tableOpt)
	if err != nil {
		return err
	}

	res := forecaster.New(opt).Forecast(table.Observations(entity, metric))
	logger := zerolog.Ctx(cmd.Context()).With().Str("entity", entity).Str("metric", metric).Logger()
	if res.Skipped() {
		logger.Warn().Err(res.SkipReason).Msg("series was not forecast, plotting history only")
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := res.PlotFit(f, fmt.Sprintf("%s %s", entity, metric)); err != nil {
		return fmt.Errorf("unable to plot %s %s, %w", entity, metric, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info().Str("output", output).Int("predictions", len(res.Points)).Msg("wrote plot")
	return nil
}
