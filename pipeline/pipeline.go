// Package pipeline forecasts every entity and metric of an input table and streams the
// resulting records to a sink in a deterministic order.
package pipeline

import (
	"context"
	"errors"
	"runtime"

	forecaster "github.com/aouyang1/indicator-forecaster"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrNoSink = errors.New("no sink to write records to")

// Options configures a batch run
type Options struct {
	Forecaster *forecaster.Options `json:"forecaster"`

	// Precision is the number of decimal places kept in values and bounds. NoRounding
	// disables rounding.
	Precision int `json:"precision" mapstructure:"round"`

	// Parallelism bounds the number of entities forecast at once
	Parallelism int `json:"parallelism" mapstructure:"parallelism"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Forecaster:  forecaster.NewDefaultOptions(),
		Precision:   DefaultRound,
		Parallelism: runtime.NumCPU(),
	}
}

// Summary counts what a run produced
type Summary struct {
	Entities int `json:"processed_entities"`
	Series   int `json:"series"`
	Skipped  int `json:"skipped_series"`
	Records  int `json:"predictions"`
}

type entityBatch struct {
	records []Record
	series  int
	skipped int
}

// Run forecasts every (entity, metric) series in the table. Entities are fit
// concurrently but records reach the sink ordered by entity, then metric in the
// table's order, then year. A series that cannot be fit only produces fewer records;
// the run fails only when the sink fails or the context is cancelled.
func Run(ctx context.Context, table *Table, sink Sink, opt *Options) (Summary, error) {
	if sink == nil {
		return Summary{}, ErrNoSink
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if opt.Forecaster == nil {
		opt.Forecaster = forecaster.NewDefaultOptions()
	}
	parallelism := opt.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	logger := zerolog.Ctx(ctx)
	f := forecaster.New(opt.Forecaster)
	method := opt.Forecaster.Method()
	entities := table.Entities()

	logger.Info().
		Int("rows", table.Rows).
		Int("entities", len(entities)).
		Strs("metrics", table.Metrics).
		Int("last_actual_year", opt.Forecaster.LastActualYear).
		Bool("derive_last_actual_year", opt.Forecaster.DeriveLastActualYear).
		Int("horizon", opt.Forecaster.Horizon).
		Int("min_points", opt.Forecaster.MinPoints).
		Float64("ci", opt.Forecaster.ConfidenceLevel).
		Bool("damped_trend", opt.Forecaster.DampedTrend).
		Int("round", opt.Precision).
		Msg("starting forecast run")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// one slot per entity, drained in entity order
	batches := make([]chan entityBatch, len(entities))
	for i := range batches {
		batches[i] = make(chan entityBatch, 1)
	}

	// a token is held from scheduling an entity until its records are emitted, so at
	// most parallelism entities are forecast or waiting to be written at once
	tokens := make(chan struct{}, parallelism)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	scheduled := make(chan error, 1)
	go func() {
		for i, entity := range entities {
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				scheduled <- ctx.Err()
				return
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				batches[i] <- forecastEntity(gctx, f, table, entity, method, opt.Precision)
				return nil
			})
		}
		scheduled <- g.Wait()
	}()

	summary := Summary{Entities: len(entities)}
	for i := range entities {
		var batch entityBatch
		select {
		case batch = <-batches[i]:
		case <-ctx.Done():
			return summary, ctx.Err()
		}

		summary.Series += batch.series
		summary.Skipped += batch.skipped
		for _, r := range batch.records {
			if err := sink.Write(r); err != nil {
				return summary, err
			}
			summary.Records++
		}
		<-tokens
	}
	if err := <-scheduled; err != nil {
		return summary, err
	}

	logger.Info().
		Int("processed_entities", summary.Entities).
		Int("series", summary.Series).
		Int("skipped_series", summary.Skipped).
		Int("predictions", summary.Records).
		Msg("forecast run complete")
	return summary, nil
}

func forecastEntity(ctx context.Context, f *forecaster.Forecaster, table *Table, entity, method string, precision int) entityBatch {
	logger := zerolog.Ctx(ctx).With().Str("entity", entity).Logger()

	var batch entityBatch
	for _, metric := range table.Metrics {
		batch.series++
		res := f.Forecast(table.Observations(entity, metric))
		if res.Skipped() {
			batch.skipped++
			logger.Debug().
				Str("metric", metric).
				Int("points", res.History.Len()).
				Err(res.SkipReason).
				Msg("skipping series")
			continue
		}

		evt := logger.Debug().
			Str("metric", metric).
			Float64("sigma", res.Sigma).
			Int("predictions", len(res.Points))
		if res.Summary != nil {
			evt = evt.
				Float64("alpha", res.Summary.Params.Alpha).
				Float64("beta", res.Summary.Params.Beta).
				Float64("phi", res.Summary.Params.Phi).
				Float64("sse", res.Summary.SSE)
		}
		if res.Scores != nil {
			evt = evt.
				Float64("mse", res.Scores.MSE).
				Float64("mape", res.Scores.MAPE).
				Float64("r2", res.Scores.R2)
		}
		evt.Msg("fit series")

		for _, p := range res.Points {
			batch.records = append(batch.records, NewRecord(entity, metric, method, p, precision))
		}
	}
	return batch
}
