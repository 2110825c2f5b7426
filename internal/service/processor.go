// Package service orchestrates period selection and the parallel execution of
// time-bounded measurement queries.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/target/chunkwise/internal/core"
	"github.com/target/chunkwise/internal/dispatch"
	"github.com/target/chunkwise/internal/domain/model"
	"github.com/target/chunkwise/internal/observability/metrics"
	"github.com/target/chunkwise/internal/observability/statsd"
	"github.com/target/chunkwise/internal/report"
)

const defaultBatchSize = 1000

// QueryProcessingOptions groups dependencies for QueryProcessingService.
type QueryProcessingOptions struct {
	Periods      core.PeriodRepository      // Required: period selection
	Measurements core.MeasurementRepository // Required: bounded measurement queries
	Dispatcher   *dispatch.Dispatcher       // Required: bounded-concurrency executor
	Logger       *slog.Logger               // Optional: structured logger
	Metrics      statsd.Sink                // Optional: metrics sink
}

// QueryProcessingService decomposes the expensive measurement join into many
// small time-bounded queries and runs them concurrently. Each run uses one of
// two strategies: one query per period, or batches of periods folded into a
// single disjunctive query.
type QueryProcessingService struct {
	periods      core.PeriodRepository
	measurements core.MeasurementRepository
	dispatcher   *dispatch.Dispatcher
	logger       *slog.Logger
	metrics      statsd.Sink
}

// NewQueryProcessingService constructs a QueryProcessingService.
func NewQueryProcessingService(opts QueryProcessingOptions) *QueryProcessingService {
	if opts.Periods == nil {
		panic("PeriodRepository is required")
	}
	if opts.Measurements == nil {
		panic("MeasurementRepository is required")
	}
	if opts.Dispatcher == nil {
		panic("Dispatcher is required")
	}

	return &QueryProcessingService{
		periods:      opts.Periods,
		measurements: opts.Measurements,
		dispatcher:   opts.Dispatcher,
		logger:       resolveLogger(opts.Logger),
		metrics:      opts.Metrics,
	}
}

// RunOptions selects the decomposition strategy for one processing run.
type RunOptions struct {
	// UseBatching folds groups of periods into single disjunctive queries
	// instead of dispatching one query per period.
	UseBatching bool
	// BatchSize caps the periods per batched query; defaults to 1000.
	BatchSize int
}

func (o RunOptions) strategy() string {
	if o.UseBatching {
		return metrics.StrategyBatched
	}
	return metrics.StrategyPerPeriod
}

// FetchPeriods loads the periods eligible for dispatch.
func (s *QueryProcessingService) FetchPeriods(ctx context.Context, filter model.PeriodFilter) ([]model.Period, error) {
	periods, err := s.periods.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch periods: %w", err)
	}

	s.logger.InfoContext(ctx, "fetched active periods",
		"count", len(periods),
		"status", filter.Status)

	return periods, nil
}

// CountPeriods returns how many periods carry the given status.
func (s *QueryProcessingService) CountPeriods(ctx context.Context, status model.PeriodStatus) (int, error) {
	count, err := s.periods.Count(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("count periods: %w", err)
	}
	return count, nil
}

// ProcessPeriods runs one query per period, or one query per batch when
// batching is enabled, all under the dispatcher's concurrency ceiling. The
// returned slice is index-aligned with the dispatched queries: len(periods)
// results for the per-period strategy, one per batch otherwise. Failures are
// carried inside the results, never as a call error.
func (s *QueryProcessingService) ProcessPeriods(
	ctx context.Context,
	periods []model.Period,
	opts RunOptions,
) ([]model.QueryResult, error) {
	if len(periods) == 0 {
		return nil, model.ErrNoPeriods
	}

	batchSize := resolveBatchSize(opts.BatchSize)
	strategy := opts.strategy()
	logger := s.logger.With("run_id", uuid.New().String(), "strategy", strategy)

	var tasks []dispatch.Task
	if opts.UseBatching {
		batches := model.ChunkPeriods(periods, batchSize)
		logger.InfoContext(ctx, "processing periods in batches",
			"periods", len(periods),
			"batches", len(batches),
			"batch_size", batchSize)
		tasks = s.batchTasks(logger, batches)
	} else {
		logger.InfoContext(ctx, "processing periods individually",
			"periods", len(periods))
		tasks = s.periodTasks(logger, periods)
	}

	results := s.dispatcher.Run(ctx, tasks)
	s.finishRun(ctx, logger, strategy, results)

	return results, nil
}

// Baseline runs the unbounded reference join as a single dispatched query.
// Without explicit time bounds the planner cannot exclude chunks; the result
// is the yardstick the decomposed strategies are measured against.
func (s *QueryProcessingService) Baseline(ctx context.Context) model.QueryResult {
	logger := s.logger.With("run_id", uuid.New().String(), "strategy", metrics.StrategyReference)
	logger.InfoContext(ctx, "running reference query")

	results := s.dispatcher.Run(ctx, []dispatch.Task{
		func(ctx context.Context) model.QueryResult {
			rows, err := s.measurements.CountAllRows(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "reference query failed", "error", err)
			}
			return model.QueryResult{RowCount: rows, Err: err}
		},
	})

	result := results[0]
	metrics.EmitQueryOutcome(s.metrics, metrics.QueryMetric{
		Strategy: metrics.StrategyReference,
		Result:   metrics.ResultFor(result.Err),
		Rows:     result.RowCount,
		Duration: result.Duration,
		Err:      result.Err,
	})

	return result
}

// periodTasks builds one task per period. Each task reports its own failure
// inside the result so a bad period never aborts the run.
func (s *QueryProcessingService) periodTasks(logger *slog.Logger, periods []model.Period) []dispatch.Task {
	tasks := make([]dispatch.Task, len(periods))
	for i := range periods {
		p := periods[i]
		tasks[i] = func(ctx context.Context) model.QueryResult {
			rows, err := s.measurements.CountPeriodRows(ctx, p)
			if err != nil {
				logger.ErrorContext(ctx, "period query failed",
					"period", p.Label(),
					"error", err)
			}
			return model.QueryResult{Period: &p, PeriodCount: 1, RowCount: rows, Err: err}
		}
	}
	return tasks
}

// batchTasks builds one task per batch of periods.
func (s *QueryProcessingService) batchTasks(logger *slog.Logger, batches [][]model.Period) []dispatch.Task {
	tasks := make([]dispatch.Task, len(batches))
	for i := range batches {
		batch := batches[i]
		tasks[i] = func(ctx context.Context) model.QueryResult {
			rows, err := s.measurements.CountChunkRows(ctx, batch)
			if err != nil {
				logger.ErrorContext(ctx, "batch query failed",
					"periods", len(batch),
					"error", err)
			} else {
				logger.InfoContext(ctx, "batch query completed",
					"periods", len(batch),
					"rows", rows)
			}
			return model.QueryResult{PeriodCount: len(batch), RowCount: rows, Err: err}
		}
	}
	return tasks
}

// finishRun emits per-query and run-level metrics and logs the aggregate
// outcome once every result has settled.
func (s *QueryProcessingService) finishRun(
	ctx context.Context,
	logger *slog.Logger,
	strategy string,
	results []model.QueryResult,
) {
	for i := range results {
		r := &results[i]
		metrics.EmitQueryOutcome(s.metrics, metrics.QueryMetric{
			Strategy: strategy,
			Result:   metrics.ResultFor(r.Err),
			Rows:     r.RowCount,
			Duration: r.Duration,
			Err:      r.Err,
		})
	}

	summary := report.Summarize(results)
	metrics.EmitRunSummary(s.metrics, metrics.RunMetric{
		Strategy:   strategy,
		Total:      summary.Total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Rows:       summary.TotalRows,
		Duration:   summary.TotalTime,
	})

	logger.InfoContext(ctx, "run completed",
		"queries", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"rows", summary.TotalRows,
		"query_time", summary.TotalTime)
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func resolveBatchSize(batchSize int) int {
	if batchSize > 0 {
		return batchSize
	}
	return defaultBatchSize
}
