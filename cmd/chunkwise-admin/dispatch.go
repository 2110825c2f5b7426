package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/target/chunkwise/config"
	"github.com/target/chunkwise/internal/bootstrap"
	"github.com/target/chunkwise/internal/data"
	"github.com/target/chunkwise/internal/dispatch"
	"github.com/target/chunkwise/internal/domain/model"
	"github.com/target/chunkwise/internal/observability/statsd"
	"github.com/target/chunkwise/internal/query"
	"github.com/target/chunkwise/internal/report"
	"github.com/target/chunkwise/internal/service"
	"github.com/target/chunkwise/internal/util"
)

// periodSelection is the period filter shared by the periods, run, and
// compare commands. Flag defaults come from the environment configuration, so
// a bare command behaves exactly like the chunkwise binary.
type periodSelection struct {
	Status model.PeriodStatus
	Sensor int64
	Limit  int
}

func (s periodSelection) filter() model.PeriodFilter {
	f := model.PeriodFilter{
		Status: s.Status,
		Limit:  s.Limit,
	}
	if s.Sensor > 0 {
		sensor := s.Sensor
		f.SensorID = &sensor
	}
	return f
}

// unfiltered reports whether the selection covers every period of its status.
// Only then is the unbounded reference query comparable to a dispatch run.
func (s periodSelection) unfiltered() bool {
	return s.Sensor <= 0 && s.Limit <= 0
}

type periodsOptions struct {
	periodSelection
	Timeout time.Duration
}

type runCmdOptions struct {
	periodSelection
	Timeout   time.Duration
	Batched   bool
	BatchSize int
}

type compareOptions struct {
	periodSelection
	Timeout       time.Duration
	BatchSize     int
	SkipReference bool
}

func selectionFlags(fs *flag.FlagSet, defaults config.DispatchConfig) (statusRaw *string, sensor *int64, limit *int) {
	statusRaw = fs.String(
		"status",
		string(defaults.Status),
		"Period status to select (PENDING, DONE, FAILED)",
	)
	sensor = fs.Int64(
		"sensor",
		defaultSensor(defaults.SensorID),
		"Restrict selection to one sensor id (0 selects all sensors)",
	)
	limit = fs.Int(
		"limit",
		defaults.Limit,
		"Maximum periods to select (0 selects everything)",
	)
	return statusRaw, sensor, limit
}

func defaultSensor(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

func resolveSelection(statusRaw string, sensor int64, limit int) (periodSelection, error) {
	var status model.PeriodStatus
	if err := status.UnmarshalText([]byte(statusRaw)); err != nil {
		return periodSelection{}, err
	}
	if limit < 0 {
		return periodSelection{}, errors.New("--limit must not be negative")
	}
	return periodSelection{Status: status, Sensor: sensor, Limit: limit}, nil
}

func parsePeriodsFlags(args []string, defaults config.DispatchConfig) (periodsOptions, error) {
	fs := flag.NewFlagSet("periods", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := periodsOptions{Timeout: defaultRunTimeout}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultRunTimeout,
		"Maximum duration to wait for the listing to complete",
	)
	statusRaw, sensor, limit := selectionFlags(fs, defaults)

	if err := fs.Parse(args); err != nil {
		return periodsOptions{}, err
	}
	if opts.Timeout <= 0 {
		return periodsOptions{}, errors.New("--timeout must be greater than zero")
	}

	selection, err := resolveSelection(*statusRaw, *sensor, *limit)
	if err != nil {
		return periodsOptions{}, err
	}
	opts.periodSelection = selection
	return opts, nil
}

func parseRunFlags(args []string, defaults config.DispatchConfig) (runCmdOptions, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := runCmdOptions{Timeout: defaultRunTimeout}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultRunTimeout,
		"Maximum duration to wait for the run to complete",
	)
	fs.BoolVar(
		&opts.Batched,
		"batched",
		defaults.UseBatching,
		"Fold periods into disjunctive batch queries instead of one query per period",
	)
	fs.IntVar(
		&opts.BatchSize,
		"batch-size",
		defaults.BatchSize,
		"Periods per batched query",
	)
	statusRaw, sensor, limit := selectionFlags(fs, defaults)

	if err := fs.Parse(args); err != nil {
		return runCmdOptions{}, err
	}
	if opts.Timeout <= 0 {
		return runCmdOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.BatchSize < 1 {
		return runCmdOptions{}, errors.New("--batch-size must be at least 1")
	}

	selection, err := resolveSelection(*statusRaw, *sensor, *limit)
	if err != nil {
		return runCmdOptions{}, err
	}
	opts.periodSelection = selection
	return opts, nil
}

func parseCompareFlags(args []string, defaults config.DispatchConfig) (compareOptions, error) {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := compareOptions{Timeout: defaultRunTimeout}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultRunTimeout,
		"Maximum duration to wait for both runs to complete",
	)
	fs.IntVar(
		&opts.BatchSize,
		"batch-size",
		defaults.BatchSize,
		"Periods per batched query in the second run",
	)
	fs.BoolVar(
		&opts.SkipReference,
		"skip-reference",
		false,
		"Skip the unbounded reference query baseline",
	)
	statusRaw, sensor, limit := selectionFlags(fs, defaults)

	if err := fs.Parse(args); err != nil {
		return compareOptions{}, err
	}
	if opts.Timeout <= 0 {
		return compareOptions{}, errors.New("--timeout must be greater than zero")
	}
	if opts.BatchSize < 1 {
		return compareOptions{}, errors.New("--batch-size must be at least 1")
	}

	selection, err := resolveSelection(*statusRaw, *sensor, *limit)
	if err != nil {
		return compareOptions{}, err
	}
	opts.periodSelection = selection
	return opts, nil
}

func runPeriodsCommand(cmdCtx *commandContext, args []string) error {
	opts, err := parsePeriodsFlags(args, cmdCtx.Config.Dispatch)
	if err != nil {
		return err
	}

	return withPool(cmdCtx, opts.Timeout, func(ctx context.Context, pool *pgxpool.Pool) error {
		repo := data.NewPeriodRepo(pool, cmdCtx.Config.Postgres.CommandTimeout)

		periods, listErr := repo.List(ctx, opts.filter())
		if listErr != nil {
			return fmt.Errorf("list periods: %w", listErr)
		}
		total, countErr := repo.Count(ctx, opts.Status)
		if countErr != nil {
			return fmt.Errorf("count periods: %w", countErr)
		}

		return renderPeriodsTable(os.Stdout, periods, opts.Status, total)
	})
}

func renderPeriodsTable(w io.Writer, periods []model.Period, status model.PeriodStatus, total int) error {
	if err := writef(w, "\nActive periods with status %s\n", status); err != nil {
		return fmt.Errorf("write periods header: %w", err)
	}

	if len(periods) == 0 {
		if err := writeln(w, "  (no rows found)"); err != nil {
			return fmt.Errorf("write periods empty message: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "ID\tSENSOR\tSTART (UTC)\tEND (UTC)\tDURATION"); err != nil {
		return fmt.Errorf("write periods header row: %w", err)
	}
	for i := range periods {
		p := &periods[i]
		if err := writef(
			tw,
			"%s\t%d\t%s\t%s\t%s\n",
			formatPeriodID(p.ID),
			p.SensorID,
			p.StartTime.UTC().Format(time.RFC3339),
			p.EndTime.UTC().Format(time.RFC3339),
			util.FormatDuration(p.Duration()),
		); err != nil {
			return fmt.Errorf("write period row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush periods table: %w", err)
	}

	if err := writef(w, "Showing %d of %d periods with this status\n", len(periods), total); err != nil {
		return fmt.Errorf("write periods total: %w", err)
	}
	return nil
}

func formatPeriodID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

func runDispatchCommand(cmdCtx *commandContext, args []string) error {
	opts, err := parseRunFlags(args, cmdCtx.Config.Dispatch)
	if err != nil {
		return err
	}

	return withPool(cmdCtx, opts.Timeout, func(ctx context.Context, pool *pgxpool.Pool) error {
		metricsSink := bootstrap.BuildMetrics(cmdCtx.Logger, cmdCtx.Config.Observability)
		defer func() {
			if cerr := metricsSink.Close(); cerr != nil {
				cmdCtx.Logger.ErrorContext(ctx, "close metrics failed", "error", cerr)
			}
		}()

		processor, buildErr := newProcessor(cmdCtx, pool, opts.Status, metricsSink)
		if buildErr != nil {
			return buildErr
		}

		periods, fetchErr := processor.FetchPeriods(ctx, opts.filter())
		if fetchErr != nil {
			return fetchErr
		}
		if len(periods) == 0 {
			return writeln(os.Stdout, "No periods matched the selection; nothing to dispatch.")
		}

		results, runErr := processor.ProcessPeriods(ctx, periods, service.RunOptions{
			UseBatching: opts.Batched,
			BatchSize:   opts.BatchSize,
		})
		if runErr != nil {
			return fmt.Errorf("process periods: %w", runErr)
		}

		if failErr := printFailures(os.Stderr, results); failErr != nil {
			return failErr
		}
		if writeErr := report.WriteText(os.Stdout, report.Summarize(results)); writeErr != nil {
			return fmt.Errorf("write summary: %w", writeErr)
		}
		return nil
	})
}

func runCompareCommand(cmdCtx *commandContext, args []string) error {
	opts, err := parseCompareFlags(args, cmdCtx.Config.Dispatch)
	if err != nil {
		return err
	}

	return withPool(cmdCtx, opts.Timeout, func(ctx context.Context, pool *pgxpool.Pool) error {
		metricsSink := bootstrap.BuildMetrics(cmdCtx.Logger, cmdCtx.Config.Observability)
		defer func() {
			if cerr := metricsSink.Close(); cerr != nil {
				cmdCtx.Logger.ErrorContext(ctx, "close metrics failed", "error", cerr)
			}
		}()

		processor, buildErr := newProcessor(cmdCtx, pool, opts.Status, metricsSink)
		if buildErr != nil {
			return buildErr
		}

		periods, fetchErr := processor.FetchPeriods(ctx, opts.filter())
		if fetchErr != nil {
			return fetchErr
		}
		if len(periods) == 0 {
			return writeln(os.Stdout, "No periods matched the selection; nothing to compare.")
		}

		rep := compareReport{Periods: len(periods)}

		if err := writef(os.Stdout, "\n--- Approach 1: Individual Queries ---\n"); err != nil {
			return fmt.Errorf("write approach banner: %w", err)
		}
		individual, runErr := processor.ProcessPeriods(ctx, periods, service.RunOptions{})
		if runErr != nil {
			return fmt.Errorf("run individual queries: %w", runErr)
		}
		if failErr := printFailures(os.Stderr, individual); failErr != nil {
			return failErr
		}
		rep.Individual = report.Summarize(individual)
		if writeErr := report.WriteText(os.Stdout, rep.Individual); writeErr != nil {
			return fmt.Errorf("write individual summary: %w", writeErr)
		}

		if err := writef(os.Stdout, "\n--- Approach 2: Batched Queries ---\n"); err != nil {
			return fmt.Errorf("write approach banner: %w", err)
		}
		batched, runErr := processor.ProcessPeriods(ctx, periods, service.RunOptions{
			UseBatching: true,
			BatchSize:   opts.BatchSize,
		})
		if runErr != nil {
			return fmt.Errorf("run batched queries: %w", runErr)
		}
		if failErr := printFailures(os.Stderr, batched); failErr != nil {
			return failErr
		}
		rep.Batched = report.Summarize(batched)
		if writeErr := report.WriteText(os.Stdout, rep.Batched); writeErr != nil {
			return fmt.Errorf("write batched summary: %w", writeErr)
		}

		// The unbounded reference join always covers every period of the
		// status, so it only lines up with an unfiltered selection.
		if !opts.SkipReference && opts.unfiltered() {
			if err := writef(os.Stdout, "\n--- Reference: Single Unbounded Query ---\n"); err != nil {
				return fmt.Errorf("write reference banner: %w", err)
			}
			baseline := processor.Baseline(ctx)
			rep.Reference = &baseline
			if err := renderReference(os.Stdout, baseline); err != nil {
				return err
			}
		}

		return renderVerdict(os.Stdout, rep)
	})
}

// newProcessor assembles the dispatch pipeline the same way the chunkwise
// binary does: pool capacity doubles as the concurrency ceiling.
func newProcessor(
	cmdCtx *commandContext,
	pool *pgxpool.Pool,
	status model.PeriodStatus,
	metricsSink *statsd.Client,
) (*service.QueryProcessingService, error) {
	builder, err := query.NewBuilder(status)
	if err != nil {
		return nil, fmt.Errorf("build query builder: %w", err)
	}

	dispatcher, err := dispatch.New(dispatch.Options{
		MaxConcurrent: cmdCtx.Config.Postgres.MaxConnections,
		Logger:        cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	return service.NewQueryProcessingService(service.QueryProcessingOptions{
		Periods:      data.NewPeriodRepo(pool, cmdCtx.Config.Postgres.CommandTimeout),
		Measurements: data.NewMeasurementRepo(pool, builder, cmdCtx.Config.Postgres.CommandTimeout),
		Dispatcher:   dispatcher,
		Logger:       cmdCtx.Logger,
		Metrics:      metricsSink,
	}), nil
}

type compareReport struct {
	Periods    int
	Individual report.Summary
	Batched    report.Summary
	Reference  *model.QueryResult
}

func renderReference(w io.Writer, r model.QueryResult) error {
	if !r.Success() {
		if err := writef(w, "Reference query failed: %s\n", r.ErrorMessage()); err != nil {
			return fmt.Errorf("write reference failure: %w", err)
		}
		return nil
	}
	if err := writef(
		w,
		"Rows: %s  Duration: %.2fms\n",
		util.GroupDigits(r.RowCount),
		r.DurationMillis(),
	); err != nil {
		return fmt.Errorf("write reference result: %w", err)
	}
	return nil
}

// renderVerdict prints the row-count agreement line. Both strategies cover the
// identical period set, so with no failures their row totals must be equal.
func renderVerdict(w io.Writer, rep compareReport) error {
	failed := rep.Individual.Failed + rep.Batched.Failed
	if rep.Reference != nil && !rep.Reference.Success() {
		failed++
	}

	var verdict string
	switch {
	case failed > 0:
		verdict = fmt.Sprintf("Row count agreement: inconclusive (%d failed queries)", failed)
	case rep.Individual.TotalRows != rep.Batched.TotalRows:
		verdict = fmt.Sprintf(
			"Row count agreement: MISMATCH (individual %s vs batched %s)",
			util.GroupDigits(rep.Individual.TotalRows),
			util.GroupDigits(rep.Batched.TotalRows),
		)
	case rep.Reference != nil && rep.Reference.RowCount != rep.Individual.TotalRows:
		verdict = fmt.Sprintf(
			"Row count agreement: MISMATCH (both strategies %s vs reference %s)",
			util.GroupDigits(rep.Individual.TotalRows),
			util.GroupDigits(rep.Reference.RowCount),
		)
	default:
		verdict = fmt.Sprintf(
			"Row count agreement: OK (%s rows over %d periods via both strategies)",
			util.GroupDigits(rep.Individual.TotalRows),
			rep.Periods,
		)
	}

	if err := writef(w, "\n%s\n", verdict); err != nil {
		return fmt.Errorf("write agreement verdict: %w", err)
	}
	return nil
}

// printFailures lists failed queries on stderr so stdout stays a clean report.
func printFailures(w io.Writer, results []model.QueryResult) error {
	for _, r := range report.Failures(results) {
		label := fmt.Sprintf("batch of %d periods", r.PeriodCount)
		if r.Period != nil {
			label = r.Period.Label()
		}
		if err := writef(w, "query failed: %s: %s\n", label, r.ErrorMessage()); err != nil {
			return fmt.Errorf("write failure line: %w", err)
		}
	}
	return nil
}
