// Command chunkwise runs one dispatch pass: it loads the eligible active
// periods and executes their time-bounded measurement queries in parallel,
// then prints the execution summary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

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
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logStartupInfo(ctx, logger, &cfg)

	// An operator interrupt stops submission of further queries; queries
	// already in flight are abandoned through the context. Results gathered
	// so far are still summarized below.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Only a pool establishment failure is fatal: without connections no
	// dispatch may begin. Query failures later are absorbed into results.
	pool, err := bootstrap.ConnectPool(ctx, bootstrap.DatabaseConfig{
		DBConfig: cfg.Postgres,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("connect pool: %w", err)
	}
	defer pool.Close()

	if cfg.Postgres.RunMigrationsOnStart {
		if err = bootstrap.RunMigrations(ctx, pool, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
	}

	metrics := bootstrap.BuildMetrics(logger, cfg.Observability)
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close metrics failed", "error", cerr)
		}
	}()

	svc, err := buildProcessor(&cfg, pool, logger, metrics)
	if err != nil {
		return err
	}

	periods, err := svc.FetchPeriods(ctx, cfg.Dispatch.Filter())
	if err != nil {
		return fmt.Errorf("fetch periods: %w", err)
	}
	if len(periods) == 0 {
		logger.WarnContext(ctx, "no active periods found", "status", cfg.Dispatch.Status)
		return nil
	}

	results, err := svc.ProcessPeriods(ctx, periods, service.RunOptions{
		UseBatching: cfg.Dispatch.UseBatching,
		BatchSize:   cfg.Dispatch.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("process periods: %w", err)
	}

	logFailures(ctx, logger, results)

	if writeErr := report.WriteText(os.Stdout, report.Summarize(results)); writeErr != nil {
		return fmt.Errorf("write summary: %w", writeErr)
	}

	if ctx.Err() != nil {
		logger.InfoContext(context.WithoutCancel(ctx), "interrupted by user")
	}
	return nil
}

func buildProcessor(
	cfg *config.AppConfig,
	pool *pgxpool.Pool,
	logger *slog.Logger,
	metrics statsd.Sink,
) (*service.QueryProcessingService, error) {
	builder, err := query.NewBuilder(cfg.Dispatch.Status)
	if err != nil {
		return nil, fmt.Errorf("build query builder: %w", err)
	}

	// The pool capacity doubles as the dispatch ceiling, so every running
	// query can hold a connection without queueing inside the driver.
	dispatcher, err := dispatch.New(dispatch.Options{
		MaxConcurrent: cfg.Postgres.MaxConnections,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build dispatcher: %w", err)
	}

	return service.NewQueryProcessingService(service.QueryProcessingOptions{
		Periods:      data.NewPeriodRepo(pool, cfg.Postgres.CommandTimeout),
		Measurements: data.NewMeasurementRepo(pool, builder, cfg.Postgres.CommandTimeout),
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
	}), nil
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting chunkwise dispatch run",
		"db_host", cfg.Postgres.Host,
		"db_port", cfg.Postgres.Port,
		"db_name", cfg.Postgres.Name,
		"max_connections", cfg.Postgres.MaxConnections,
		"use_batching", cfg.Dispatch.UseBatching,
		"batch_size", cfg.Dispatch.BatchSize,
		"period_status", cfg.Dispatch.Status)
}

func logFailures(ctx context.Context, logger *slog.Logger, results []model.QueryResult) {
	for _, r := range report.Failures(results) {
		if r.Period != nil {
			logger.WarnContext(ctx, "query failed", "period", r.Period.Label(), "error", r.ErrorMessage())
			continue
		}
		logger.WarnContext(ctx, "query failed", "periods", r.PeriodCount, "error", r.ErrorMessage())
	}
}
