// Package devseed populates the bench schema with a deterministic development
// dataset: a handful of sensors, day-aligned periods per sensor, and evenly
// spaced measurement rows inside every period.
package devseed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/target/chunkwise/internal/data/pgxutil"
	"github.com/target/chunkwise/internal/domain/model"
)

// Options control the size and shape of the seeded dataset.
type Options struct {
	// Sensors is how many distinct sensor ids to seed; defaults to 5.
	Sensors int
	// PeriodsPerSensor is how many day-long periods each sensor gets;
	// defaults to 20.
	PeriodsPerSensor int
	// RowsPerPeriod is how many measurement rows to spread across each
	// period; defaults to 288 (one every five minutes).
	RowsPerPeriod int
	// Truncate wipes the bench tables before seeding. Without it, seeding
	// into a non-empty database is skipped.
	Truncate bool
}

func (o Options) withDefaults() Options {
	if o.Sensors <= 0 {
		o.Sensors = 5
	}
	if o.PeriodsPerSensor <= 0 {
		o.PeriodsPerSensor = 20
	}
	if o.RowsPerPeriod <= 0 {
		o.RowsPerPeriod = 288
	}
	return o
}

// seedEpoch anchors the dataset so repeated seeds produce identical rows.
var seedEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes the seeding workflow against the provided pool.
func Run(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, opts Options) error {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.withDefaults()

	if !opts.Truncate {
		var existing int64
		if err := pool.QueryRow(ctx, "SELECT count(*) FROM bench.active_periods").Scan(&existing); err != nil {
			return fmt.Errorf("count existing periods: %w", err)
		}
		if existing > 0 {
			logger.InfoContext(ctx, "bench tables already seeded, skipping", "periods", existing)
			return nil
		}
	}

	periods := buildPeriods(opts)

	// One transaction covers the wipe and both inserts, so a failed seed
	// never leaves the bench tables half-populated.
	var rows int64
	err := pgxutil.WithTx(ctx, pool, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			if opts.Truncate {
				if err := truncateTables(ctx, tx); err != nil {
					return err
				}
				logger.InfoContext(ctx, "truncated bench tables")
			}
			if err := insertPeriods(ctx, tx, periods); err != nil {
				return fmt.Errorf("seed periods: %w", err)
			}
			var insertErr error
			rows, insertErr = insertMeasurements(ctx, tx, periods, opts.RowsPerPeriod)
			if insertErr != nil {
				return fmt.Errorf("seed measurements: %w", insertErr)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "seed complete",
		"sensors", opts.Sensors,
		"periods", len(periods),
		"measurement_rows", rows)
	return nil
}

type seedPeriod struct {
	model.Period
	Status model.PeriodStatus
}

// buildPeriods lays out day-aligned periods per sensor. Most are DONE; a
// deterministic scattering of PENDING and FAILED periods keeps the status
// filter meaningful.
func buildPeriods(opts Options) []seedPeriod {
	periods := make([]seedPeriod, 0, opts.Sensors*opts.PeriodsPerSensor)
	for sensor := 1; sensor <= opts.Sensors; sensor++ {
		for day := 0; day < opts.PeriodsPerSensor; day++ {
			start := seedEpoch.Add(time.Duration(day) * 24 * time.Hour)
			periods = append(periods, seedPeriod{
				Period: model.Period{
					SensorID:  int64(sensor),
					StartTime: start,
					EndTime:   start.Add(24 * time.Hour),
				},
				Status: statusFor(day),
			})
		}
	}
	return periods
}

func statusFor(day int) model.PeriodStatus {
	switch {
	case day%7 == 3:
		return model.PeriodStatusPending
	case day%11 == 5:
		return model.PeriodStatusFailed
	default:
		return model.PeriodStatusDone
	}
}

func truncateTables(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, "TRUNCATE bench.sensor_data"); err != nil {
		return fmt.Errorf("truncate sensor_data: %w", err)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE bench.active_periods RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate active_periods: %w", err)
	}
	return nil
}

func insertPeriods(ctx context.Context, tx pgx.Tx, periods []seedPeriod) error {
	const insert = `INSERT INTO bench.active_periods (sensor_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4)`

	batch := &pgx.Batch{}
	for i := range periods {
		p := &periods[i]
		batch.Queue(insert, p.SensorID, p.StartTime, p.EndTime, string(p.Status))
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range periods {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert period %d: %w", i, err)
		}
	}
	return results.Close()
}

// insertMeasurements streams every measurement row through a single COPY.
// Rows are spaced evenly inside their period, so each period owns exactly
// rowsPerPeriod rows and no row strays outside its half-open range.
func insertMeasurements(ctx context.Context, tx pgx.Tx, periods []seedPeriod, rowsPerPeriod int) (int64, error) {
	total := len(periods) * rowsPerPeriod
	if total == 0 {
		return 0, nil
	}
	step := 24 * time.Hour / time.Duration(rowsPerPeriod)

	return tx.CopyFrom(ctx,
		pgx.Identifier{"bench", "sensor_data"},
		[]string{"sensor_id", "measurement_time", "measurement_value"},
		pgx.CopyFromSlice(total, func(i int) ([]any, error) {
			p := &periods[i/rowsPerPeriod]
			offset := i % rowsPerPeriod
			return []any{
				p.SensorID,
				p.StartTime.Add(time.Duration(offset) * step),
				float64(offset),
			}, nil
		}),
	)
}
