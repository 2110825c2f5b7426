// Package testutil provides testing utilities and helpers for the chunkwise query pipeline.
package testutil

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/target/chunkwise/internal/domain/model"
)

// PeriodBuilder provides a fluent interface for building Period values for testing.
type PeriodBuilder struct {
	period model.Period
	status model.PeriodStatus
}

// NewPeriod creates a new PeriodBuilder with sensible defaults: sensor 1, a
// 24h range starting at TestTime, status DONE.
func NewPeriod() *PeriodBuilder {
	start := TestTime()
	return &PeriodBuilder{
		period: model.Period{
			SensorID:  1,
			StartTime: start,
			EndTime:   start.Add(24 * time.Hour),
		},
		status: model.PeriodStatusDone,
	}
}

// WithSensor sets the sensor id.
func (b *PeriodBuilder) WithSensor(sensorID int64) *PeriodBuilder {
	b.period.SensorID = sensorID
	return b
}

// WithStart moves the period to begin at start, keeping its duration.
func (b *PeriodBuilder) WithStart(start time.Time) *PeriodBuilder {
	d := b.period.EndTime.Sub(b.period.StartTime)
	b.period.StartTime = start
	b.period.EndTime = start.Add(d)
	return b
}

// WithDuration sets the period length from its current start.
func (b *PeriodBuilder) WithDuration(d time.Duration) *PeriodBuilder {
	b.period.EndTime = b.period.StartTime.Add(d)
	return b
}

// WithStatus sets the seeded status.
func (b *PeriodBuilder) WithStatus(status model.PeriodStatus) *PeriodBuilder {
	b.status = status
	return b
}

// EmptyInterval collapses the period to zero length (start == end).
func (b *PeriodBuilder) EmptyInterval() *PeriodBuilder {
	b.period.EndTime = b.period.StartTime
	return b
}

// Build returns the constructed Period.
func (b *PeriodBuilder) Build() model.Period {
	return b.period
}

// Status returns the status the period should be seeded with.
func (b *PeriodBuilder) Status() model.PeriodStatus {
	return b.status
}

// PeriodSpec pairs a period with its seeded status and how many measurement
// rows to spread evenly across its time range.
type PeriodSpec struct {
	Period model.Period
	Status model.PeriodStatus
	Rows   int
}

// Spec finalizes the builder into a PeriodSpec seeding rows measurements.
func (b *PeriodBuilder) Spec(rows int) PeriodSpec {
	return PeriodSpec{Period: b.period, Status: b.status, Rows: rows}
}

// InsertPeriod writes one period row and returns its generated id.
func InsertPeriod(t TestingTB, pool *pgxpool.Pool, p model.Period, status model.PeriodStatus) int64 {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO bench.active_periods (sensor_id, start_time, end_time, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		p.SensorID, p.StartTime, p.EndTime, string(status),
	).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to insert period: %v", err)
	}
	return id
}

// InsertMeasurements bulk-loads count rows for one sensor via COPY, spaced
// every step starting at from.
func InsertMeasurements(t TestingTB, pool *pgxpool.Pool, sensorID int64, from time.Time, step time.Duration, count int) {
	t.Helper()
	if count <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	copied, err := pool.CopyFrom(ctx,
		pgx.Identifier{"bench", "sensor_data"},
		[]string{"sensor_id", "measurement_time", "measurement_value"},
		pgx.CopyFromSlice(count, func(i int) ([]any, error) {
			return []any{sensorID, from.Add(time.Duration(i) * step), float64(i)}, nil
		}),
	)
	if err != nil {
		t.Fatalf("Failed to copy measurements: %v", err)
	}
	if copied != int64(count) {
		t.Fatalf("Copied %d measurement rows, want %d", copied, count)
	}
}

// SeedPeriods inserts the specs' periods and measurements and returns the
// periods with their generated ids, in insertion order. Measurement rows are
// spread evenly across each period's range and always land inside it.
func SeedPeriods(t TestingTB, pool *pgxpool.Pool, specs []PeriodSpec) []model.Period {
	t.Helper()

	seeded := make([]model.Period, 0, len(specs))
	for _, spec := range specs {
		p := spec.Period
		id := InsertPeriod(t, pool, p, spec.Status)
		p.ID = &id
		seeded = append(seeded, p)

		if spec.Rows > 0 && !p.Empty() {
			step := p.Duration() / time.Duration(spec.Rows)
			if step <= 0 {
				step = time.Nanosecond
			}
			InsertMeasurements(t, pool, p.SensorID, p.StartTime, step, spec.Rows)
		}
	}
	return seeded
}
