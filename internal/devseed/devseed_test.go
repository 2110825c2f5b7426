package devseed

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/chunkwise/internal/domain/model"
	"github.com/target/chunkwise/internal/testutil"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 5, opts.Sensors)
	assert.Equal(t, 20, opts.PeriodsPerSensor)
	assert.Equal(t, 288, opts.RowsPerPeriod)

	opts = Options{Sensors: 2, PeriodsPerSensor: 3, RowsPerPeriod: 4}.withDefaults()
	assert.Equal(t, 2, opts.Sensors)
	assert.Equal(t, 3, opts.PeriodsPerSensor)
	assert.Equal(t, 4, opts.RowsPerPeriod)
}

func TestBuildPeriods(t *testing.T) {
	periods := buildPeriods(Options{Sensors: 3, PeriodsPerSensor: 14}.withDefaults())
	require.Len(t, periods, 42)

	statuses := map[model.PeriodStatus]int{}
	for _, p := range periods {
		assert.Equal(t, 24*time.Hour, p.EndTime.Sub(p.StartTime))
		statuses[p.Status]++
	}

	// Days 3 and 10 of each sensor are PENDING, day 5 is FAILED.
	assert.Equal(t, 6, statuses[model.PeriodStatusPending])
	assert.Equal(t, 3, statuses[model.PeriodStatusFailed])
	assert.Equal(t, 33, statuses[model.PeriodStatusDone])

	// Layout is sensor-major; within a sensor the periods abut with no gaps.
	assert.Equal(t, seedEpoch, periods[0].StartTime)
	assert.Equal(t, periods[0].EndTime, periods[1].StartTime)
	assert.Equal(t, int64(1), periods[0].SensorID)
	assert.Equal(t, int64(2), periods[14].SensorID)
	assert.Equal(t, seedEpoch, periods[14].StartTime)
}

func TestRun_SeedsAndSkipsWhenPopulated(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(pool *pgxpool.Pool) {
		ctx := context.Background()
		opts := Options{Sensors: 2, PeriodsPerSensor: 7, RowsPerPeriod: 12}

		require.NoError(t, Run(ctx, pool, nil, opts))
		assert.Equal(t, int64(14), countRows(t, pool, "bench.active_periods"))
		assert.Equal(t, int64(168), countRows(t, pool, "bench.sensor_data"))

		var done int64
		err := pool.QueryRow(ctx,
			"SELECT count(*) FROM bench.active_periods WHERE status = 'DONE'").Scan(&done)
		require.NoError(t, err)
		assert.Equal(t, int64(10), done)

		// Every measurement must land inside a period of the same sensor.
		var strays int64
		err = pool.QueryRow(ctx, `SELECT count(*) FROM bench.sensor_data s
			WHERE NOT EXISTS (
				SELECT 1 FROM bench.active_periods p
				WHERE p.sensor_id = s.sensor_id
				  AND s.measurement_time >= p.start_time
				  AND s.measurement_time < p.end_time
			)`).Scan(&strays)
		require.NoError(t, err)
		assert.Zero(t, strays, "measurements outside their period's range")

		// A second run against populated tables is a no-op.
		require.NoError(t, Run(ctx, pool, nil, opts))
		assert.Equal(t, int64(14), countRows(t, pool, "bench.active_periods"))
		assert.Equal(t, int64(168), countRows(t, pool, "bench.sensor_data"))

		// Truncate reseeds from scratch at the new shape.
		require.NoError(t, Run(ctx, pool, nil, Options{
			Sensors:          1,
			PeriodsPerSensor: 3,
			RowsPerPeriod:    10,
			Truncate:         true,
		}))
		assert.Equal(t, int64(3), countRows(t, pool, "bench.active_periods"))
		assert.Equal(t, int64(30), countRows(t, pool, "bench.sensor_data"))
	})
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int64 {
	t.Helper()
	var n int64
	err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}
