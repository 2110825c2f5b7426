package data

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/chunkwise/internal/domain/model"
	apperrors "github.com/target/chunkwise/internal/errors"
	"github.com/target/chunkwise/internal/testutil"
)

func TestPeriodRepo_List_NotConfigured(t *testing.T) {
	ctx := context.Background()
	filter := model.PeriodFilter{Status: model.PeriodStatusDone}

	var nilRepo *PeriodRepo
	_, err := nilRepo.List(ctx, filter)
	require.ErrorIs(t, err, ErrPeriodsNotConfigured)

	repo := &PeriodRepo{}
	_, err = repo.List(ctx, filter)
	require.ErrorIs(t, err, ErrPeriodsNotConfigured)

	_, err = repo.Count(ctx, model.PeriodStatusDone)
	require.ErrorIs(t, err, ErrPeriodsNotConfigured)
}

func TestPeriodRepo_List_RejectsBadFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewPeriodRepo(&pgxpool.Pool{}, 0)

	_, err := repo.List(ctx, model.PeriodFilter{Status: "ARCHIVED"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "status", apperrors.GetField(err))

	_, err = repo.List(ctx, model.PeriodFilter{Status: model.PeriodStatusDone, Limit: -1})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "limit", apperrors.GetField(err))

	_, err = repo.Count(ctx, "ARCHIVED")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestPeriodRepo_List_FiltersAndOrder(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(pool *pgxpool.Pool) {
		ctx := context.Background()
		repo := NewPeriodRepo(pool, 30*time.Second)

		day := 24 * time.Hour
		start := testutil.TestTime()
		seeded := testutil.SeedPeriods(t, pool, []testutil.PeriodSpec{
			testutil.NewPeriod().WithSensor(1).WithStart(start).Spec(0),
			testutil.NewPeriod().WithSensor(2).WithStart(start).Spec(0),
			testutil.NewPeriod().WithSensor(1).WithStart(start.Add(day)).Spec(0),
			testutil.NewPeriod().WithSensor(3).WithStart(start).WithStatus(model.PeriodStatusPending).Spec(0),
			testutil.NewPeriod().WithSensor(3).WithStart(start.Add(day)).WithStatus(model.PeriodStatusFailed).Spec(0),
		})

		// Status filter only: the three DONE periods, in id order.
		done, err := repo.List(ctx, model.PeriodFilter{Status: model.PeriodStatusDone})
		require.NoError(t, err)
		require.Len(t, done, 3)
		for i := 1; i < len(done); i++ {
			require.NotNil(t, done[i].ID)
			assert.Greater(t, *done[i].ID, *done[i-1].ID, "ids must be ascending")
		}
		assert.Equal(t, *seeded[0].ID, *done[0].ID)

		// Sensor filter.
		sensor := int64(1)
		bySensor, err := repo.List(ctx, model.PeriodFilter{
			Status:   model.PeriodStatusDone,
			SensorID: &sensor,
		})
		require.NoError(t, err)
		require.Len(t, bySensor, 2)
		for i := range bySensor {
			assert.Equal(t, int64(1), bySensor[i].SensorID)
		}

		// Limit caps the result without disturbing order.
		limited, err := repo.List(ctx, model.PeriodFilter{
			Status: model.PeriodStatusDone,
			Limit:  2,
		})
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, *done[0].ID, *limited[0].ID)
		assert.Equal(t, *done[1].ID, *limited[1].ID)

		// Statuses that matched nothing.
		pending, err := repo.List(ctx, model.PeriodFilter{Status: model.PeriodStatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, int64(3), pending[0].SensorID)
	})
}

func TestPeriodRepo_List_EmptySelection(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(pool *pgxpool.Pool) {
		ctx := context.Background()
		repo := NewPeriodRepo(pool, 30*time.Second)

		periods, err := repo.List(ctx, model.PeriodFilter{Status: model.PeriodStatusDone})
		require.NoError(t, err)
		assert.Empty(t, periods)
	})
}

func TestPeriodRepo_Count(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(pool *pgxpool.Pool) {
		ctx := context.Background()
		repo := NewPeriodRepo(pool, 30*time.Second)

		day := 24 * time.Hour
		start := testutil.TestTime()
		testutil.SeedPeriods(t, pool, []testutil.PeriodSpec{
			testutil.NewPeriod().WithSensor(1).WithStart(start).Spec(0),
			testutil.NewPeriod().WithSensor(1).WithStart(start.Add(day)).Spec(0),
			testutil.NewPeriod().WithSensor(2).WithStart(start).WithStatus(model.PeriodStatusPending).Spec(0),
		})

		done, err := repo.Count(ctx, model.PeriodStatusDone)
		require.NoError(t, err)
		assert.Equal(t, 2, done)

		pending, err := repo.Count(ctx, model.PeriodStatusPending)
		require.NoError(t, err)
		assert.Equal(t, 1, pending)

		failed, err := repo.Count(ctx, model.PeriodStatusFailed)
		require.NoError(t, err)
		assert.Equal(t, 0, failed)
	})
}
