package dispatch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/chunkwise/internal/data"
	"github.com/target/chunkwise/internal/domain/model"
	apperrors "github.com/target/chunkwise/internal/errors"
)

func newTestDispatcher(t *testing.T, limit int) *Dispatcher {
	t.Helper()
	d, err := New(Options{MaxConcurrent: limit})
	require.NoError(t, err)
	return d
}

func TestNew_RequiresPositiveLimit(t *testing.T) {
	_, err := New(Options{MaxConcurrent: 0})
	require.Error(t, err)

	_, err = New(Options{MaxConcurrent: -3})
	require.Error(t, err)

	d, err := New(Options{MaxConcurrent: 1})
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestRun_Empty(t *testing.T) {
	d := newTestDispatcher(t, 4)

	results := d.Run(context.Background(), nil)
	assert.Empty(t, results)
}

func TestRun_ResultsAlignWithInputOrder(t *testing.T) {
	d := newTestDispatcher(t, 8)

	tasks := make([]Task, 20)
	for i := range tasks {
		rows := int64(i)
		tasks[i] = func(ctx context.Context) model.QueryResult {
			// Finish later tasks first to prove ordering does not depend
			// on completion order.
			time.Sleep(time.Duration(len(tasks)-int(rows)) * time.Millisecond)
			return model.QueryResult{PeriodCount: 1, RowCount: rows}
		}
	}

	results := d.Run(context.Background(), tasks)

	require.Len(t, results, len(tasks))
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, int64(i), r.RowCount, "result %d out of order", i)
	}
}

func TestRun_NeverExceedsConcurrencyCeiling(t *testing.T) {
	const (
		limit     = 3
		taskCount = 10
	)

	d := newTestDispatcher(t, limit)

	var running atomic.Int64
	release := make(chan struct{})

	tasks := make([]Task, taskCount)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) model.QueryResult {
			running.Add(1)
			<-release
			running.Add(-1)
			return model.QueryResult{PeriodCount: 1}
		}
	}

	done := make(chan []model.QueryResult, 1)
	go func() {
		done <- d.Run(context.Background(), tasks)
	}()

	// Tasks block on the gate while holding their slot, so the running count
	// can only climb to the ceiling and no further.
	require.Eventually(t, func() bool {
		return running.Load() == limit
	}, 2*time.Second, 5*time.Millisecond, "dispatcher never saturated the ceiling")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(limit), running.Load(), "dispatcher exceeded the ceiling")

	close(release)
	results := <-done

	require.Len(t, results, taskCount)
	for i, r := range results {
		assert.NoError(t, r.Err, "task %d", i)
	}
}

func TestRun_PanicBecomesFailedResult(t *testing.T) {
	d := newTestDispatcher(t, 2)

	tasks := []Task{
		func(ctx context.Context) model.QueryResult {
			return model.QueryResult{PeriodCount: 1, RowCount: 10}
		},
		func(ctx context.Context) model.QueryResult {
			panic("bad task")
		},
		func(ctx context.Context) model.QueryResult {
			return model.QueryResult{PeriodCount: 1, RowCount: 30}
		},
	}

	results := d.Run(context.Background(), tasks)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, int64(10), results[0].RowCount)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, int64(30), results[2].RowCount)

	require.Error(t, results[1].Err)
	assert.True(t, apperrors.IsInternal(results[1].Err))
	assert.Contains(t, results[1].Err.Error(), "task panicked")
	assert.False(t, results[1].Success())
}

func TestRun_ContextAlreadyCanceled(t *testing.T) {
	d := newTestDispatcher(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed atomic.Int64
	tasks := []Task{
		func(ctx context.Context) model.QueryResult {
			executed.Add(1)
			return model.QueryResult{PeriodCount: 1}
		},
		func(ctx context.Context) model.QueryResult {
			executed.Add(1)
			return model.QueryResult{PeriodCount: 1}
		},
	}

	results := d.Run(ctx, tasks)

	require.Len(t, results, 2)
	assert.Zero(t, executed.Load(), "no task should run under a canceled context")
	for i, r := range results {
		require.Error(t, r.Err, "task %d", i)
		assert.True(t, apperrors.IsCanceled(r.Err), "task %d should be canceled", i)
	}
}

func TestRun_CancellationStopsFurtherSubmissions(t *testing.T) {
	d := newTestDispatcher(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var thirdRan atomic.Bool
	tasks := []Task{
		func(ctx context.Context) model.QueryResult {
			cancel()
			return model.QueryResult{PeriodCount: 1, RowCount: 1}
		},
		// Already queued before the cancellation lands; it runs but sees the
		// canceled context.
		func(ctx context.Context) model.QueryResult {
			if err := ctx.Err(); err != nil {
				return model.QueryResult{Err: apperrors.Wrap(err, apperrors.ErrCodeCanceled, "query aborted")}
			}
			return model.QueryResult{PeriodCount: 1, RowCount: 2}
		},
		func(ctx context.Context) model.QueryResult {
			thirdRan.Store(true)
			return model.QueryResult{PeriodCount: 1, RowCount: 3}
		},
	}

	results := d.Run(ctx, tasks)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.False(t, thirdRan.Load(), "task after cancellation must never start")
	require.Error(t, results[2].Err)
	assert.True(t, apperrors.IsCanceled(results[2].Err))
	assert.Contains(t, results[2].Err.Error(), "never dispatched")
}

func TestRun_DurationExcludesQueueWait(t *testing.T) {
	clock := data.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	d, err := New(Options{MaxConcurrent: 1, Time: clock})
	require.NoError(t, err)

	// With one slot the tasks run back to back, and each advances the shared
	// clock only while it holds the slot. If the dispatcher stamped start
	// before slot acquisition, the second duration would absorb the first
	// task's 40ms.
	tasks := []Task{
		func(ctx context.Context) model.QueryResult {
			clock.AddTime(40 * time.Millisecond)
			return model.QueryResult{PeriodCount: 1}
		},
		func(ctx context.Context) model.QueryResult {
			clock.AddTime(5 * time.Millisecond)
			return model.QueryResult{PeriodCount: 1}
		},
	}

	results := d.Run(context.Background(), tasks)
	require.Len(t, results, 2)

	assert.Equal(t, 40*time.Millisecond, results[0].Duration)
	assert.Equal(t, 5*time.Millisecond, results[1].Duration)
}

func TestRun_StampsDurationOnPanic(t *testing.T) {
	clock := data.NewFixedTimeProvider(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	d, err := New(Options{MaxConcurrent: 1, Time: clock})
	require.NoError(t, err)

	results := d.Run(context.Background(), []Task{
		func(ctx context.Context) model.QueryResult {
			clock.AddTime(7 * time.Millisecond)
			panic("boom")
		},
	})

	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Equal(t, 7*time.Millisecond, results[0].Duration)
}
