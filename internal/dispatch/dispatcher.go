// Package dispatch runs independent query tasks concurrently under a fixed
// concurrency ceiling. Results come back in task order and a failing task
// never disturbs its siblings.
package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/target/chunkwise/internal/data"
	"github.com/target/chunkwise/internal/domain/model"
	apperrors "github.com/target/chunkwise/internal/errors"
)

// Task produces the outcome for one dispatched query. Implementations report
// failures inside the returned QueryResult instead of aborting the run; the
// dispatcher stamps Duration on whatever comes back.
type Task func(ctx context.Context) model.QueryResult

// Options groups dependencies for a Dispatcher.
type Options struct {
	// MaxConcurrent caps how many tasks run at once. Required, >= 1.
	// Sized to the connection pool ceiling so every running task can hold a
	// connection without queueing inside the driver.
	MaxConcurrent int
	Logger        *slog.Logger      // Optional: structured logger
	Time          data.TimeProvider // Optional: clock override for tests
}

// Dispatcher executes batches of tasks with bounded concurrency.
type Dispatcher struct {
	limit  int
	logger *slog.Logger
	time   data.TimeProvider
}

// New constructs a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.MaxConcurrent < 1 {
		return nil, errors.New("MaxConcurrent must be >= 1")
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	return &Dispatcher{
		limit:  opts.MaxConcurrent,
		logger: resolveLogger(opts.Logger),
		time:   tp,
	}, nil
}

// Run executes every task and returns one result per task, index-aligned with
// the input. At most MaxConcurrent tasks run at any moment; the remainder
// queue outside their own timing window, so a result's Duration covers the
// task body only, never the wait for a slot.
//
// Cancelling ctx stops further submissions; tasks never started report a
// canceled result, tasks already running see the cancellation through their
// own ctx.
func (d *Dispatcher) Run(ctx context.Context, tasks []Task) []model.QueryResult {
	results := make([]model.QueryResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	d.logger.InfoContext(ctx, "dispatching tasks", "tasks", len(tasks), "max_concurrent", d.limit)

	var group errgroup.Group
	group.SetLimit(d.limit)

	for i, task := range tasks {
		if ctx.Err() != nil {
			for j := i; j < len(tasks); j++ {
				results[j] = model.QueryResult{
					Err: apperrors.Wrap(ctx.Err(), apperrors.ErrCodeCanceled, "task was never dispatched"),
				}
			}
			break
		}
		i, task := i, task
		group.Go(func() error {
			results[i] = d.runTask(ctx, task)
			return nil
		})
	}

	// Tasks never return errors through the group; Wait only synchronizes.
	_ = group.Wait()
	return results
}

// runTask invokes one task, converting a panic into a failed result so a
// single bad task cannot take down the whole run.
func (d *Dispatcher) runTask(ctx context.Context, task Task) (res model.QueryResult) {
	start := d.time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.ErrorContext(ctx, "dispatched task panicked", "panic", rec)
			res = model.QueryResult{
				Err: apperrors.Internalf("task panicked: %v", rec),
			}
		}
		res.Duration = d.time.Now().Sub(start)
	}()
	return task(ctx)
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
