package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/target/chunkwise/internal/data/pgxutil"
	"github.com/target/chunkwise/internal/domain/model"
	apperrors "github.com/target/chunkwise/internal/errors"
	"github.com/target/chunkwise/internal/query"
)

// MeasurementRepo runs the bounded measurement joins. Every call reads the
// full result set off the wire and reports how many rows were retrieved, so
// timings reflect real retrieval cost rather than a server-side count.
type MeasurementRepo struct {
	Pool    *pgxpool.Pool
	Builder *query.Builder
	// QueryTimeout bounds each query; 0 disables the per-query deadline.
	QueryTimeout time.Duration
}

// NewMeasurementRepo constructs a MeasurementRepo.
func NewMeasurementRepo(pool *pgxpool.Pool, builder *query.Builder, queryTimeout time.Duration) *MeasurementRepo {
	return &MeasurementRepo{Pool: pool, Builder: builder, QueryTimeout: queryTimeout}
}

// CountPeriodRows runs the single-period join with explicit time bounds.
func (r *MeasurementRepo) CountPeriodRows(ctx context.Context, p model.Period) (int64, error) {
	if r == nil || r.Pool == nil || r.Builder == nil {
		return 0, ErrMeasurementsNotConfigured
	}
	sqlStr, args, err := r.Builder.PeriodQuery(p)
	if err != nil {
		return 0, err
	}
	return r.countRows(ctx, sqlStr, args)
}

// CountChunkRows runs one disjunctive join covering all given periods.
func (r *MeasurementRepo) CountChunkRows(ctx context.Context, periods []model.Period) (int64, error) {
	if r == nil || r.Pool == nil || r.Builder == nil {
		return 0, ErrMeasurementsNotConfigured
	}
	if len(periods) == 0 {
		return 0, ErrNoPeriodsInChunk
	}
	sqlStr, args, err := r.Builder.ChunkQuery(periods)
	if err != nil {
		return 0, err
	}
	return r.countRows(ctx, sqlStr, args)
}

// CountAllRows runs the unbounded reference join across every period.
func (r *MeasurementRepo) CountAllRows(ctx context.Context) (int64, error) {
	if r == nil || r.Pool == nil || r.Builder == nil {
		return 0, ErrMeasurementsNotConfigured
	}
	sqlStr, args, err := r.Builder.ReferenceQuery()
	if err != nil {
		return 0, err
	}
	return r.countRows(ctx, sqlStr, args)
}

// countRows executes one query on an explicitly acquired connection and
// drains its result set. The connection is held for exactly the lifetime of
// one query and released on every exit path; timings therefore reflect real
// retrieval cost, not a server-side count.
func (r *MeasurementRepo) countRows(ctx context.Context, sqlStr string, args []any) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx, r.QueryTimeout)
	defer cancel()

	var count int64
	err := pgxutil.WithConn(ctx, r.Pool, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("run measurement query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			count++
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("read measurement rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return count, nil
}
