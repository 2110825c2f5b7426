// Package data implements the repositories backing the query pipeline on a
// pgx connection pool. Queries acquire a connection for exactly the lifetime
// of one result set; releasing happens when the rows are closed.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	// Postgres dialect registers numbered placeholder support for Prepared SQL.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/target/chunkwise/internal/domain/model"
	apperrors "github.com/target/chunkwise/internal/errors"
)

var (
	pgDialect    = goqu.Dialect("postgres")
	periodsTable = goqu.S("bench").Table("active_periods")
)

// PeriodRepo loads active periods from the dimension table.
type PeriodRepo struct {
	Pool *pgxpool.Pool
	// QueryTimeout bounds each command; 0 disables the per-query deadline.
	QueryTimeout time.Duration
}

// NewPeriodRepo constructs a PeriodRepo.
func NewPeriodRepo(pool *pgxpool.Pool, queryTimeout time.Duration) *PeriodRepo {
	return &PeriodRepo{Pool: pool, QueryTimeout: queryTimeout}
}

// List returns periods matching the filter in stable id order.
func (r *PeriodRepo) List(ctx context.Context, filter model.PeriodFilter) ([]model.Period, error) {
	if r == nil || r.Pool == nil {
		return nil, ErrPeriodsNotConfigured
	}
	if !filter.Status.Valid() {
		return nil, apperrors.ValidationField("status", fmt.Sprintf("invalid period status %q", filter.Status))
	}
	if filter.Limit < 0 {
		return nil, apperrors.ValidationField("limit", "limit must be >= 0")
	}

	ds := pgDialect.
		From(periodsTable).
		Select(goqu.C("id"), goqu.C("sensor_id"), goqu.C("start_time"), goqu.C("end_time")).
		Where(goqu.C("status").Eq(string(filter.Status))).
		Order(goqu.C("id").Asc())
	if filter.SensorID != nil {
		ds = ds.Where(goqu.C("sensor_id").Eq(*filter.SensorID))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}

	sqlStr, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build period list query: %w", err)
	}

	ctx, cancel := withQueryTimeout(ctx, r.QueryTimeout)
	defer cancel()

	rows, err := r.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list periods: %w", err))
	}
	defer rows.Close()

	periods, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Period])
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("scan periods: %w", err))
	}
	return periods, nil
}

// Count returns how many periods carry the given status.
func (r *PeriodRepo) Count(ctx context.Context, status model.PeriodStatus) (int, error) {
	if r == nil || r.Pool == nil {
		return 0, ErrPeriodsNotConfigured
	}
	if !status.Valid() {
		return 0, apperrors.ValidationField("status", fmt.Sprintf("invalid period status %q", status))
	}

	const query = `SELECT count(*) FROM bench.active_periods WHERE status = $1`

	ctx, cancel := withQueryTimeout(ctx, r.QueryTimeout)
	defer cancel()

	var count int
	if err := r.Pool.QueryRow(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, apperrors.MapDBError(fmt.Errorf("count periods: %w", err))
	}
	return count, nil
}

// withQueryTimeout derives a per-command deadline when timeout > 0.
func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
