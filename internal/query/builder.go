// Package query builds the bounded measurement queries dispatched by the
// processor. Every value is carried as a bound parameter; the generated SQL
// never embeds user data. Explicit time bounds on the hypertable column are
// what allow the planner to exclude chunks.
package query

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	// Postgres dialect registers numbered placeholder support for Prepared SQL.
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/target/chunkwise/internal/domain/model"
)

var dialect = goqu.Dialect("postgres")

var (
	// Tables
	sensorDataTable    = goqu.S("bench").Table("sensor_data")
	activePeriodsTable = goqu.S("bench").Table("active_periods")

	// Columns: sensor_data aliased as s
	sdSensorID = goqu.I("s.sensor_id")
	sdTime     = goqu.I("s.measurement_time")
	sdValue    = goqu.I("s.measurement_value")

	// Columns: active_periods aliased as p
	apSensorID  = goqu.I("p.sensor_id")
	apStartTime = goqu.I("p.start_time")
	apEndTime   = goqu.I("p.end_time")
	apStatus    = goqu.I("p.status")
)

// Builder produces the dispatchable measurement queries. The status filter is
// fixed at construction so every generated query selects the same period set.
type Builder struct {
	status model.PeriodStatus
}

// NewBuilder creates a Builder filtering on the given period status.
func NewBuilder(status model.PeriodStatus) (*Builder, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid period status %q", status)
	}
	return &Builder{status: status}, nil
}

// joinBase is the measurement-to-period join shared by every query shape.
func joinBase() *goqu.SelectDataset {
	return dialect.
		From(sensorDataTable.As("s")).
		Join(activePeriodsTable.As("p"), goqu.On(
			sdSensorID.Eq(apSensorID),
			sdTime.Gte(apStartTime),
			sdTime.Lt(apEndTime),
		)).
		Select(sdSensorID, sdTime, sdValue, apStartTime, apEndTime)
}

// PeriodQuery builds the join for a single period with explicit bounds on the
// hypertable time column.
func (b *Builder) PeriodQuery(p model.Period) (string, []any, error) {
	if err := p.Validate(); err != nil {
		return "", nil, fmt.Errorf("period query: %w", err)
	}
	return joinBase().
		Where(
			sdSensorID.Eq(p.SensorID),
			sdTime.Gte(p.StartTime),
			sdTime.Lt(p.EndTime),
			apStatus.Eq(string(b.status)),
		).
		Prepared(true).
		ToSQL()
}

// ChunkQuery builds one query covering several periods as a disjunction of
// bounded sensor/time predicates, constrained by the chunk's global time
// bounds so the planner can exclude chunks before evaluating the disjunction.
func (b *Builder) ChunkQuery(periods []model.Period) (string, []any, error) {
	if len(periods) == 0 {
		return "", nil, errors.New("chunk query: at least one period required")
	}
	ors := make([]goqu.Expression, 0, len(periods))
	for i := range periods {
		if err := periods[i].Validate(); err != nil {
			return "", nil, fmt.Errorf("chunk query: %w", err)
		}
		ors = append(ors, goqu.And(
			sdSensorID.Eq(periods[i].SensorID),
			sdTime.Gte(periods[i].StartTime),
			sdTime.Lt(periods[i].EndTime),
		))
	}
	lo, hi := model.TimeBounds(periods)
	return joinBase().
		Where(
			goqu.Or(ors...),
			sdTime.Gte(lo),
			sdTime.Lt(hi),
			apStatus.Eq(string(b.status)),
		).
		Prepared(true).
		ToSQL()
}

// ReferenceQuery builds the single unbounded join across all periods. Without
// explicit time bounds the planner cannot exclude chunks, which is exactly
// the behavior the compare command measures against.
func (b *Builder) ReferenceQuery() (string, []any, error) {
	return joinBase().
		Where(apStatus.Eq(string(b.status))).
		Prepared(true).
		ToSQL()
}
