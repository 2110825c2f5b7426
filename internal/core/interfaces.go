package core

import (
	"context"

	"github.com/target/chunkwise/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// PeriodRepository defines the interface for active period selection.
type PeriodRepository interface {
	// List returns periods matching the filter, in stable id order.
	List(ctx context.Context, filter model.PeriodFilter) ([]model.Period, error)
	// Count returns how many periods carry the given status.
	Count(ctx context.Context, status model.PeriodStatus) (int, error)
}

// MeasurementRepository defines the interface for bounded measurement retrieval.
// Each call runs one query, reads every matching row off the wire, and returns
// how many rows were read.
type MeasurementRepository interface {
	// CountPeriodRows runs the single-period join with explicit time bounds.
	CountPeriodRows(ctx context.Context, p model.Period) (int64, error)
	// CountChunkRows runs one disjunctive join covering all given periods.
	CountChunkRows(ctx context.Context, periods []model.Period) (int64, error)
	// CountAllRows runs the unbounded reference join across every period.
	CountAllRows(ctx context.Context) (int64, error)
}
