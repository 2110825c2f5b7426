package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// Period repository sentinels.
	ErrPeriodsNotConfigured = errors.New("period repository not configured")

	// Measurement repository sentinels.
	ErrMeasurementsNotConfigured = errors.New("measurement repository not configured")
	ErrNoPeriodsInChunk          = errors.New("chunk contains no periods")
)
