// Package mocks provides mock implementations for testing the chunkwise query pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockPeriodRepository(ctrl)
//	mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(periods, nil)
package mocks

// Generate mock for PeriodRepository interface from internal/core package.
// This creates MockPeriodRepository with methods for all PeriodRepository interface methods:
// List, Count
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=period_repository_mock.go github.com/target/chunkwise/internal/core PeriodRepository

// Generate mock for MeasurementRepository interface from internal/core package.
// This creates MockMeasurementRepository with methods for all MeasurementRepository interface methods:
// CountPeriodRows, CountChunkRows, CountAllRows
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=measurement_repository_mock.go github.com/target/chunkwise/internal/core MeasurementRepository
