package config

import "github.com/target/chunkwise/internal/domain/model"

const defaultBatchSize = 1000

// DispatchConfig controls how active periods are selected and how their
// queries are shaped.
type DispatchConfig struct {
	// UseBatching selects the batched strategy: one disjunctive query per
	// group of BatchSize periods instead of one query per period.
	UseBatching bool `env:"USE_BATCHING" envDefault:"false"`
	// BatchSize is the number of periods combined into one batched query.
	BatchSize int `env:"BATCH_SIZE" envDefault:"1000"`

	// Status restricts dispatch to periods in this lifecycle state. Only
	// DONE periods are fully materialized; querying others reads data that
	// is still changing.
	Status model.PeriodStatus `env:"PERIOD_STATUS" envDefault:"DONE"`
	// SensorID optionally restricts dispatch to one sensor.
	SensorID *int64 `env:"SENSOR_ID"`
	// Limit caps how many periods are loaded; 0 loads everything.
	Limit int `env:"PERIOD_LIMIT" envDefault:"0"`
}

// Sanitize clamps dispatch parameters to usable values.
func (c *DispatchConfig) Sanitize() {
	if c.BatchSize < 1 {
		c.BatchSize = defaultBatchSize
	}
	if c.Limit < 0 {
		c.Limit = 0
	}
	if !c.Status.Valid() {
		c.Status = model.PeriodStatusDone
	}
}

// Filter returns the period selection filter this configuration describes.
func (c *DispatchConfig) Filter() model.PeriodFilter {
	return model.PeriodFilter{
		Status:   c.Status,
		SensorID: c.SensorID,
		Limit:    c.Limit,
	}
}
