package model

// PeriodFilter groups parameters for listing active periods with optional filters.
type PeriodFilter struct {
	Status   PeriodStatus
	SensorID *int64 // Optional filter by exact sensor_id (when nil, no filter is applied)
	Limit    int    // Optional row cap (0 means no limit)
}
