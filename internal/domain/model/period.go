// Package model defines the core data types shared by the chunkwise query pipeline.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PeriodStatus represents the lifecycle state of an active period.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type PeriodStatus string

const (
	// PeriodStatusPending indicates the period is still receiving measurements.
	PeriodStatusPending PeriodStatus = "PENDING"
	// PeriodStatusDone indicates the period is closed and safe to query.
	PeriodStatusDone PeriodStatus = "DONE"
	// PeriodStatusFailed indicates ingestion for the period was aborted.
	PeriodStatusFailed PeriodStatus = "FAILED"
)

// UnmarshalText implements encoding.TextUnmarshaler for PeriodStatus to allow env parsing.
func (s *PeriodStatus) UnmarshalText(text []byte) error {
	v := strings.ToUpper(strings.TrimSpace(string(text)))
	ps := PeriodStatus(v)
	if ps.Valid() {
		*s = ps
		return nil
	}
	return fmt.Errorf("invalid PeriodStatus: %q", v)
}

// Valid returns true if the PeriodStatus is valid.
func (s PeriodStatus) Valid() bool {
	return s == PeriodStatusPending || s == PeriodStatusDone || s == PeriodStatusFailed
}

// ErrNoPeriods is returned when period selection matches no rows.
var ErrNoPeriods = errors.New("no active periods found")

// Period is one unit of dispatchable work: a sensor plus the half-open
// time range [StartTime, EndTime). The explicit bounds are what allow the
// database to exclude hypertable chunks instead of scanning everything.
type Period struct {
	ID        *int64    `json:"id,omitempty" db:"id"`
	SensorID  int64     `json:"sensor_id"    db:"sensor_id"`
	StartTime time.Time `json:"start_time"   db:"start_time"`
	EndTime   time.Time `json:"end_time"     db:"end_time"`
}

// Validate validates the Period fields. Equal bounds are legal: they describe
// a deliberately empty interval whose query matches zero rows.
func (p *Period) Validate() error {
	if p.SensorID <= 0 {
		return errors.New("sensor id must be positive")
	}
	if p.StartTime.IsZero() {
		return errors.New("start time is required")
	}
	if p.EndTime.IsZero() {
		return errors.New("end time is required")
	}
	if p.EndTime.Before(p.StartTime) {
		return errors.New("start time must not be after end time")
	}
	return nil
}

// Empty reports whether the period covers no time at all (StartTime == EndTime).
func (p *Period) Empty() bool {
	return p.StartTime.Equal(p.EndTime)
}

// Duration returns the length of the period's time range.
func (p *Period) Duration() time.Duration {
	return p.EndTime.Sub(p.StartTime)
}

// Label returns a compact identifier for logs and error messages.
func (p *Period) Label() string {
	if p.ID != nil {
		return fmt.Sprintf("period %d (sensor %d)", *p.ID, p.SensorID)
	}
	return fmt.Sprintf("sensor %d [%s, %s)",
		p.SensorID,
		p.StartTime.UTC().Format(time.RFC3339),
		p.EndTime.UTC().Format(time.RFC3339))
}
