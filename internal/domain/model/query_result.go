package model

import "time"

// QueryResult records the outcome of one dispatched query.
// Period is nil for batched queries that span several periods; PeriodCount
// carries how many periods the query covered in either mode.
type QueryResult struct {
	Period      *Period
	PeriodCount int
	RowCount    int64
	Duration    time.Duration
	Err         error
}

// Success reports whether the query completed without error.
func (r *QueryResult) Success() bool {
	return r.Err == nil
}

// ErrorMessage returns the failure text, or "" for successful results.
func (r *QueryResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// DurationMillis returns the query duration in milliseconds.
func (r *QueryResult) DurationMillis() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}
