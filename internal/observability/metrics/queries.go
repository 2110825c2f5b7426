package metrics

import (
	"time"

	obserrors "github.com/target/chunkwise/internal/observability/errors"
	"github.com/target/chunkwise/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Strategy constants identify how a run decomposed its work.
const (
	StrategyPerPeriod = "per_period"
	StrategyBatched   = "batched"
	StrategyReference = "reference"
)

// QueryMetric captures the outcome of a single dispatched query.
type QueryMetric struct {
	Strategy string
	Result   string
	Rows     int64
	Duration time.Duration
	Err      error
}

// EmitQueryOutcome emits standardised per-query metrics.
func EmitQueryOutcome(sink statsd.Sink, in QueryMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"strategy": in.Strategy,
		"result":   in.Result,
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("query.completed", 1, tags)

	if in.Rows > 0 {
		sink.Count("query.rows", in.Rows, CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("query.duration", in.Duration, CloneTags(tags))
	}
}

// RunMetric captures the aggregate outcome of a full dispatch run.
type RunMetric struct {
	Strategy   string
	Total      int
	Successful int
	Failed     int
	Rows       int64
	Duration   time.Duration
}

// EmitRunSummary emits run-level metrics after every query has settled.
func EmitRunSummary(sink statsd.Sink, in RunMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"strategy": in.Strategy}

	sink.Count("run.completed", 1, tags)
	sink.Gauge("run.queries", float64(in.Total), CloneTags(tags))
	sink.Gauge("run.failures", float64(in.Failed), CloneTags(tags))

	if in.Rows > 0 {
		sink.Count("run.rows", in.Rows, CloneTags(tags))
	}
	if in.Duration > 0 {
		sink.Timing("run.duration", in.Duration, CloneTags(tags))
	}
}

// ResultFor maps an error to the result tag value.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// CloneTags creates a shallow copy of a tag map, so one emission cannot
// mutate the tags of another.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
