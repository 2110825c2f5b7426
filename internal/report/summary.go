// Package report aggregates the per-query results of a dispatch run into
// summary statistics and renders them for operators.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/target/chunkwise/internal/domain/model"
	"github.com/target/chunkwise/internal/util"
)

// Summary holds aggregate statistics for one dispatch run. Row and duration
// totals cover successful queries only; failed queries contribute to the
// Failed count and nothing else.
type Summary struct {
	Total       int
	Successful  int
	Failed      int
	TotalRows   int64
	TotalTime   time.Duration
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration
}

// Summarize reduces a result slice to aggregate statistics.
func Summarize(results []model.QueryResult) Summary {
	s := Summary{Total: len(results)}

	for i := range results {
		r := &results[i]
		if !r.Success() {
			s.Failed++
			continue
		}

		if s.Successful == 0 {
			s.MinDuration = r.Duration
			s.MaxDuration = r.Duration
		} else {
			if r.Duration < s.MinDuration {
				s.MinDuration = r.Duration
			}
			if r.Duration > s.MaxDuration {
				s.MaxDuration = r.Duration
			}
		}

		s.Successful++
		s.TotalRows += r.RowCount
		s.TotalTime += r.Duration
	}

	if s.Successful > 0 {
		s.AvgDuration = s.TotalTime / time.Duration(s.Successful)
	}

	return s
}

// Failures returns the failed results in their original order.
func Failures(results []model.QueryResult) []model.QueryResult {
	var failed []model.QueryResult
	for i := range results {
		if !results[i].Success() {
			failed = append(failed, results[i])
		}
	}
	return failed
}

const bannerWidth = 70

// WriteText renders the execution summary banner.
func WriteText(w io.Writer, s Summary) error {
	line := strings.Repeat("=", bannerWidth)

	rows := []string{
		"",
		line,
		"QUERY EXECUTION SUMMARY",
		line,
		fmt.Sprintf("Total queries:        %d", s.Total),
		fmt.Sprintf("Successful:           %d", s.Successful),
		fmt.Sprintf("Failed:               %d", s.Failed),
		fmt.Sprintf("Total rows retrieved: %s", util.GroupDigits(s.TotalRows)),
		fmt.Sprintf("Total duration:       %.2fs", s.TotalTime.Seconds()),
		fmt.Sprintf("Average per query:    %.2fms", millis(s.AvgDuration)),
	}

	if s.Successful > 0 {
		rows = append(rows,
			fmt.Sprintf("Min query time:       %.2fms", millis(s.MinDuration)),
			fmt.Sprintf("Max query time:       %.2fms", millis(s.MaxDuration)),
		)
	}

	rows = append(rows, line, "")

	_, err := io.WriteString(w, strings.Join(rows, "\n")+"\n")
	return err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
