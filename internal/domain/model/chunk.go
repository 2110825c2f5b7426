package model

import "time"

// ChunkPeriods splits periods into contiguous chunks of at most size
// elements, preserving input order. A size <= 0 yields a single chunk.
func ChunkPeriods(periods []Period, size int) [][]Period {
	if len(periods) == 0 {
		return nil
	}
	if size <= 0 || size >= len(periods) {
		return [][]Period{periods}
	}
	chunks := make([][]Period, 0, (len(periods)+size-1)/size)
	for start := 0; start < len(periods); start += size {
		end := min(start+size, len(periods))
		chunks = append(chunks, periods[start:end])
	}
	return chunks
}

// TimeBounds returns the earliest StartTime and the latest EndTime across
// periods. Both are zero for an empty slice.
func TimeBounds(periods []Period) (time.Time, time.Time) {
	var lo, hi time.Time
	for i := range periods {
		if i == 0 || periods[i].StartTime.Before(lo) {
			lo = periods[i].StartTime
		}
		if i == 0 || periods[i].EndTime.After(hi) {
			hi = periods[i].EndTime
		}
	}
	return lo, hi
}
