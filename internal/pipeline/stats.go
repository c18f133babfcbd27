package pipeline

import "time"

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total     int
	Current   int
	Succeeded int
	Failed    int

	// Compression ratios are summed over successful conversions only.
	RatioSum float64

	// Original-file disposal accounting (--delete-original).
	Deleted        int
	SpaceReclaimed int64 // Bytes; original size minus output size per success.

	// Interrupted is set when a cancellation stopped the batch before every
	// file was processed. An interrupted run is not a successful run even
	// when no individual file failed.
	Interrupted bool

	Elapsed time.Duration
}

// AverageRatio returns the mean compression ratio over successful
// conversions, or 0 when nothing succeeded.
func (s *RunStats) AverageRatio() float64 {
	if s.Succeeded == 0 {
		return 0
	}
	return s.RatioSum / float64(s.Succeeded)
}

// AverageTime returns the mean wall time per processed file.
func (s *RunStats) AverageTime() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.Total)
}
