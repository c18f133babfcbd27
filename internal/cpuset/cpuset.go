// Package cpuset derives the worker budget from the configured CPU fraction
// and applies best-effort process pinning to that many cores. Pinning is a
// throttling measure, not a guarantee: an unsupported platform or a denied
// syscall degrades to an unpinned process and the budget still holds the
// worker pool down.
package cpuset

import (
	"math"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// PinOutcome reports what happened when pinning was attempted.
type PinOutcome int

const (
	PinApplied     PinOutcome = iota // Affinity mask set to the first n cores.
	PinUnsupported                   // Platform has no settable affinity.
	PinError                         // Supported platform, but the call failed.
)

func (o PinOutcome) String() string {
	switch o {
	case PinApplied:
		return "applied"
	case PinUnsupported:
		return "unsupported"
	case PinError:
		return "error"
	default:
		return "unknown"
	}
}

// Workers returns max(1, floor(cores × fraction)) where cores is the logical
// core count. This value sizes the encode worker pool, seeds the per-chunk
// encoder thread hint, and bounds the affinity mask.
func Workers(fraction float64) int {
	return workersFor(logicalCores(), fraction)
}

func workersFor(cores int, fraction float64) int {
	n := int(math.Floor(float64(cores) * fraction))
	if n < 1 {
		return 1
	}
	return n
}

// logicalCores asks gopsutil for the logical core count, falling back to the
// runtime's view when host introspection fails.
func logicalCores() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
