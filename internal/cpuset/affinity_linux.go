//go:build linux

package cpuset

import "golang.org/x/sys/unix"

// Pin restricts the current process to the first n logical cores via
// sched_setaffinity. The mask applies to every thread the Go runtime
// creates afterwards and to child engine processes.
func Pin(n int) (PinOutcome, error) {
	if n < 1 {
		n = 1
	}
	var set unix.CPUSet
	for i := 0; i < n; i++ {
		set.Set(i)
	}
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return PinError, err
	}
	return PinApplied, nil
}
