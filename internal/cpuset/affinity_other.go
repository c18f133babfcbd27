//go:build !linux

package cpuset

// Pin is a no-op on platforms without settable CPU affinity. The worker
// budget still limits concurrency; only the hard mask is unavailable.
func Pin(n int) (PinOutcome, error) {
	return PinUnsupported, nil
}
