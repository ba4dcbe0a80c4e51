package scitokens

import "time"

// Clock supplies coarse monotonic time to the cache: whole seconds on a
// scale whose origin is arbitrary but fixed for the process. Injected so
// tests can drive expiry and sweep behavior deterministically.
type Clock func() uint64

var processStart = time.Now()

// monotonicSeconds is the production clock. It reads the runtime monotonic
// clock once and rounds to whole seconds. Sub-second precision is
// deliberately discarded: expiries are whole seconds and a coarse reading
// keeps the hot path cheap.
func monotonicSeconds() uint64 {
	return roundSeconds(time.Since(processStart))
}

// roundSeconds converts a duration to whole seconds, rounding up at the
// half-second boundary.
func roundSeconds(d time.Duration) uint64 {
	secs := uint64(d / time.Second)
	if d%time.Second >= 500*time.Millisecond {
		secs++
	}
	return secs
}
