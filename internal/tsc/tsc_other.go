//go:build !amd64 && !arm64

package tsc

import "time"

// Fallback counter for platforms without a supported hardware counter:
// monotonic nanoseconds since package initialization. Less precise, works
// everywhere.

var start = time.Now()

// Read returns the current value of the cycle counter.
func Read() uint64 {
	return uint64(time.Since(start))
}

// Name returns the name of the counter being read.
func Name() string {
	return "monotonic"
}
