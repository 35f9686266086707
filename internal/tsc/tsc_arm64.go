//go:build arm64

package tsc

// cntvct reads the virtual counter via CNTVCT_EL0.
// Implemented in tsc_arm64.s.
func cntvct() uint64

// Read returns the current value of the cycle counter.
func Read() uint64 {
	return cntvct()
}

// Name returns the name of the counter being read.
func Name() string {
	return "cntvct_el0"
}
