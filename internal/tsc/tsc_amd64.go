//go:build amd64

package tsc

// rdtscp reads the processor timestamp counter. RDTSCP rather than RDTSC,
// for the implicit pipeline serialization.
// Implemented in tsc_amd64.s.
func rdtscp() uint64

// Read returns the current value of the cycle counter.
func Read() uint64 {
	return rdtscp()
}

// Name returns the name of the counter being read.
func Name() string {
	return "rdtscp"
}
