// Package tlm provides a low-overhead, in-process event recorder for
// instrumenting concurrent programs. Callers mark instantaneous events, open
// and close named intervals, and attach annotations to intervals, from any
// number of goroutines, at a cost of roughly one atomic compare-and-swap and
// a cycle counter read per call.
//
// Events are written into a fixed-capacity ring buffer shared by all
// producers. A single background goroutine periodically drains the buffer,
// rendering each record as one line of text to a caller-supplied sink. The
// recorder never blocks producers: if producers outrun the drain across a
// full buffer capacity, the oldest undrained records are overwritten and
// lost. This is a deliberate trade-off, bounded memory and bounded producer
// latency in exchange for best-effort completeness, not an error condition.
//
// Timestamps are raw hardware cycle counts (RDTSCP on amd64, CNTVCT_EL0 on
// arm64, a monotonic clock elsewhere). Because free-running cycle counters
// are not required to tick at any advertised frequency, the recorder
// calibrates the counter against the wall clock once at initialization, and
// emits the measured ticks-per-second factor as the first record of every
// trace so that downstream tooling can convert offsets to real time.
//
// Most programs should use [github.com/tlmlabs/tlm/eztlm], which wraps a
// process-global Recorder in package-level functions.
package tlm
