// Package tsc reads the free-running hardware cycle counter of the host
// processor: the timestamp counter via RDTSCP on amd64, the virtual counter
// via CNTVCT_EL0 on arm64, and a monotonic-clock fallback elsewhere.
//
// Values are raw counts with no defined frequency. Callers who need real
// time units must calibrate the counter against a wall clock; nothing here
// assumes the counter ticks at any advertised rate.
package tsc
