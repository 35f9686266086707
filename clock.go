package tlm

import (
	"time"

	"github.com/tlmlabs/tlm/internal/tsc"
)

// DefaultCalibrationDuration is the reference window used by Calibrate when
// none is configured. Longer windows average out scheduling noise.
const DefaultCalibrationDuration = time.Second

// ReadCycles returns the current value of the hardware cycle counter. It is
// the default cycle source for a Recorder.
func ReadCycles() uint64 {
	return tsc.Read()
}

// CycleSourceName returns the name of the counter behind ReadCycles.
func CycleSourceName() string {
	return tsc.Name()
}

// Calibrate measures the frequency of the given cycle source against the
// monotonic wall clock: read, sleep for the reference duration, read again,
// and divide. The result is ticks per second.
//
// There is no error path. If the sleep is preempted or the clocks are
// coarse, the factor is simply less accurate. Calibrate is meant to run
// once, synchronously, at initialization: it consumes the full reference
// duration of wall-clock time.
func Calibrate(read func() uint64, d time.Duration) float64 {
	startCycles := read()
	startTime := time.Now()

	time.Sleep(d)

	endCycles := read()
	elapsed := time.Since(startTime)

	ticks := endCycles - startCycles
	return float64(ticks) / float64(elapsed.Nanoseconds()) * 1e9
}
