package tlmdebug

import "sync/atomic"

// BufferCounters track activity on an event buffer.
type BufferCounters struct {
	Written atomic.Uint64
	Drains  atomic.Uint64
	Torn    atomic.Uint64
	Lost    atomic.Uint64
}

// Values returns the current values of the counters.
func (bc *BufferCounters) Values() (written, drains, torn, lost uint64) {
	var (
		w = bc.Written.Load()
		d = bc.Drains.Load()
		t = bc.Torn.Load()
		l = bc.Lost.Load()
	)
	return w, d, t, l
}

// LossPercent returns the percent (0..100) of written records that were
// overwritten before being drained.
func (bc *BufferCounters) LossPercent() float64 {
	var (
		written = bc.Written.Load()
		lost    = bc.Lost.Load()
	)
	if written <= 0 {
		return 0.0
	}
	return 100 * float64(lost) / float64(written)
}
