// Package eztlm wraps a process-global [tlm.Recorder] in package-level
// functions, for programs that want a single recorder and no plumbing.
package eztlm

import (
	"io"

	"github.com/tlmlabs/tlm"
)

var recorder = tlm.NewDefaultRecorder()

// Initialize calibrates and activates the global recorder, draining to sink.
// Call it once, at startup.
func Initialize(sink io.WriteCloser) {
	recorder.Initialize(sink)
}

// Shutdown stops the global recorder's drain, joins it, and closes the sink.
func Shutdown() error {
	return recorder.Shutdown()
}

// Timestamp records an instantaneous event.
func Timestamp(threadID uint64, description string) {
	recorder.Timestamp(threadID, description)
}

// StartInterval opens a named interval and returns its identifier.
func StartInterval(threadID uint64, description string) uint64 {
	return recorder.StartInterval(threadID, description)
}

// StopInterval closes an interval previously opened with StartInterval.
func StopInterval(threadID, intervalID uint64, description string) {
	recorder.StopInterval(threadID, intervalID, description)
}

// AnnotateInterval attaches a description to an interval.
func AnnotateInterval(threadID, intervalID uint64, description string) {
	recorder.AnnotateInterval(threadID, intervalID, description)
}

// Stats returns a snapshot of the global recorder's activity.
func Stats() tlm.RecorderStats {
	return recorder.Stats()
}
