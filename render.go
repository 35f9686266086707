package tlm

import (
	"fmt"
	"io"
)

// WriteRecord renders the record as a single line of text to w. Cycle counts
// are reported relative to the given epoch. The line layout is stable and
// parsed by package summary; field order matters to downstream tooling.
func WriteRecord(w io.Writer, rec Record, epoch uint64) error {
	if _, err := fmt.Fprintf(w, "%10x ", rec.ThreadID); err != nil {
		return err
	}

	var err error
	switch rec.Kind {
	case KindCalibration:
		_, err = fmt.Fprintf(w, "Calibration: %f ticks per second\n", rec.TicksPerSecond)
	case KindEpoch:
		_, err = fmt.Fprintf(w, "Epoch counter: %d\n", rec.Time)
	case KindTimestamp:
		_, err = fmt.Fprintf(w, "%15d -|- Time stamp:     %q\n", rec.Time-epoch, rec.Description)
	case KindIntervalStart:
		_, err = fmt.Fprintf(w, "%15d (-  Interval start: %q (%d)\n", rec.Time-epoch, rec.Description, rec.IntervalID)
	case KindIntervalEnd:
		_, err = fmt.Fprintf(w, "%15d  -) Interval stop:  %q (%d)\n", rec.Time-epoch, rec.Description, rec.IntervalID)
	case KindIntervalAnnotation:
		_, err = fmt.Fprintf(w, "%15s ??? Annotation:     %q (%d)\n", " ", rec.Description, rec.IntervalID)
	default:
		_, err = fmt.Fprintf(w, "unknown record kind (%d)\n", rec.Kind)
	}
	return err
}
