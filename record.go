package tlm

// Kind discriminates the payload of a [Record].
type Kind uint8

const (
	KindCalibration Kind = iota
	KindEpoch
	KindTimestamp
	KindIntervalStart
	KindIntervalEnd
	KindIntervalAnnotation
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindCalibration:
		return "calibration"
	case KindEpoch:
		return "epoch"
	case KindTimestamp:
		return "timestamp"
	case KindIntervalStart:
		return "interval start"
	case KindIntervalEnd:
		return "interval stop"
	case KindIntervalAnnotation:
		return "annotation"
	default:
		return "unknown"
	}
}

// Record is a single buffered event. It's a flat struct rather than a
// variant type: only the fields relevant to the Kind are meaningful, the
// rest stay zero. Records are copied by value into and out of the buffer.
//
// Description is an ordinary Go string. The buffer keeps the string header,
// not a copy of the bytes, which is safe here: strings are immutable and the
// garbage collector keeps the backing array alive for as long as any record
// references it. Callers may pass transient strings freely.
type Record struct {
	Kind           Kind
	ThreadID       uint64  // caller-supplied producer identity
	Time           uint64  // raw cycle count; zero for Calibration and IntervalAnnotation
	IntervalID     uint64  // IntervalStart, IntervalEnd, IntervalAnnotation
	Description    string  // Timestamp, IntervalStart, IntervalEnd, IntervalAnnotation
	TicksPerSecond float64 // Calibration only
}
