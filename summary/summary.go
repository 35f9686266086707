// Package summary reads a rendered trace back into records and aggregates
// intervals, pairing start and stop lines by identifier and converting cycle
// offsets to durations via the trace's calibration line.
package summary

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/tlmlabs/tlm"
)

// Summary holds the parsed content of a rendered trace.
type Summary struct {
	// TicksPerSecond is the calibration factor from the trace's calibration
	// line, or zero if the trace has none.
	TicksPerSecond float64

	// Epoch is the raw baseline cycle count from the trace's epoch line.
	Epoch uint64

	// Records are the parsed records in file order. Time holds the rendered
	// epoch-relative offset, not a raw counter value.
	Records []tlm.Record
}

var (
	reCalibration = regexp.MustCompile(`^\s*([0-9a-f]+) Calibration: ([0-9.]+) ticks per second$`)
	reEpoch       = regexp.MustCompile(`^\s*([0-9a-f]+) Epoch counter: ([0-9]+)$`)
	reTimestamp   = regexp.MustCompile(`^\s*([0-9a-f]+)\s+([0-9]+) -\|- Time stamp:\s+(".*")$`)
	reStart       = regexp.MustCompile(`^\s*([0-9a-f]+)\s+([0-9]+) \(-\s+Interval start:\s+(".*") \(([0-9]+)\)$`)
	reStop        = regexp.MustCompile(`^\s*([0-9a-f]+)\s+([0-9]+)\s+-\)\s+Interval stop:\s+(".*") \(([0-9]+)\)$`)
	reAnnotation  = regexp.MustCompile(`^\s*([0-9a-f]+)\s+\?\?\? Annotation:\s+(".*") \(([0-9]+)\)$`)
)

// Read parses a rendered trace from r. Lines that match no known record
// layout produce an error naming the offending line.
func Read(r io.Reader) (*Summary, error) {
	var (
		s       Summary
		scanner = bufio.NewScanner(r)
		lineno  = 0
	)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if line == "" {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}

		switch rec.Kind {
		case tlm.KindCalibration:
			s.TicksPerSecond = rec.TicksPerSecond
		case tlm.KindEpoch:
			s.Epoch = rec.Time
		}
		s.Records = append(s.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return &s, nil
}

func parseLine(line string) (tlm.Record, error) {
	if m := reCalibration.FindStringSubmatch(line); m != nil {
		tid, _ := strconv.ParseUint(m[1], 16, 64)
		tps, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return tlm.Record{}, fmt.Errorf("calibration factor %q: %w", m[2], err)
		}
		return tlm.Record{Kind: tlm.KindCalibration, ThreadID: tid, TicksPerSecond: tps}, nil
	}

	if m := reEpoch.FindStringSubmatch(line); m != nil {
		tid, _ := strconv.ParseUint(m[1], 16, 64)
		epoch, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return tlm.Record{}, fmt.Errorf("epoch counter %q: %w", m[2], err)
		}
		return tlm.Record{Kind: tlm.KindEpoch, ThreadID: tid, Time: epoch}, nil
	}

	if m := reTimestamp.FindStringSubmatch(line); m != nil {
		rec := tlm.Record{Kind: tlm.KindTimestamp}
		if err := fillCommon(&rec, m[1], m[2], m[3], ""); err != nil {
			return tlm.Record{}, err
		}
		return rec, nil
	}

	if m := reStart.FindStringSubmatch(line); m != nil {
		rec := tlm.Record{Kind: tlm.KindIntervalStart}
		if err := fillCommon(&rec, m[1], m[2], m[3], m[4]); err != nil {
			return tlm.Record{}, err
		}
		return rec, nil
	}

	if m := reStop.FindStringSubmatch(line); m != nil {
		rec := tlm.Record{Kind: tlm.KindIntervalEnd}
		if err := fillCommon(&rec, m[1], m[2], m[3], m[4]); err != nil {
			return tlm.Record{}, err
		}
		return rec, nil
	}

	if m := reAnnotation.FindStringSubmatch(line); m != nil {
		rec := tlm.Record{Kind: tlm.KindIntervalAnnotation}
		if err := fillCommon(&rec, m[1], "", m[2], m[3]); err != nil {
			return tlm.Record{}, err
		}
		return rec, nil
	}

	return tlm.Record{}, fmt.Errorf("unrecognized record line %q", line)
}

func fillCommon(rec *tlm.Record, tid, offset, quoted, intervalID string) error {
	var err error
	if rec.ThreadID, err = strconv.ParseUint(tid, 16, 64); err != nil {
		return fmt.Errorf("thread id %q: %w", tid, err)
	}
	if offset != "" {
		if rec.Time, err = strconv.ParseUint(offset, 10, 64); err != nil {
			return fmt.Errorf("cycle offset %q: %w", offset, err)
		}
	}
	if rec.Description, err = strconv.Unquote(quoted); err != nil {
		return fmt.Errorf("description %s: %w", quoted, err)
	}
	if intervalID != "" {
		if rec.IntervalID, err = strconv.ParseUint(intervalID, 10, 64); err != nil {
			return fmt.Errorf("interval id %q: %w", intervalID, err)
		}
	}
	return nil
}

//
//
//

// IntervalSummary aggregates the start, stop, and annotation records that
// share an interval identifier.
type IntervalSummary struct {
	ID          uint64
	ThreadID    uint64 // from the start record
	Description string // from the start record
	StartCycles uint64 // epoch-relative start offset
	StopCycles  uint64 // epoch-relative stop offset
	Start       time.Duration
	Duration    time.Duration
	Annotations []string
	Complete    bool // both start and stop were seen
}

// ByInterval pairs interval records by identifier and returns one summary
// per interval, ordered by identifier. Start and Duration are zero when the
// trace carries no calibration factor.
func (s *Summary) ByInterval() []IntervalSummary {
	var (
		byID    = map[uint64]*IntervalSummary{}
		started = map[uint64]bool{}
		stopped = map[uint64]bool{}
	)
	get := func(id uint64) *IntervalSummary {
		is, ok := byID[id]
		if !ok {
			is = &IntervalSummary{ID: id}
			byID[id] = is
		}
		return is
	}

	for _, rec := range s.Records {
		switch rec.Kind {
		case tlm.KindIntervalStart:
			is := get(rec.IntervalID)
			is.ThreadID = rec.ThreadID
			is.Description = rec.Description
			is.StartCycles = rec.Time
			started[rec.IntervalID] = true
		case tlm.KindIntervalEnd:
			is := get(rec.IntervalID)
			is.StopCycles = rec.Time
			stopped[rec.IntervalID] = true
		case tlm.KindIntervalAnnotation:
			is := get(rec.IntervalID)
			is.Annotations = append(is.Annotations, rec.Description)
		}
	}

	result := make([]IntervalSummary, 0, len(byID))
	for id, is := range byID {
		is.Complete = started[id] && stopped[id]
		if s.TicksPerSecond > 0 {
			is.Start = cyclesToDuration(is.StartCycles, s.TicksPerSecond)
			if is.Complete && is.StopCycles >= is.StartCycles {
				is.Duration = cyclesToDuration(is.StopCycles-is.StartCycles, s.TicksPerSecond)
			}
		}
		result = append(result, *is)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func cyclesToDuration(cycles uint64, ticksPerSecond float64) time.Duration {
	return time.Duration(math.Round(float64(cycles) / ticksPerSecond * float64(time.Second)))
}
