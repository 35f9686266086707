package tlm_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tlmlabs/tlm"
)

// syntheticCycles returns a cycle source that ticks once per nanosecond, so
// a calibration against it comes out at roughly 1e9 ticks per second.
func syntheticCycles() func() uint64 {
	base := time.Now()
	return func() uint64 { return uint64(time.Since(base)) }
}

type testSink struct {
	buf    bytes.Buffer
	closes int
}

func (s *testSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *testSink) Close() error                { s.closes++; return nil }

type failingSink struct{ err error }

func (s *failingSink) Write([]byte) (int, error) { return 0, s.err }
func (s *failingSink) Close() error              { return nil }

func testConfig() tlm.RecorderConfig {
	return tlm.RecorderConfig{
		Capacity:            64,
		DrainInterval:       10 * time.Millisecond,
		CalibrationDuration: 10 * time.Millisecond,
		ReadCycles:          syntheticCycles(),
	}
}

func TestRecorderLifecycle(t *testing.T) {
	t.Parallel()

	sink := &testSink{}
	rec := tlm.NewRecorder(testConfig())
	rec.Initialize(sink)

	id0 := rec.StartInterval(1, "alpha")
	id1 := rec.StartInterval(2, "beta")
	AssertEqual(t, uint64(0), id0)
	AssertEqual(t, uint64(1), id1)

	rec.AnnotateInterval(1, id0, "note")
	rec.Timestamp(1, "mark")
	rec.StopInterval(2, id1, "beta")
	rec.StopInterval(1, id0, "alpha")

	AssertNoError(t, rec.Shutdown())
	AssertEqual(t, 1, sink.closes)

	lines := strings.Split(strings.TrimRight(sink.buf.String(), "\n"), "\n")
	AssertEqual(t, 8, len(lines))

	want := []string{
		`Calibration: `,
		`Epoch counter: `,
		`Interval start: "alpha" (0)`,
		`Interval start: "beta" (1)`,
		`Annotation:     "note" (0)`,
		`Time stamp:     "mark"`,
		`Interval stop:  "beta" (1)`,
		`Interval stop:  "alpha" (0)`,
	}
	for i, fragment := range want {
		if !strings.Contains(lines[i], fragment) {
			t.Errorf("line %d: want %q in %q", i+1, fragment, lines[i])
		}
	}

	stats := rec.Stats()
	AssertEqual(t, uint64(8), stats.Written)
	AssertEqual(t, uint64(0), stats.Lost)
	if stats.TicksPerSecond < 0.5e9 || stats.TicksPerSecond > 2e9 {
		t.Errorf("ticks per second %f, want roughly 1e9", stats.TicksPerSecond)
	}
}

func TestInactiveOperationsAreNoops(t *testing.T) {
	t.Parallel()

	rec := tlm.NewDefaultRecorder()

	rec.Timestamp(1, "x")
	AssertEqual(t, uint64(0), rec.StartInterval(1, "x"))
	rec.StopInterval(1, 0, "x")
	rec.AnnotateInterval(1, 0, "x")

	AssertEqual(t, uint64(0), rec.Stats().Written)
	AssertNoError(t, rec.Shutdown()) // never initialized
}

func TestIntervalIdentifiersIncrease(t *testing.T) {
	t.Parallel()

	rec := tlm.NewRecorder(testConfig())
	rec.Initialize(&testSink{})
	defer rec.Shutdown()

	for want := uint64(0); want < 100; want++ {
		AssertEqual(t, want, rec.StartInterval(1, "x"))
	}
}

func TestSinkWriteErrorPropagates(t *testing.T) {
	t.Parallel()

	sinkErr := errors.New("sink full")
	rec := tlm.NewRecorder(testConfig())
	rec.Initialize(&failingSink{err: sinkErr})

	rec.Timestamp(1, "x")

	if err := rec.Shutdown(); !errors.Is(err, sinkErr) {
		t.Fatalf("want %v, have %v", sinkErr, err)
	}
}

func TestShutdownStopsProducers(t *testing.T) {
	t.Parallel()

	rec := tlm.NewRecorder(testConfig())
	rec.Initialize(&testSink{})
	rec.Timestamp(1, "before")
	AssertNoError(t, rec.Shutdown())

	written := rec.Stats().Written
	rec.Timestamp(1, "after")
	AssertEqual(t, written, rec.Stats().Written)
	AssertEqual(t, uint64(0), rec.StartInterval(1, "after"))
}

func TestShutdownFlushesFinalRecords(t *testing.T) {
	t.Parallel()

	// A drain interval far longer than the test: if the record reaches the
	// sink, it was the final pass on shutdown that flushed it, not a tick.
	cfg := testConfig()
	cfg.DrainInterval = time.Hour

	sink := &testSink{}
	rec := tlm.NewRecorder(cfg)
	rec.Initialize(sink)
	rec.Timestamp(1, "last words")
	AssertNoError(t, rec.Shutdown())

	out := sink.buf.String()
	for _, fragment := range []string{
		"Calibration: ",
		"Epoch counter: ",
		`Time stamp:     "last words"`,
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("output missing %q:\n%s", fragment, out)
		}
	}
}

func TestShutdownIdempotent(t *testing.T) {
	t.Parallel()

	sink := &testSink{}
	rec := tlm.NewRecorder(testConfig())
	rec.Initialize(sink)
	rec.Timestamp(1, "x")

	AssertNoError(t, rec.Shutdown())
	AssertNoError(t, rec.Shutdown())
	AssertEqual(t, 1, sink.closes)
}

var _ io.WriteCloser = (*testSink)(nil)
