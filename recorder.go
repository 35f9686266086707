package tlm

import (
	"bufio"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// RecorderConfig defines the configuration options for a recorder.
type RecorderConfig struct {
	// Capacity is how many records the event buffer holds. When producers
	// outrun the drain by more than this many records, the oldest undrained
	// records are overwritten. The default value is 10000.
	Capacity int

	// DrainInterval is how often the background drain renders buffered
	// records to the sink. The default value is 1s.
	DrainInterval time.Duration

	// CalibrationDuration is the reference window used to measure the cycle
	// counter frequency during Initialize. The default value is 1s.
	CalibrationDuration time.Duration

	// ReadCycles is the cycle source stamped into records. The default is
	// the hardware cycle counter via [ReadCycles]. Overridable for tests.
	ReadCycles func() uint64
}

func (cfg *RecorderConfig) sanitize() {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultBufferCapacity
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = time.Second
	}
	if cfg.CalibrationDuration <= 0 {
		cfg.CalibrationDuration = DefaultCalibrationDuration
	}
	if cfg.ReadCycles == nil {
		cfg.ReadCycles = ReadCycles
	}
}

// Recorder owns the event buffer, the clock calibration, and the background
// drain goroutine. All state is per-recorder: a process may run more than
// one, each with its own sink.
//
// The four producer operations are safe for concurrent use by any number of
// goroutines and never block on the drain. Before Initialize and after
// Shutdown they are no-ops behind a single atomic flag check.
type Recorder struct {
	cfg RecorderConfig
	buf *Buffer

	active     atomic.Bool
	intervalID atomic.Uint64

	// Latched by Initialize before the drain goroutine starts.
	epoch          uint64
	ticksPerSecond float64

	sink io.WriteCloser
	out  *bufio.Writer

	stop         chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
	drainErr     error // drain goroutine only, read after join
}

// NewRecorder returns an idle recorder with the given configuration. Nothing
// is recorded until Initialize is called.
func NewRecorder(cfg RecorderConfig) *Recorder {
	cfg.sanitize()
	return &Recorder{
		cfg: cfg,
		buf: NewBuffer(cfg.Capacity),
	}
}

// NewDefaultRecorder returns an idle recorder with the default configuration.
func NewDefaultRecorder() *Recorder {
	return NewRecorder(RecorderConfig{})
}

// Initialize calibrates the cycle counter, appends the calibration and epoch
// records, starts the background drain writing to the given sink, and
// activates the producer operations, in that order. It blocks for the
// calibration duration. The recorder takes ownership of the sink: Shutdown
// closes it.
//
// A recorder has a single lifecycle; Initialize must be called at most once.
func (r *Recorder) Initialize(sink io.WriteCloser) {
	r.ticksPerSecond = Calibrate(r.cfg.ReadCycles, r.cfg.CalibrationDuration)
	r.buf.Append(Record{
		Kind:           KindCalibration,
		TicksPerSecond: r.ticksPerSecond,
	})

	r.epoch = r.cfg.ReadCycles()
	r.buf.Append(Record{
		Kind: KindEpoch,
		Time: r.epoch,
	})

	r.sink = sink
	r.out = bufio.NewWriter(sink)
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.drainLoop()

	r.active.Store(true)
}

// Shutdown deactivates the producer operations, signals the drain goroutine
// to stop, joins it, and closes the sink. The drain performs one final pass
// on the way out, so records from producers that quiesced before Shutdown
// are flushed; records racing Shutdown may still be lost. The returned error
// is the first sink write error observed by the drain, if any, joined with
// the sink close error. Shutdown is idempotent, and a no-op if the recorder
// was never initialized.
func (r *Recorder) Shutdown() error {
	if r.stop == nil {
		return nil
	}

	r.shutdownOnce.Do(func() {
		r.active.Store(false)
		close(r.stop)
		<-r.done
		r.shutdownErr = errors.Join(r.drainErr, r.sink.Close())
	})

	return r.shutdownErr
}

// Stats returns a snapshot of recorder activity. The calibration factor is
// zero before Initialize.
func (r *Recorder) Stats() RecorderStats {
	bs := r.buf.Stats()
	return RecorderStats{
		TicksPerSecond: r.ticksPerSecond,
		Written:        bs.Written,
		Drains:         bs.Drains,
		Torn:           bs.Torn,
		Lost:           bs.Lost,
	}
}

// RecorderStats is a point-in-time snapshot of recorder activity.
type RecorderStats struct {
	TicksPerSecond float64
	Written        uint64
	Drains         uint64
	Torn           uint64
	Lost           uint64
}

//
//
//

// Timestamp records an instantaneous event.
func (r *Recorder) Timestamp(threadID uint64, description string) {
	if !r.active.Load() {
		return
	}
	r.buf.Append(Record{
		Kind:        KindTimestamp,
		ThreadID:    threadID,
		Time:        r.cfg.ReadCycles(),
		Description: description,
	})
}

// StartInterval opens a named interval and returns its identifier, which the
// caller passes to StopInterval and AnnotateInterval. Identifiers are drawn
// from a process-lifetime counter, never reused and never validated.
//
// When the recorder is inactive, StartInterval returns the sentinel 0. As in
// the original design, the sentinel collides with the first real identifier.
func (r *Recorder) StartInterval(threadID uint64, description string) uint64 {
	if !r.active.Load() {
		return 0
	}
	id := r.intervalID.Add(1) - 1
	r.buf.Append(Record{
		Kind:        KindIntervalStart,
		ThreadID:    threadID,
		Time:        r.cfg.ReadCycles(),
		IntervalID:  id,
		Description: description,
	})
	return id
}

// StopInterval closes an interval previously opened with StartInterval. The
// identifier is trusted, not checked against open intervals.
func (r *Recorder) StopInterval(threadID, intervalID uint64, description string) {
	if !r.active.Load() {
		return
	}
	r.buf.Append(Record{
		Kind:        KindIntervalEnd,
		ThreadID:    threadID,
		Time:        r.cfg.ReadCycles(),
		IntervalID:  intervalID,
		Description: description,
	})
}

// AnnotateInterval attaches a description to an interval. Annotations carry
// no timestamp of their own.
func (r *Recorder) AnnotateInterval(threadID, intervalID uint64, description string) {
	if !r.active.Load() {
		return
	}
	r.buf.Append(Record{
		Kind:        KindIntervalAnnotation,
		ThreadID:    threadID,
		IntervalID:  intervalID,
		Description: description,
	})
}

//
//
//

func (r *Recorder) drainLoop() {
	defer close(r.done)

	ticker := time.NewTicker(r.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			// Final pass, so that a quiesced producer's records are flushed
			// before Shutdown returns.
			if err := r.drainOnce(); err != nil && r.drainErr == nil {
				r.drainErr = err
			}
			return
		case <-ticker.C:
			if err := r.drainOnce(); err != nil {
				if r.drainErr == nil {
					r.drainErr = err
				}
				return
			}
		}
	}
}

func (r *Recorder) drainOnce() error {
	if err := r.buf.Drain(func(rec Record) error {
		return WriteRecord(r.out, rec, r.epoch)
	}); err != nil {
		return err
	}
	return r.out.Flush()
}
