package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/tlmlabs/tlm"
)

type demoConfig struct {
	*rootConfig

	out           string
	workers       int
	duration      time.Duration
	capacity      int
	drainInterval time.Duration
	calibration   time.Duration
}

func (cfg *demoConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'o',
		LongName:    "out",
		Value:       ffval.NewValue(&cfg.out),
		Usage:       "output trace file (default tlm-<ULID>.txt)",
		Placeholder: "FILE",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 'w',
		LongName:  "workers",
		Value:     ffval.NewValueDefault(&cfg.workers, 4),
		Usage:     "number of producer goroutines",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName: 'd',
		LongName:  "duration",
		Value:     ffval.NewValueDefault(&cfg.duration, 2*time.Second),
		Usage:     "how long to run the workload",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "capacity",
		Value:    ffval.NewValueDefault(&cfg.capacity, tlm.DefaultBufferCapacity),
		Usage:    "event buffer capacity",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "drain-interval",
		Value:    ffval.NewValueDefault(&cfg.drainInterval, 250*time.Millisecond),
		Usage:    "how often the background drain runs",
	})
	fs.AddFlag(ff.FlagConfig{
		LongName: "calibration",
		Value:    ffval.NewValueDefault(&cfg.calibration, time.Second),
		Usage:    "cycle counter calibration window",
	})
}

func (cfg *demoConfig) Exec(ctx context.Context, args []string) error {
	cfg.setup()

	out := cfg.out
	if out == "" {
		out = fmt.Sprintf("tlm-%s.txt", ulid.Make())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}

	rec := tlm.NewRecorder(tlm.RecorderConfig{
		Capacity:            cfg.capacity,
		DrainInterval:       cfg.drainInterval,
		CalibrationDuration: cfg.calibration,
	})

	cfg.debug.Printf("calibrating %s for %s...", tlm.CycleSourceName(), cfg.calibration)
	rec.Initialize(f)
	cfg.debug.Printf("calibration: %.0f ticks per second", rec.Stats().TicksPerSecond)

	var g run.Group
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.runWorkers(ctx, rec)
		}, func(error) {
			cancel()
		})
	}
	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}
	runErr := g.Run()

	if err := rec.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	stats := rec.Stats()
	fmt.Fprintf(cfg.stdout, "wrote %s: %d records, %d lost, %d torn, %d drain passes\n",
		out, stats.Written, stats.Lost, stats.Torn, stats.Drains)

	return runErr
}

func (cfg *demoConfig) runWorkers(ctx context.Context, rec *tlm.Recorder) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(worker uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(worker) + 1))
			for i := 0; ctx.Err() == nil; i++ {
				id := rec.StartInterval(worker, "work unit")
				time.Sleep(time.Duration(rng.Intn(1000)) * time.Microsecond)
				if i%10 == 0 {
					rec.AnnotateInterval(worker, id, "checkpoint")
				}
				rec.StopInterval(worker, id, "work unit")
				if i%25 == 0 {
					rec.Timestamp(worker, "batch boundary")
				}
			}
		}(uint64(w))
	}
	wg.Wait()
	return nil
}
