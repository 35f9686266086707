package tlm_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tlmlabs/tlm"
)

func TestAllocateSlotUniqueness(t *testing.T) {
	t.Parallel()

	const (
		workers   = 8
		perWorker = 1000
	)

	buf := tlm.NewBuffer(workers * perWorker)

	var wg sync.WaitGroup
	results := make([][]uint64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			positions := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				positions = append(positions, buf.AllocateSlot())
			}
			results[w] = positions
		}(w)
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, positions := range results {
		for _, pos := range positions {
			if seen[pos] {
				t.Fatalf("position %d granted twice", pos)
			}
			seen[pos] = true
		}
	}
	AssertEqual(t, workers*perWorker, len(seen))
}

func TestDrainOrderAcrossWrap(t *testing.T) {
	t.Parallel()

	buf := tlm.NewBuffer(4)

	ordinal := 0
	push := func(n int) {
		for i := 0; i < n; i++ {
			buf.Append(tlm.Record{Kind: tlm.KindTimestamp, Description: strconv.Itoa(ordinal)})
			ordinal++
		}
	}
	drain := func() []string {
		var got []string
		AssertNoError(t, buf.Drain(func(rec tlm.Record) error {
			got = append(got, rec.Description)
			return nil
		}))
		return got
	}

	// First drain leaves the cursors at position 2.
	push(2)
	if diff := cmp.Diff([]string{"0", "1"}, drain()); diff != "" {
		t.Errorf("first drain (-want +have):\n%s", diff)
	}

	// Four more records, positions 2..5, physically wrapping 2 3 0 1. The
	// drain must preserve logical order across the wrap boundary.
	push(4)
	if diff := cmp.Diff([]string{"2", "3", "4", "5"}, drain()); diff != "" {
		t.Errorf("wrapped drain (-want +have):\n%s", diff)
	}

	AssertEqual(t, uint64(0), buf.Stats().Lost)
}

func TestOverwriteOldest(t *testing.T) {
	t.Parallel()

	buf := tlm.NewBuffer(4)

	// Five writes into four slots: the fifth lands on the slot of the first,
	// so A's start is unrecoverable.
	idA := uint64(0)
	idB := uint64(1)
	buf.Append(tlm.Record{Kind: tlm.KindIntervalStart, IntervalID: idA, Description: "A"})
	buf.Append(tlm.Record{Kind: tlm.KindIntervalStart, IntervalID: idB, Description: "B"})
	buf.Append(tlm.Record{Kind: tlm.KindIntervalEnd, IntervalID: idB, Description: "B"})
	buf.Append(tlm.Record{Kind: tlm.KindIntervalEnd, IntervalID: idA, Description: "A"})
	buf.Append(tlm.Record{Kind: tlm.KindIntervalAnnotation, IntervalID: idA, Description: "note"})

	var got []tlm.Record
	AssertNoError(t, buf.Drain(func(rec tlm.Record) error {
		got = append(got, rec)
		return nil
	}))

	want := []tlm.Record{
		{Kind: tlm.KindIntervalStart, IntervalID: idB, Description: "B"},
		{Kind: tlm.KindIntervalEnd, IntervalID: idB, Description: "B"},
		{Kind: tlm.KindIntervalEnd, IntervalID: idA, Description: "A"},
		{Kind: tlm.KindIntervalAnnotation, IntervalID: idA, Description: "note"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("drained records (-want +have):\n%s", diff)
	}

	AssertEqual(t, uint64(1), buf.Stats().Lost)
}

func TestDrainNeverDuplicatesNorSkips(t *testing.T) {
	t.Parallel()

	buf := tlm.NewBuffer(4)

	ordinal := 0
	push := func(n int) {
		for i := 0; i < n; i++ {
			buf.Append(tlm.Record{Kind: tlm.KindTimestamp, Description: strconv.Itoa(ordinal)})
			ordinal++
		}
	}

	var rendered []string
	drain := func() {
		AssertNoError(t, buf.Drain(func(rec tlm.Record) error {
			rendered = append(rendered, rec.Description)
			return nil
		}))
	}

	push(3)
	drain()
	push(6) // laps the drain by two: ordinals 3 and 4 are overwritten
	drain()

	want := []string{"0", "1", "2", "5", "6", "7", "8"}
	if diff := cmp.Diff(want, rendered); diff != "" {
		t.Errorf("rendered ordinals (-want +have):\n%s", diff)
	}

	// The mapping back to write order must be injective and monotonic.
	prev := -1
	for _, s := range rendered {
		n, err := strconv.Atoi(s)
		AssertNoError(t, err)
		if n <= prev {
			t.Fatalf("ordinal %d rendered after %d", n, prev)
		}
		prev = n
	}

	AssertEqual(t, uint64(2), buf.Stats().Lost)
}

func TestBufferDefaultCapacity(t *testing.T) {
	t.Parallel()

	AssertEqual(t, tlm.DefaultBufferCapacity, tlm.NewBuffer(0).Capacity())
	AssertEqual(t, 4, tlm.NewBuffer(4).Capacity())
}
