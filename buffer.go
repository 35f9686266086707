package tlm

import (
	"sync/atomic"

	"github.com/tlmlabs/tlm/internal/tlmdebug"
)

// DefaultBufferCapacity is the buffer capacity used when none is given.
const DefaultBufferCapacity = 10000

// A slot pairs a record with a sequence number used as a seqlock. The owning
// producer bumps the sequence to an odd value before filling the record, and
// to an even value after. The drain reads the sequence on both sides of its
// copy, and discards the copy if either read observed an odd value or the
// two reads disagree.
type slot struct {
	seq atomic.Uint64
	rec Record
}

// Buffer is a fixed-capacity ring of records, shared by any number of
// producer goroutines and exactly one drainer. Producers claim slots through
// an optimistic compare-and-swap loop on a single shared cursor, so claims
// never block and never fail. The cursor is a monotonically increasing
// logical position; the physical slot is the position modulo capacity.
//
// No claim is ever refused: when producers lap the drainer by more than the
// capacity, the oldest undrained records are silently overwritten. Drain
// accounts for those as lost.
type Buffer struct {
	slots    []slot
	write    atomic.Uint64 // next logical position to claim
	drained  uint64        // next logical position to drain, drainer-owned
	counters tlmdebug.BufferCounters
}

// NewBuffer returns an empty buffer with the given capacity, or
// DefaultBufferCapacity if the given value is not positive.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{
		slots: make([]slot, capacity),
	}
}

// Capacity returns the fixed capacity of the buffer.
func (b *Buffer) Capacity() int {
	return len(b.slots)
}

// AllocateSlot grants the caller exclusive write ownership of the returned
// logical position, until the position is lapped by capacity-many further
// allocations. The loop is lock-free but not wait-free: a loser of the CAS
// race simply re-reads the cursor and tries again.
func (b *Buffer) AllocateSlot() uint64 {
	for {
		pos := b.write.Load()
		if b.write.CompareAndSwap(pos, pos+1) {
			return pos
		}
	}
}

// Put fills the slot at the given position. The caller must own pos via
// AllocateSlot.
func (b *Buffer) Put(pos uint64, rec Record) {
	s := &b.slots[pos%uint64(len(b.slots))]
	s.seq.Add(1) // odd: write in progress
	s.rec = rec
	s.seq.Add(1) // even: published
	b.counters.Written.Add(1)
}

// Append claims a slot and fills it with the record, returning the logical
// position that was claimed.
func (b *Buffer) Append(rec Record) uint64 {
	pos := b.AllocateSlot()
	b.Put(pos, rec)
	return pos
}

// Drain visits, in logical write order, every record written since the
// previous drain, and advances the drain cursor. When the undrained region
// exceeds the capacity, the region is clamped to the newest capacity-many
// positions and the remainder is counted as lost. Slots whose seqlock shows
// a write in progress are skipped and counted as torn, their positions are
// still consumed.
//
// If visit returns an error, Drain stops and returns it; the rest of the
// region is abandoned, not retried. Drain must only be called from a single
// goroutine.
func (b *Buffer) Drain(visit func(Record) error) error {
	var (
		capacity = uint64(len(b.slots))
		end      = b.write.Load()
		start    = b.drained
	)

	if end-start > capacity {
		b.counters.Lost.Add(end - start - capacity)
		start = end - capacity
	}

	b.drained = end
	b.counters.Drains.Add(1)

	for pos := start; pos < end; pos++ {
		s := &b.slots[pos%capacity]

		seq := s.seq.Load()
		rec := s.rec
		if seq%2 != 0 || s.seq.Load() != seq {
			b.counters.Torn.Add(1)
			continue
		}

		if err := visit(rec); err != nil {
			return err
		}
	}

	return nil
}

// BufferStats is a point-in-time snapshot of buffer activity.
type BufferStats struct {
	Written uint64 // records put into the buffer
	Drains  uint64 // drain passes completed or attempted
	Torn    uint64 // slots skipped mid-write by the drain
	Lost    uint64 // records overwritten before being drained
}

// Stats returns a snapshot of the buffer's counters.
func (b *Buffer) Stats() BufferStats {
	written, drains, torn, lost := b.counters.Values()
	return BufferStats{
		Written: written,
		Drains:  drains,
		Torn:    torn,
		Lost:    lost,
	}
}
