package stats

import (
	"fmt"
)

// DefaultInitialCapacity is enough for a short clip without relocations.
const DefaultInitialCapacity = 8192

// FrameGapError means the frame numbers of the pushed records are not
// consecutive: a frame was dropped or pushed twice.
type FrameGapError struct {
	Expected uint64
	Actual   uint64
}

func (e *FrameGapError) Error() string {
	return fmt.Sprintf("expected frame #%d, got frame #%d", e.Expected, e.Actual)
}

// Buffer is an append-only store of records, which keeps them in memory
// until the end of the session, so the decoding is not stalled by file writes.
//
// When the buffer is full, its capacity doubles and the records are relocated.
type Buffer struct {
	records []Record
}

func NewBuffer(initialCapacity int) *Buffer {
	if initialCapacity <= 0 {
		initialCapacity = DefaultInitialCapacity
	}
	return &Buffer{
		records: make([]Record, 0, initialCapacity),
	}
}

// Push appends a copy of the record. The frame number must be one more than
// the frame number of the previously pushed record.
func (b *Buffer) Push(r Record) error {
	if n := len(b.records); n > 0 {
		if expected := b.records[n-1].FrameNumber + 1; r.FrameNumber != expected {
			return &FrameGapError{Expected: expected, Actual: r.FrameNumber}
		}
	}
	if len(b.records) == cap(b.records) {
		b.grow()
	}
	b.records = append(b.records, r)
	return nil
}

func (b *Buffer) grow() {
	newCap := 2 * cap(b.records)
	if newCap == 0 {
		newCap = DefaultInitialCapacity
	}
	records := make([]Record, len(b.records), newCap)
	copy(records, b.records)
	b.records = records
}

func (b *Buffer) Len() int {
	return len(b.records)
}

func (b *Buffer) Cap() int {
	return cap(b.records)
}

// Range calls the callback for every record in the order they were pushed,
// until the callback returns false. The callback must not modify the record.
func (b *Buffer) Range(callback func(idx int, r *Record) bool) {
	for idx := range b.records {
		if !callback(idx, &b.records[idx]) {
			return
		}
	}
}

// Release drops the records; the buffer is not usable afterwards.
func (b *Buffer) Release() {
	b.records = nil
}
