// Package timer measures spans of the decoding process with either the CPU
// time-stamp counter or a monotonic clock, and converts the measured ticks
// into nanoseconds and milliseconds.
package timer

// Ticks is a raw time measurement: CPU cycles for the TSC backend,
// nanoseconds for the monotonic backend.
type Ticks int64

// Clock is a source of Ticks. Implementations must be cheap to call:
// they are called on every Begin/End pair of the decoding hot path.
type Clock interface {
	Now() Ticks
}

// Mark is the opaque start marker of a span.
type Mark struct {
	start Ticks
}

// Begin starts a span.
func Begin(clock Clock) Mark {
	return Mark{start: clock.Now()}
}

// End adds the time elapsed since the mark to the accumulator and returns
// the added value.
func (m Mark) End(clock Clock, accumulator *Ticks) Ticks {
	delta := clock.Now() - m.start
	*accumulator += delta
	return delta
}

// Elapsed returns the time elapsed since the mark.
func (m Mark) Elapsed(clock Clock) Ticks {
	return clock.Now() - m.start
}
