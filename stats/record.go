package stats

import (
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
)

// Record is the statistics of a single decoded frame.
//
// The durations are raw: nested spans are still included into the spans they
// ran within, and the exclusion accumulators tell how much to subtract.
// See Net.
type Record struct {
	FrameNumber uint64
	SliceType   types.SliceType
	Counters    [types.CounterCount]uint64

	FrameTime timer.Ticks
	SliceTime timer.Ticks
	CABACTime timer.Ticks
	PhaseTime [types.PhaseCount]timer.Ticks

	// CABACExcluded is the CABAC time measured while the phase was current.
	CABACExcluded [types.PhaseCount]timer.Ticks

	// NestedExcluded is the time of other tracked phases which ran within the phase.
	NestedExcluded [types.PhaseCount]timer.Ticks
}

// Reset zeroes all the fields and sets the frame number.
func (r *Record) Reset(frameNumber uint64) {
	*r = Record{FrameNumber: frameNumber}
}

func (r *Record) Counter(c types.Counter) uint64 {
	return r.Counters[c]
}

// AddCABAC accounts a CABAC span which was measured while the phase was current.
func (r *Record) AddCABAC(current types.Phase, delta timer.Ticks, attribute bool) {
	r.CABACTime += delta
	if attribute && current.IsTracked() {
		r.CABACExcluded[current] += delta
	}
}

// AddPhase accounts a span of the phase, which ran within the enclosing phase
// (types.PhaseNone if there was no enclosing phase).
func (r *Record) AddPhase(phase, enclosing types.Phase, delta timer.Ticks, attribute bool) {
	r.PhaseTime[phase] += delta
	if attribute && enclosing.IsTracked() {
		r.NestedExcluded[enclosing] += delta
	}
}
