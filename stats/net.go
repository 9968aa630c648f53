package stats

import (
	"fmt"

	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
)

// Net is a Record with the nested time attributed away: each PhaseTime is
// the time spent exclusively in that phase.
type Net struct {
	FrameNumber uint64
	SliceType   types.SliceType
	Counters    [types.CounterCount]uint64

	FrameTime timer.Ticks
	SliceTime timer.Ticks
	CABACTime timer.Ticks
	PhaseTime [types.PhaseCount]timer.Ticks

	CABACExcluded  [types.PhaseCount]timer.Ticks
	NestedExcluded [types.PhaseCount]timer.Ticks
}

// NegativeNetTimeError means more time was attributed away from a phase than
// was measured for it: a span was accounted into the phase outside of its
// begin/end bracket.
type NegativeNetTimeError struct {
	FrameNumber uint64
	Phase       types.Phase
	Raw         timer.Ticks
	Excluded    timer.Ticks
}

func (e *NegativeNetTimeError) Error() string {
	return fmt.Sprintf(
		"frame #%d: phase '%s': excluded time %d is larger than the measured time %d",
		e.FrameNumber, e.Phase, e.Excluded, e.Raw,
	)
}

// Net subtracts the exclusion accumulators from the phases they belong to.
//
// The record itself is not modified, so the subtraction cannot be applied twice.
func (r *Record) Net() (Net, error) {
	net := Net{
		FrameNumber:    r.FrameNumber,
		SliceType:      r.SliceType,
		Counters:       r.Counters,
		FrameTime:      r.FrameTime,
		SliceTime:      r.SliceTime,
		CABACTime:      r.CABACTime,
		CABACExcluded:  r.CABACExcluded,
		NestedExcluded: r.NestedExcluded,
	}
	for _, phase := range types.Phases() {
		raw := r.PhaseTime[phase]
		excluded := r.CABACExcluded[phase] + r.NestedExcluded[phase]
		if excluded > raw {
			return Net{}, &NegativeNetTimeError{
				FrameNumber: r.FrameNumber,
				Phase:       phase,
				Raw:         raw,
				Excluded:    excluded,
			}
		}
		net.PhaseTime[phase] = raw - excluded
	}
	return net, nil
}
