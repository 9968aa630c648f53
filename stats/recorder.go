package stats

import (
	"context"

	"github.com/xaionaro-go/avdecodestats/internal"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
)

// MaxPhaseDepth is how deep tracked phases may be nested into each other.
const MaxPhaseDepth = 8

type openPhase struct {
	Phase types.Phase
	Mark  timer.Mark
}

// Recorder is the ingestion API for a decoder: it owns the working Record
// of the frame being decoded, and accounts the spans measured at the
// decoder's phase boundaries into it.
//
// Recorder is not safe for concurrent use: a decoding thread owns its Recorder.
type Recorder struct {
	Clock            timer.Clock
	CABACAttribution bool

	ctx        context.Context
	record     Record
	phases     [MaxPhaseDepth]openPhase
	phaseDepth int
}

func NewRecorder(
	ctx context.Context,
	clock timer.Clock,
	cabacAttribution bool,
) *Recorder {
	return &Recorder{
		Clock:            clock,
		CABACAttribution: cabacAttribution,
		ctx:              ctx,
	}
}

// Reset starts a new frame.
func (r *Recorder) Reset(frameNumber uint64) *Record {
	internal.Assert(r.ctx, r.phaseDepth == 0, "a new frame is started while phases are still open", r.CurrentPhase())
	r.record.Reset(frameNumber)
	return &r.record
}

// Record returns the working record; it is valid until the next Reset.
func (r *Recorder) Record() *Record {
	return &r.record
}

// Snapshot returns a copy of the working record, to be pushed into a Buffer.
func (r *Recorder) Snapshot() Record {
	internal.Assert(r.ctx, r.phaseDepth == 0, "a frame is committed while phases are still open", r.CurrentPhase())
	return r.record
}

// CurrentPhase is the innermost open phase: CABAC time is attributed to it.
func (r *Recorder) CurrentPhase() types.Phase {
	if r.phaseDepth == 0 {
		return types.PhaseNone
	}
	return r.phases[r.phaseDepth-1].Phase
}

func (r *Recorder) Begin() timer.Mark {
	return timer.Begin(r.Clock)
}

func (r *Recorder) End(mark timer.Mark, accumulator *timer.Ticks) {
	mark.End(r.Clock, accumulator)
}

func (r *Recorder) BeginFrame() timer.Mark {
	return r.Begin()
}

func (r *Recorder) EndFrame(mark timer.Mark) {
	r.End(mark, &r.record.FrameTime)
}

func (r *Recorder) BeginSlice() timer.Mark {
	return r.Begin()
}

func (r *Recorder) EndSlice(mark timer.Mark) {
	r.End(mark, &r.record.SliceTime)
}

func (r *Recorder) BeginCABAC() timer.Mark {
	return r.Begin()
}

// EndCABAC adds the span to the CABAC time, and to the exclusion
// accumulator of the current phase (if any).
func (r *Recorder) EndCABAC(mark timer.Mark) {
	r.record.AddCABAC(r.CurrentPhase(), mark.Elapsed(r.Clock), r.CABACAttribution)
}

// BeginPhase opens a tracked phase; it becomes the current phase until EndPhase.
func (r *Recorder) BeginPhase(phase types.Phase) {
	internal.Assert(r.ctx, phase.IsTracked(), "not a tracked phase", phase)
	internal.Assert(r.ctx, r.phaseDepth < MaxPhaseDepth, "phases are nested too deep", phase)
	r.phases[r.phaseDepth] = openPhase{
		Phase: phase,
		Mark:  r.Begin(),
	}
	r.phaseDepth++
}

// EndPhase closes the current phase, which must be the given one.
func (r *Recorder) EndPhase(phase types.Phase) {
	internal.Assert(r.ctx, r.phaseDepth > 0, "no open phase to end", phase)
	open := r.phases[r.phaseDepth-1]
	internal.Assert(r.ctx, open.Phase == phase, "ending a phase which is not the current one", phase, open.Phase)
	delta := open.Mark.Elapsed(r.Clock)
	r.phaseDepth--
	r.record.AddPhase(phase, r.CurrentPhase(), delta, r.CABACAttribution)
}

func (r *Recorder) SetSliceType(t types.SliceType) {
	r.record.SliceType = t
}

func (r *Recorder) Increment(c types.Counter) {
	r.record.Counters[c]++
}

func (r *Recorder) Add(c types.Counter, n uint64) {
	r.record.Counters[c] += n
}

func (r *Recorder) Set(c types.Counter, v uint64) {
	r.record.Counters[c] = v
}
