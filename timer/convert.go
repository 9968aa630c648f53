package timer

import (
	"math"
	"math/bits"
	"time"

	"github.com/xaionaro-go/avdecodestats/types"
	"golang.org/x/exp/constraints"
)

// DefaultCPUBaseFrequencyHz is the frequency the TSC is assumed to tick with
// when nothing else is configured. It is not detected automatically.
const DefaultCPUBaseFrequencyHz = 1_600_000_000

// Converter converts Ticks measured by a specific backend into nanoseconds.
type Converter struct {
	Backend            types.TimerBackend
	CPUBaseFrequencyHz uint64
}

func (c Converter) Nanoseconds(t Ticks) int64 {
	switch c.Backend {
	case types.TimerBackendTSC:
		if t < 0 {
			return -int64(CyclesToNanoseconds(uint64(-t), c.CPUBaseFrequencyHz))
		}
		return int64(CyclesToNanoseconds(uint64(t), c.CPUBaseFrequencyHz))
	case types.TimerBackendNone:
		return 0
	default:
		return int64(t)
	}
}

// CyclesToNanoseconds converts a cycle count into nanoseconds for a CPU
// ticking with the given frequency; the result is truncated to a whole
// nanosecond. It saturates instead of overflowing.
func CyclesToNanoseconds(cycles uint64, hz uint64) uint64 {
	if hz == 0 {
		return 0
	}
	hi, lo := bits.Mul64(cycles, uint64(time.Second))
	if hi >= hz {
		return math.MaxUint64
	}
	ns, _ := bits.Div64(hi, lo, hz)
	return ns
}

func NanosecondsToMilliseconds[T constraints.Integer](ns T) float64 {
	return float64(ns) / float64(time.Millisecond)
}
