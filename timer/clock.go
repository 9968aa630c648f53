package timer

import (
	"context"
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/cpuid/v2"
	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/avdecodestats/types"
)

// NewClock returns the clock of the requested backend. If the TSC is
// requested but is not available, it falls back to the monotonic clock;
// the returned backend is the one actually used.
func NewClock(
	ctx context.Context,
	backend types.TimerBackend,
) (Clock, types.TimerBackend, error) {
	switch backend {
	case types.TimerBackendNone:
		return NoClock{}, backend, nil
	case types.TimerBackendTSC:
		if !TSCAvailable() {
			logger.Warnf(ctx, "the time-stamp counter is not available on %s (%s), falling back to the monotonic clock", runtime.GOARCH, cpuid.CPU.BrandName)
			return MonotonicClock{}, types.TimerBackendMonotonic, nil
		}
		if hz := cpuid.CPU.Hz; hz > 0 {
			logger.Debugf(ctx, "CPU '%s', detected base frequency %s (not applied, the configured one is used)", cpuid.CPU.BrandName, humanize.SI(float64(hz), "Hz"))
		}
		return TSCClock{}, backend, nil
	case types.TimerBackendMonotonic:
		return MonotonicClock{}, backend, nil
	}
	return nil, types.TimerBackendUndefined, fmt.Errorf("unknown timer backend: %s", backend)
}

// NoClock is used when timing is disabled: every span is zero.
type NoClock struct{}

var _ Clock = NoClock{}

func (NoClock) Now() Ticks {
	return 0
}

// TSCClock reads the CPU time-stamp counter.
type TSCClock struct{}

var _ Clock = TSCClock{}

func (TSCClock) Now() Ticks {
	return Ticks(rdtsc())
}

// TSCAvailable reports if the time-stamp counter can be read on this machine.
// RDTSC is a part of the base amd64 instruction set.
func TSCAvailable() bool {
	return tscSupported
}

// MonotonicClock reads a monotonic clock in nanoseconds.
type MonotonicClock struct{}

var _ Clock = MonotonicClock{}

func (MonotonicClock) Now() Ticks {
	return Ticks(monotonicNow())
}
