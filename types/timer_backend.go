// timer_backend.go defines the TimerBackend enum: which clock is used to measure spans.

package types

import (
	"fmt"
	"strings"
)

type TimerBackend int

const (
	TimerBackendUndefined = TimerBackend(iota)

	// TimerBackendNone disables time measurements, all durations are zero.
	TimerBackendNone

	// TimerBackendTSC reads the CPU time-stamp counter; durations are in cycles
	// until they are converted using the configured CPU base frequency.
	TimerBackendTSC

	// TimerBackendMonotonic reads a monotonic wall clock; durations are in nanoseconds.
	TimerBackendMonotonic

	EndOfTimerBackend
)

func (b TimerBackend) String() string {
	switch b {
	case TimerBackendUndefined:
		return "<undefined>"
	case TimerBackendNone:
		return "none"
	case TimerBackendTSC:
		return "tsc"
	case TimerBackendMonotonic:
		return "monotonic"
	}
	return fmt.Sprintf("TimerBackend(%d)", int(b))
}

func TimerBackendFromString(s string) (TimerBackend, error) {
	s = strings.Trim(strings.ToLower(s), " \"\n\r\t")
	for b := TimerBackendNone; b < EndOfTimerBackend; b++ {
		if b.String() == s {
			return b, nil
		}
	}
	return TimerBackendUndefined, fmt.Errorf("unknown timer backend: '%s'", s)
}

// Set implements pflag.Value.
func (b *TimerBackend) Set(s string) error {
	v, err := TimerBackendFromString(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Type implements pflag.Value.
func (b *TimerBackend) Type() string {
	return "timer-backend"
}

func (b *TimerBackend) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}

func (b TimerBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
