//go:build linux

package timer

import (
	"golang.org/x/sys/unix"
)

func monotonicNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC_RAW, &ts); err != nil {
		return monotonicNowFallback()
	}
	return ts.Nano()
}
