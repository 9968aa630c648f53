package timer

import (
	"time"
)

var monotonicEpoch = time.Now()

// monotonicNowFallback uses the monotonic reading embedded into time.Time.
func monotonicNowFallback() int64 {
	return int64(time.Since(monotonicEpoch))
}
