//go:build !linux

package timer

func monotonicNow() int64 {
	return monotonicNowFallback()
}
