package avdecodestats

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/observability"
)

// RequestInterrupt asks the decode loop to stop and finalize the session. It
// only sets a flag, so it is safe to call from anywhere.
func (s *Session) RequestInterrupt(ctx context.Context) {
	if !s.interruptRequested.CompareAndSwap(false, true) {
		logger.Debugf(ctx, "an interruption is already requested")
		return
	}
	logger.Debugf(ctx, "an interruption is requested")
}

// IsInterruptRequested is polled by the decode loop after each frame.
func (s *Session) IsInterruptRequested() bool {
	return s.interruptRequested.Load()
}

// FinalizeIfInterrupted runs the ordinary Finalize if an interruption was
// requested; it returns true if it did.
func (s *Session) FinalizeIfInterrupted(ctx context.Context) (bool, error) {
	if !s.IsInterruptRequested() {
		return false, nil
	}
	logger.Infof(ctx, "interrupted, flushing %d collected frames", s.FramesPushed.Load())
	return true, s.Finalize(ctx)
}

// WatchSignals turns the first SIGINT or SIGTERM into an interruption request
// of the session; onSignal (if not nil) is called with that signal. After the
// first signal the default handling is restored, so a second one terminates
// the process even if the decode loop is stuck. The returned function stops
// watching.
func WatchSignals(
	ctx context.Context,
	s *Session,
	onSignal func(context.Context, os.Signal),
) (stop func()) {
	ctx, cancelFn := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	observability.Go(ctx, func(ctx context.Context) {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				signal.Stop(ch)
				logger.Infof(ctx, "received signal: %v", sig)
				s.RequestInterrupt(ctx)
				if onSignal != nil {
					onSignal(ctx, sig)
				}
				return
			}
		}
	})
	return func() {
		signal.Stop(ch)
		cancelFn()
	}
}
