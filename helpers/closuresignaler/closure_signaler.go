// Package closuresignaler provides a one-shot signal: it can be closed only
// once, and exactly one of the closers learns that it was the one who closed it.
package closuresignaler

import (
	"context"

	"github.com/xaionaro-go/avdecodestats/logger"
	"go.uber.org/atomic"
)

type ClosureSignaler struct {
	closed atomic.Bool
	c      chan struct{}
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close closes the signal and returns true if it was this call which did it,
// so the caller may run the work which must be done at most once.
func (c *ClosureSignaler) Close(ctx context.Context) bool {
	if !c.closed.CompareAndSwap(false, true) {
		logger.Debugf(ctx, "Close: already closed")
		return false
	}
	logger.Debugf(ctx, "Close")
	close(c.c)
	return true
}

func (c *ClosureSignaler) IsClosed() bool {
	return c.closed.Load()
}
