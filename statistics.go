package avdecodestats

import (
	"io"

	"github.com/xaionaro-go/avdecodestats/types"
	"go.uber.org/atomic"
)

type SessionStatistics = types.SessionStatistics

type CommonsSessionStatistics struct {
	FramesPushed   atomic.Uint64
	RowsWritten    atomic.Uint64
	BytesWritten   atomic.Uint64
	BufferCapacity atomic.Uint64
}

func (stats *CommonsSessionStatistics) Convert() SessionStatistics {
	return SessionStatistics{
		FramesPushed:   stats.FramesPushed.Load(),
		RowsWritten:    stats.RowsWritten.Load(),
		BytesWritten:   stats.BytesWritten.Load(),
		BufferCapacity: stats.BufferCapacity.Load(),
	}
}

func (s *Session) GetStats() *SessionStatistics {
	return ptr(s.CommonsSessionStatistics.Convert())
}

type countingWriter struct {
	io.Writer
	Counter *atomic.Uint64
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.Writer.Write(b)
	w.Counter.Add(uint64(n))
	return n, err
}

func ptr[T any](v T) *T {
	return &v
}
