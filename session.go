// Package avdecodestats collects per-frame performance statistics of a decode
// session and writes them into a CSV file when the session ends, including
// when it ends because of SIGINT/SIGTERM.
package avdecodestats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookincubator/go-belt"
	"github.com/xaionaro-go/avdecodestats/config"
	"github.com/xaionaro-go/avdecodestats/helpers/closuresignaler"
	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/avdecodestats/stats"
	"github.com/xaionaro-go/avdecodestats/statslog"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
	"github.com/xaionaro-go/xcontext"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

var (
	ErrAlreadyFinalized = errors.New("the session is already finalized")
)

// Session is the statistics of a single decode session: it owns the
// Recorder the decoder reports into, the buffer of the completed frames, and
// the CSV file they are written to by Finalize.
type Session struct {
	CommonsSessionStatistics

	Config  config.Config
	Path    string
	Backend types.TimerBackend

	locker             xsync.Mutex
	file               *os.File
	writer             *statslog.Writer
	buffer             *stats.Buffer
	recorder           *stats.Recorder
	finalized          *closuresignaler.ClosureSignaler
	interruptRequested atomic.Bool
}

// LogFilePath returns the path of the CSV file of the session with the given
// label (usually the input file path): "<dir>/<basename>.csv".
func LogFilePath(dir string, label string) string {
	name := config.DefaultLogFileLabel
	if label != "" {
		name = filepath.Base(label)
	}
	return filepath.Join(dir, name+".csv")
}

// NewSession opens the CSV file of the session and writes the header into it.
func NewSession(
	ctx context.Context,
	cfg config.Config,
	label string,
) (_ret *Session, _err error) {
	logger.Debugf(ctx, "NewSession(ctx, %q)", label)
	defer func() { logger.Debugf(ctx, "/NewSession(ctx, %q): %v", label, _err) }()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Debugf(ctx, "config: %s", spew.Sdump(cfg))

	clock, backend, err := timer.NewClock(ctx, cfg.Timer)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the clock: %w", err)
	}

	s := &Session{
		Config:    cfg,
		Backend:   backend,
		finalized: closuresignaler.New(),
	}
	s.recorder = stats.NewRecorder(belt.WithField(ctx, "module", "recorder"), clock, cfg.CABACAttribution)
	s.recorder.Reset(0)
	if !cfg.Enabled {
		logger.Debugf(ctx, "statistics are disabled")
		return s, nil
	}

	s.Path = LogFilePath(cfg.LogDir, label)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create directory '%s': %w", filepath.Dir(s.Path), err)
	}
	s.file, err = os.Create(s.Path)
	if err != nil {
		return nil, fmt.Errorf("could not open logfile '%s': %w", s.Path, err)
	}

	s.writer = statslog.NewWriter(
		&countingWriter{Writer: s.file, Counter: &s.BytesWritten},
		cfg.Unit,
		cfg.Converter(backend),
	)
	if err := s.writer.WriteHeader(); err != nil {
		s.file.Close()
		return nil, err
	}
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return nil, fmt.Errorf("unable to write the header into '%s': %w", s.Path, err)
	}

	s.buffer = stats.NewBuffer(cfg.InitialCapacity)
	s.BufferCapacity.Store(uint64(s.buffer.Cap()))
	return s, nil
}

// Recorder returns the ingestion API for the decoder.
func (s *Session) Recorder() *stats.Recorder {
	return s.recorder
}

// Push stores a copy of a completed frame record until Finalize.
func (s *Session) Push(
	ctx context.Context,
	rec stats.Record,
) error {
	if !s.Config.Enabled {
		return nil
	}
	return xsync.DoA2R1(xsync.WithNoLogging(ctx, true), &s.locker, s.pushLocked, ctx, rec)
}

func (s *Session) pushLocked(
	ctx context.Context,
	rec stats.Record,
) error {
	if s.finalized.IsClosed() {
		return ErrAlreadyFinalized
	}
	if err := s.buffer.Push(rec); err != nil {
		return fmt.Errorf("unable to push the record: %w", err)
	}
	s.FramesPushed.Inc()
	s.BufferCapacity.Store(uint64(s.buffer.Cap()))
	logger.Tracef(ctx, "pushed frame #%d", rec.FrameNumber)
	return nil
}

// Commit pushes the Recorder's working record and resets it for the next frame.
func (s *Session) Commit(ctx context.Context) error {
	rec := s.recorder.Snapshot()
	if err := s.Push(ctx, rec); err != nil {
		return err
	}
	s.recorder.Reset(rec.FrameNumber + 1)
	return nil
}

// Finalize writes all the buffered records into the CSV file and closes it.
//
// It does its job at most once; consecutive calls return ErrAlreadyFinalized.
// If a record has more time attributed away from a phase than measured, the
// rows before it are still written and the file is still closed.
func (s *Session) Finalize(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Finalize")
	defer func() { logger.Debugf(ctx, "/Finalize: %v", _err) }()

	if !s.finalized.Close(ctx) {
		return ErrAlreadyFinalized
	}
	if !s.Config.Enabled {
		return nil
	}

	// the session is finalized on interruption too, so ignore cancellations
	ctx = xcontext.DetachDone(ctx)
	return xsync.DoA1R1(ctx, &s.locker, s.finalizeLocked, ctx)
}

func (s *Session) finalizeLocked(ctx context.Context) error {
	var errs []error
	s.buffer.Range(func(idx int, rec *stats.Record) bool {
		net, err := rec.Net()
		if err != nil {
			errs = append(errs, fmt.Errorf("unable to attribute the nested time: %w", err))
			return false
		}
		if err := s.writer.WriteNet(net); err != nil {
			errs = append(errs, err)
			return false
		}
		s.RowsWritten.Inc()
		return true
	})
	if err := s.writer.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("unable to write into '%s': %w", s.Path, err))
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("could not close logfile '%s': %w", s.Path, err))
	}
	logger.Debugf(ctx, "wrote %d rows out of %d records into '%s'", s.RowsWritten.Load(), s.buffer.Len(), s.Path)
	s.buffer.Release()
	s.BufferCapacity.Store(0)
	return errors.Join(errs...)
}

// IsFinalized returns true if Finalize was already called.
func (s *Session) IsFinalized() bool {
	return s.finalized.IsClosed()
}
