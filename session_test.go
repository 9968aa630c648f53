package avdecodestats

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/avdecodestats/config"
	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/avdecodestats/stats"
	"github.com/xaionaro-go/avdecodestats/statslog"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
)

func testCtx(t *testing.T) context.Context {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)
	t.Cleanup(func() { belt.Flush(ctx) })
	return ctx
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Timer = types.TimerBackendMonotonic
	cfg.LogDir = filepath.Join(t.TempDir(), "log")
	return cfg
}

func syntheticRecord(frameNumber uint64) stats.Record {
	var r stats.Record
	r.Reset(frameNumber)
	r.SliceType = types.SliceType(1 + frameNumber%3)
	r.Counters[types.CounterSliceSize] = 1000 + frameNumber
	r.FrameTime = timer.Ticks(10_000 + frameNumber)
	r.CABACTime = 300
	r.PhaseTime[types.PhaseInterCU] = 500
	r.CABACExcluded[types.PhaseInterCU] = 200
	r.PhaseTime[types.PhaseTransform] = 150
	r.NestedExcluded[types.PhaseInterCU] = 150
	r.CABACExcluded[types.PhaseTransform] = 100
	return r
}

func readLines(t *testing.T, path string) []string {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

func TestLogFilePath(t *testing.T) {
	require.Equal(t, filepath.Join("log", "debug.csv"), LogFilePath("log", ""))
	require.Equal(t, filepath.Join("log", "clip.hevc.csv"), LogFilePath("log", "/data/videos/clip.hevc"))
}

func TestSessionFinalize(t *testing.T) {
	ctx := testCtx(t)
	cfg := testConfig(t)

	s, err := NewSession(ctx, cfg, "/some/where/input.mp4")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.LogDir, "input.mp4.csv"), s.Path)

	// the header is on the disk right after the session is opened
	require.Equal(t, []string{strings.Join(statslog.Columns(), ",")}, readLines(t, s.Path))

	const n = 10
	for i := uint64(0); i < n; i++ {
		require.NoError(t, s.Push(ctx, syntheticRecord(i)))
	}
	require.NoError(t, s.Finalize(ctx))
	require.True(t, s.IsFinalized())

	lines := readLines(t, s.Path)
	require.Len(t, lines, n+1)
	require.Equal(t, strings.Join(statslog.Columns(), ","), lines[0])
	require.Equal(t, "0,I,1000,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,10000,0,300,0,150,0,50,0,0,0,200,0,100,0,0,0,0,0,150,0,0", lines[1])
	for i, line := range lines[1:] {
		require.Equal(t, fmt.Sprintf(
			"%d,%s,%d,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,%d,0,300,0,150,0,50,0,0,0,200,0,100,0,0,0,0,0,150,0,0",
			i, types.SliceType(1+i%3), 1000+i, 10_000+i,
		), line)
	}

	st := s.GetStats()
	require.Equal(t, uint64(n), st.FramesPushed)
	require.Equal(t, uint64(n), st.RowsWritten)
	fi, err := os.Stat(s.Path)
	require.NoError(t, err)
	require.Equal(t, uint64(fi.Size()), st.BytesWritten)

	require.ErrorIs(t, s.Finalize(ctx), ErrAlreadyFinalized)
	require.ErrorIs(t, s.Push(ctx, syntheticRecord(n)), ErrAlreadyFinalized)
}

func TestSessionMilliseconds(t *testing.T) {
	ctx := testCtx(t)
	cfg := testConfig(t)
	cfg.Unit = types.UnitMilliseconds

	s, err := NewSession(ctx, cfg, "ms")
	require.NoError(t, err)
	require.NoError(t, s.Push(ctx, syntheticRecord(0)))
	require.NoError(t, s.Finalize(ctx))

	lines := readLines(t, s.Path)
	require.Len(t, lines, 2)
	require.Equal(t,
		"0,I,1000,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,"+
			"0.010000,0.000000,0.000300,"+
			"0.000000,0.000150,0.000000,0.000050,0.000000,0.000000,"+
			"0.000000,0.000200,0.000000,0.000100,0.000000,0.000000,"+
			"0.000000,0.000000,0.000000,0.000150,0.000000,0.000000",
		lines[1],
	)
}

func TestSessionCyclesToMilliseconds(t *testing.T) {
	if !timer.TSCAvailable() {
		t.Skip("no time-stamp counter on this machine")
	}
	ctx := testCtx(t)
	cfg := testConfig(t)
	cfg.Timer = types.TimerBackendTSC
	cfg.CPUBaseFrequencyHz = 2_000_000_000
	cfg.Unit = types.UnitMilliseconds

	s, err := NewSession(ctx, cfg, "tsc")
	require.NoError(t, err)
	require.Equal(t, types.TimerBackendTSC, s.Backend)
	require.NoError(t, s.Push(ctx, syntheticRecord(0)))
	require.NoError(t, s.Push(ctx, syntheticRecord(1)))
	require.NoError(t, s.Finalize(ctx))

	// 2 cycles per nanosecond; 10001 cycles are truncated to 5000ns
	require.Equal(t, []string{
		strings.Join(statslog.Columns(), ","),
		"0,I,1000,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0," +
			"0.005000,0.000000,0.000150," +
			"0.000000,0.000075,0.000000,0.000025,0.000000,0.000000," +
			"0.000000,0.000100,0.000000,0.000050,0.000000,0.000000," +
			"0.000000,0.000000,0.000000,0.000075,0.000000,0.000000",
		"1,P,1001,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0," +
			"0.005000,0.000000,0.000150," +
			"0.000000,0.000075,0.000000,0.000025,0.000000,0.000000," +
			"0.000000,0.000100,0.000000,0.000050,0.000000,0.000000," +
			"0.000000,0.000000,0.000000,0.000075,0.000000,0.000000",
	}, readLines(t, s.Path))
}

func TestSessionCommit(t *testing.T) {
	ctx := testCtx(t)
	s, err := NewSession(ctx, testConfig(t), "commit")
	require.NoError(t, err)

	rec := s.Recorder()
	for i := 0; i < 5; i++ {
		frame := rec.BeginFrame()
		rec.SetSliceType(types.SliceTypeP)
		rec.BeginPhase(types.PhaseDeblock)
		rec.Increment(types.CounterDeblockLumaEdgeCount)
		rec.EndPhase(types.PhaseDeblock)
		rec.EndFrame(frame)
		require.NoError(t, s.Commit(ctx))
	}
	require.Equal(t, uint64(5), rec.Record().FrameNumber)
	require.NoError(t, s.Finalize(ctx))

	lines := readLines(t, s.Path)
	require.Len(t, lines, 6)
	for i, line := range lines[1:] {
		require.True(t, strings.HasPrefix(line, strconvU(uint64(i))+",P,"), line)
	}
}

func TestSessionFrameGap(t *testing.T) {
	ctx := testCtx(t)
	s, err := NewSession(ctx, testConfig(t), "gap")
	require.NoError(t, err)
	require.NoError(t, s.Push(ctx, syntheticRecord(0)))
	err = s.Push(ctx, syntheticRecord(2))
	var gapErr *stats.FrameGapError
	require.ErrorAs(t, err, &gapErr)
	require.NoError(t, s.Finalize(ctx))
	require.Len(t, readLines(t, s.Path), 2)
}

func TestSessionNegativeNetTime(t *testing.T) {
	ctx := testCtx(t)
	s, err := NewSession(ctx, testConfig(t), "negative")
	require.NoError(t, err)

	require.NoError(t, s.Push(ctx, syntheticRecord(0)))
	bad := syntheticRecord(1)
	bad.CABACExcluded[types.PhaseTransform] = 1000
	require.NoError(t, s.Push(ctx, bad))
	require.NoError(t, s.Push(ctx, syntheticRecord(2)))

	err = s.Finalize(ctx)
	var negErr *stats.NegativeNetTimeError
	require.ErrorAs(t, err, &negErr)
	require.Equal(t, uint64(1), negErr.FrameNumber)
	require.Equal(t, types.PhaseTransform, negErr.Phase)

	// the rows before the broken record are flushed
	require.Len(t, readLines(t, s.Path), 2)
}

func TestSessionDisabled(t *testing.T) {
	ctx := testCtx(t)
	cfg := testConfig(t)
	cfg.Enabled = false

	s, err := NewSession(ctx, cfg, "disabled")
	require.NoError(t, err)
	require.NoError(t, s.Push(ctx, syntheticRecord(0)))
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Finalize(ctx))
	require.ErrorIs(t, s.Finalize(ctx), ErrAlreadyFinalized)

	_, err = os.Stat(cfg.LogDir)
	require.True(t, os.IsNotExist(err))
}

func TestSessionOpenFailure(t *testing.T) {
	ctx := testCtx(t)
	cfg := testConfig(t)
	dir := t.TempDir()
	cfg.LogDir = filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(cfg.LogDir, nil, 0644))

	_, err := NewSession(ctx, cfg, "x")
	require.Error(t, err)
}

func TestInterruptEquivalence(t *testing.T) {
	ctx := testCtx(t)
	const k = 25

	direct, err := NewSession(ctx, testConfig(t), "input")
	require.NoError(t, err)
	interrupted, err := NewSession(ctx, testConfig(t), "input")
	require.NoError(t, err)

	for i := uint64(0); i < k; i++ {
		require.NoError(t, direct.Push(ctx, syntheticRecord(i)))
		require.NoError(t, interrupted.Push(ctx, syntheticRecord(i)))
	}

	done, err := interrupted.FinalizeIfInterrupted(ctx)
	require.NoError(t, err)
	require.False(t, done)

	interrupted.RequestInterrupt(ctx)
	interrupted.RequestInterrupt(ctx)
	require.True(t, interrupted.IsInterruptRequested())

	cancelledCtx, cancelFn := context.WithCancel(ctx)
	cancelFn()
	done, err = interrupted.FinalizeIfInterrupted(cancelledCtx)
	require.NoError(t, err)
	require.True(t, done)

	require.NoError(t, direct.Finalize(ctx))

	directContent, err := os.ReadFile(direct.Path)
	require.NoError(t, err)
	interruptedContent, err := os.ReadFile(interrupted.Path)
	require.NoError(t, err)
	require.Equal(t, string(directContent), string(interruptedContent))
	require.Len(t, readLines(t, interrupted.Path), k+1)
}

func TestWatchSignals(t *testing.T) {
	ctx := testCtx(t)
	s, err := NewSession(ctx, testConfig(t), "signal")
	require.NoError(t, err)

	received := make(chan os.Signal, 1)
	stop := WatchSignals(ctx, s, func(_ context.Context, sig os.Signal) {
		received <- sig
	})
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case sig := <-received:
		require.Equal(t, syscall.SIGTERM, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("the signal was not received")
	}
	require.True(t, s.IsInterruptRequested())
	require.False(t, s.IsFinalized())

	done, err := s.FinalizeIfInterrupted(ctx)
	require.NoError(t, err)
	require.True(t, done)
}

func TestWatchSignalsOnlyFirst(t *testing.T) {
	ctx := testCtx(t)
	s, err := NewSession(ctx, testConfig(t), "signal-twice")
	require.NoError(t, err)

	// keeps the test process alive once the default handling is restored
	guard := make(chan os.Signal, 2)
	signal.Notify(guard, syscall.SIGTERM)
	defer signal.Stop(guard)

	received := make(chan os.Signal, 2)
	stop := WatchSignals(ctx, s, func(_ context.Context, sig os.Signal) {
		received <- sig
	})
	defer stop()

	for i := 0; i < 2; i++ {
		require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
		select {
		case <-guard:
		case <-time.After(5 * time.Second):
			t.Fatal("the signal was not delivered")
		}
		if i == 0 {
			select {
			case <-received:
			case <-time.After(5 * time.Second):
				t.Fatal("the first signal was not handled")
			}
		}
	}

	select {
	case sig := <-received:
		t.Fatalf("the second signal was handled too: %v", sig)
	case <-time.After(100 * time.Millisecond):
	}
	require.True(t, s.IsInterruptRequested())
}
