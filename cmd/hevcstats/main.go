package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/avdecodestats"
	"github.com/xaionaro-go/avdecodestats/config"
	"github.com/xaionaro-go/avdecodestats/decoder"
	"github.com/xaionaro-go/avdecodestats/logger"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/typing"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [options] <input>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	cfg := config.Default()
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to a YAML config file; flags override its values")
	timerBackend := cfg.Timer
	pflag.Var(&timerBackend, "timer", "timer backend: tsc, monotonic or none")
	unit := cfg.Unit
	pflag.Var(&unit, "unit", "unit of the reported durations: ns or ms")
	cabacAttribution := pflag.Bool("cabac-attribution", cfg.CABACAttribution, "attribute CABAC time away from the phase it was measured within")
	cpuFreq := pflag.String("cpu-base-frequency", "1.6GHz", "the frequency of the time-stamp counter, used to convert cycles into time")
	logDir := pflag.String("log-dir", cfg.LogDir, "the directory to write the CSV file into")
	initialCapacity := pflag.Int("initial-capacity", cfg.InitialCapacity, "the amount of frame records to preallocate")
	disable := pflag.Bool("disable", false, "do not collect any statistics")
	streamIndex := pflag.Int("stream-index", -1, "the index of the stream to decode (default: the first video stream)")
	decoderName := pflag.String("decoder", "", "force a specific decoder")
	pflag.Parse()
	if len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(1)
	}
	inputPath := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.SetDefault(func() logger.Logger {
		return l
	})
	defer belt.Flush(ctx)
	decoder.BridgeAstiav(l)

	if *configPath != "" {
		fileCfg, err := config.LoadFile(*configPath)
		if err != nil {
			logger.Fatal(ctx, err)
		}
		cfg = fileCfg
	}
	pflag.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "timer":
			cfg.Timer = timerBackend
		case "unit":
			cfg.Unit = unit
		case "cabac-attribution":
			cfg.CABACAttribution = *cabacAttribution
		case "cpu-base-frequency":
			hz, _, err := humanize.ParseSI(*cpuFreq)
			if err != nil || hz <= 0 {
				logger.Fatalf(ctx, "invalid CPU base frequency '%s': %v", *cpuFreq, err)
			}
			cfg.CPUBaseFrequencyHz = uint64(hz)
		case "log-dir":
			cfg.LogDir = *logDir
		case "initial-capacity":
			cfg.InitialCapacity = *initialCapacity
		case "disable":
			cfg.Enabled = !*disable
		}
	})

	session, err := avdecodestats.NewSession(ctx, cfg, inputPath)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	stopWatching := avdecodestats.WatchSignals(ctx, session, nil)
	defer stopWatching()

	decCfg := decoder.Config{DecoderName: *decoderName}
	if *streamIndex >= 0 {
		decCfg.StreamIndex = typing.Opt(*streamIndex)
	}
	dec, err := decoder.Open(ctx, inputPath, decCfg)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer dec.Close(ctx)

	clock, backend, err := timer.NewClock(ctx, session.Backend)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	converter := cfg.Converter(backend)
	mark := timer.Begin(clock)
	result, err := dec.Run(ctx, session)
	elapsed := time.Duration(converter.Nanoseconds(mark.Elapsed(clock)))
	if err != nil {
		logger.Fatal(ctx, err)
	}
	fmt.Fprintf(os.Stderr, "\nDecoding took %f seconds (%s frames)\n", elapsed.Seconds(), humanize.Comma(int64(result.Frames)))

	if interrupted, err := session.FinalizeIfInterrupted(ctx); interrupted {
		if err != nil {
			logger.Fatal(ctx, err)
		}
		printStats(ctx, session)
		belt.Flush(ctx)
		os.Exit(cfg.InterruptExitCode)
	}
	if err := session.Finalize(ctx); err != nil {
		logger.Fatal(ctx, err)
	}
	printStats(ctx, session)
}

func printStats(ctx context.Context, session *avdecodestats.Session) {
	statsJSON, err := json.Marshal(session.GetStats())
	if err != nil {
		logger.Fatal(ctx, err)
	}
	fmt.Printf("%s: %s\n", session.Path, statsJSON)
}
