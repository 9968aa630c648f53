// Package config defines how a statistics session is set up: which clock to
// use, whether CABAC time is attributed away from the structural phases, the
// unit of the reported durations, and where the CSV file goes.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xaionaro-go/avdecodestats/stats"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogDir       = "log"
	DefaultLogFileLabel = "debug"
)

type Config struct {
	// Enabled is the switch of the whole statistics extraction; if false,
	// no file is created and all the session calls are no-ops.
	Enabled bool `yaml:"enabled"`

	Timer              types.TimerBackend `yaml:"timer"`
	CPUBaseFrequencyHz uint64             `yaml:"cpu_base_frequency_hz"`
	CABACAttribution   bool               `yaml:"cabac_attribution"`
	Unit               types.Unit         `yaml:"unit"`

	InitialCapacity int    `yaml:"initial_capacity"`
	LogDir          string `yaml:"log_dir"`

	// InterruptExitCode is the exit status of the process when decoding was
	// interrupted by SIGINT/SIGTERM (and the collected statistics were flushed).
	InterruptExitCode int `yaml:"interrupt_exit_code"`
}

func Default() Config {
	return Config{
		Enabled:            true,
		Timer:              types.TimerBackendTSC,
		CPUBaseFrequencyHz: timer.DefaultCPUBaseFrequencyHz,
		CABACAttribution:   true,
		Unit:               types.UnitNanoseconds,
		InitialCapacity:    stats.DefaultInitialCapacity,
		LogDir:             DefaultLogDir,
	}
}

// LoadFile reads a YAML file on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to read '%s': %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse '%s': %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Timer <= types.TimerBackendUndefined || cfg.Timer >= types.EndOfTimerBackend {
		return fmt.Errorf("invalid timer backend: %s", cfg.Timer)
	}
	if cfg.Unit <= types.UnitUndefined || cfg.Unit >= types.EndOfUnit {
		return fmt.Errorf("invalid unit: %s", cfg.Unit)
	}
	if cfg.Timer == types.TimerBackendTSC && cfg.CPUBaseFrequencyHz == 0 {
		return fmt.Errorf("the CPU base frequency is required to convert TSC cycles into time")
	}
	if cfg.InitialCapacity < 0 {
		return fmt.Errorf("negative initial capacity: %d", cfg.InitialCapacity)
	}
	return nil
}

func (cfg Config) Converter(backend types.TimerBackend) timer.Converter {
	return timer.Converter{
		Backend:            backend,
		CPUBaseFrequencyHz: cfg.CPUBaseFrequencyHz,
	}
}
