// Package statslog serializes the per-frame statistics into CSV.
package statslog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xaionaro-go/avdecodestats/stats"
	"github.com/xaionaro-go/avdecodestats/timer"
	"github.com/xaionaro-go/avdecodestats/types"
)

// Columns returns the header of the CSV file; WriteNet writes the values in
// exactly this order.
func Columns() []string {
	columns := []string{"frame_number", "slice_type"}
	for c := types.Counter(0); c < types.EndOfCounter; c++ {
		columns = append(columns, c.String())
	}
	columns = append(columns, "frame_time", "slice_time", "cabac_time")
	for _, phase := range types.Phases() {
		columns = append(columns, phase.String()+"_time")
	}
	for _, phase := range types.Phases() {
		columns = append(columns, "cabac_"+phase.String()+"_time")
	}
	for _, phase := range includedPhases() {
		columns = append(columns, includedColumn(phase))
	}
	return columns
}

// includedPhases is the order of the "included" columns: transform and PCM
// first, then the rest of the phases.
func includedPhases() []types.Phase {
	return []types.Phase{
		types.PhaseTransform,
		types.PhasePCMCU,
		types.PhaseIntraCU,
		types.PhaseInterCU,
		types.PhaseDeblock,
		types.PhaseSAO,
	}
}

func includedColumn(phase types.Phase) string {
	if phase == types.PhasePCMCU {
		return "pcm_included_time"
	}
	return phase.String() + "_included_time"
}

type Writer struct {
	CSV       *csv.Writer
	Unit      types.Unit
	Converter timer.Converter

	row []string
}

func NewWriter(
	w io.Writer,
	unit types.Unit,
	converter timer.Converter,
) *Writer {
	return &Writer{
		CSV:       csv.NewWriter(w),
		Unit:      unit,
		Converter: converter,
		row:       make([]string, 0, len(Columns())),
	}
}

func (w *Writer) WriteHeader() error {
	if err := w.CSV.Write(Columns()); err != nil {
		return fmt.Errorf("unable to write the header: %w", err)
	}
	return nil
}

// WriteNet writes a row; durations are converted into the configured unit.
func (w *Writer) WriteNet(net stats.Net) error {
	row := w.row[:0]
	row = append(row,
		strconv.FormatUint(net.FrameNumber, 10),
		net.SliceType.String(),
	)
	for _, v := range net.Counters {
		row = append(row, strconv.FormatUint(v, 10))
	}
	row = append(row,
		w.FormatDuration(net.FrameTime),
		w.FormatDuration(net.SliceTime),
		w.FormatDuration(net.CABACTime),
	)
	for _, phase := range types.Phases() {
		row = append(row, w.FormatDuration(net.PhaseTime[phase]))
	}
	for _, phase := range types.Phases() {
		row = append(row, w.FormatDuration(net.CABACExcluded[phase]))
	}
	for _, phase := range includedPhases() {
		row = append(row, w.FormatDuration(net.NestedExcluded[phase]))
	}
	w.row = row
	if err := w.CSV.Write(row); err != nil {
		return fmt.Errorf("unable to write the row of frame #%d: %w", net.FrameNumber, err)
	}
	return nil
}

// FormatDuration renders nanoseconds as integers, and milliseconds as
// floats with a fixed amount of decimals.
func (w *Writer) FormatDuration(t timer.Ticks) string {
	ns := w.Converter.Nanoseconds(t)
	switch w.Unit {
	case types.UnitMilliseconds:
		return strconv.FormatFloat(timer.NanosecondsToMilliseconds(ns), 'f', 6, 64)
	default:
		return strconv.FormatInt(ns, 10)
	}
}

func (w *Writer) Flush() error {
	w.CSV.Flush()
	if err := w.CSV.Error(); err != nil {
		return fmt.Errorf("unable to flush: %w", err)
	}
	return nil
}
