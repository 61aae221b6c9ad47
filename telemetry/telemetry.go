// Package telemetry writes a CSV trace of a run: per-tick pass timings
// and the narrative events the demo AI loop emits, grounded on the
// teacher's telemetry.OutputManager (CSV-per-concern, header written
// once then appended).
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/gridsim/pipeline"
)

// TickRecord is one pass's timing within one tick, written to
// ticks.csv.
type TickRecord struct {
	Tick       int    `csv:"tick"`
	Pass       string `csv:"pass"`
	DurationUS int64  `csv:"duration_us"`
}

// EventRecord is one platform event, written to events.csv.
type EventRecord struct {
	Tick     int    `csv:"tick"`
	PlayerID string `csv:"player_id"`
	Name     string `csv:"name"`
}

// Sink collects tick timings and platform events during a run and
// flushes them to CSV files under dir. A nil *Sink (from NewSink(""))
// is a no-op on every method, so callers never need a feature flag to
// disable tracing.
type Sink struct {
	dir string

	ticksFile  *os.File
	eventsFile *os.File

	ticksHeaderWritten  bool
	eventsHeaderWritten bool
}

// NewSink creates a Sink writing under dir. Returns a nil *Sink (not an
// error) when dir is empty, so callers can make RecordTick/RecordEvent
// calls unconditionally.
func NewSink(dir string) (*Sink, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("telemetry: creating output directory: %w", err)
	}

	s := &Sink{dir: dir}

	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating ticks.csv: %w", err)
	}
	s.ticksFile = f

	f, err = os.Create(filepath.Join(dir, "events.csv"))
	if err != nil {
		s.ticksFile.Close()
		return nil, fmt.Errorf("telemetry: creating events.csv: %w", err)
	}
	s.eventsFile = f

	return s, nil
}

// RecordTick appends one tick's pass timings to ticks.csv.
func (s *Sink) RecordTick(tick int, timings []pipeline.Timing) error {
	if s == nil {
		return nil
	}
	records := make([]TickRecord, len(timings))
	for i, t := range timings {
		records[i] = TickRecord{Tick: tick, Pass: t.Name, DurationUS: t.Duration.Microseconds()}
	}
	if !s.ticksHeaderWritten {
		if err := gocsv.Marshal(records, s.ticksFile); err != nil {
			return fmt.Errorf("telemetry: writing ticks: %w", err)
		}
		s.ticksHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.ticksFile); err != nil {
		return fmt.Errorf("telemetry: writing ticks: %w", err)
	}
	return nil
}

// RecordEvent appends one narrative event to events.csv.
func (s *Sink) RecordEvent(tick int, playerID, name string) error {
	if s == nil {
		return nil
	}
	records := []EventRecord{{Tick: tick, PlayerID: playerID, Name: name}}
	if !s.eventsHeaderWritten {
		if err := gocsv.Marshal(records, s.eventsFile); err != nil {
			return fmt.Errorf("telemetry: writing event: %w", err)
		}
		s.eventsHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, s.eventsFile); err != nil {
		return fmt.Errorf("telemetry: writing event: %w", err)
	}
	return nil
}

// Dir returns the sink's output directory, or "" for a nil Sink.
func (s *Sink) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Close flushes and closes every open file.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.ticksFile != nil {
		if err := s.ticksFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.eventsFile != nil {
		if err := s.eventsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
