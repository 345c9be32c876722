package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// Nop discards everything. Used when tracing is off and as a fallback
// for a context without a tracer.
var Nop Tracer = nopTracer{}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // immediate write
	ModeRing                          // circular buffer, dumped on exit
	ModeBoth
)

var modeNames = map[StorageMode]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Set implements pflag.Value.
func (m *StorageMode) Set(s string) error {
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Type implements pflag.Value.
func (m *StorageMode) Type() string { return "mode" }

// Config holds tracer configuration.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by OutputPath extension
	Output     io.Writer // wins over OutputPath
	OutputPath string    // "" or "-" for stderr
	RingSize   int       // default 4096
	Heartbeat  time.Duration
}

// Result bundles the tracer with the ring (if any) so the caller can dump it.
type Result struct {
	Tracer Tracer
	Ring   *RingTracer
}

// New creates a Tracer based on Config.
func New(cfg Config) (Result, error) {
	if cfg.Level == LevelOff {
		return Result{Tracer: Nop}, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}
	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".json") {
			format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream, 0:
		w, closer, err := openOutput(cfg)
		if err != nil {
			return Result{}, err
		}
		return Result{Tracer: NewStreamTracer(w, closer, cfg.Level, format)}, nil
	case ModeRing:
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return Result{Tracer: ring, Ring: ring}, nil
	case ModeBoth:
		w, closer, err := openOutput(cfg)
		if err != nil {
			return Result{}, err
		}
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return Result{Tracer: Fanout(NewStreamTracer(w, closer, cfg.Level, format), ring), Ring: ring}, nil
	}
	return Result{}, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
}

// openOutput returns the writer and, for files we opened ourselves, its closer.
func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}

type fanout []Tracer

// Fanout sends every event to all tracers. The level is the most verbose
// of theirs; each child still filters on its own.
func Fanout(tracers ...Tracer) Tracer {
	var out fanout
	for _, t := range tracers {
		if t != nil && t.Enabled() {
			out = append(out, t)
		}
	}
	switch len(out) {
	case 0:
		return Nop
	case 1:
		return out[0]
	}
	return out
}

func (f fanout) Emit(ev *Event) {
	for _, t := range f {
		// копия: дочерние трейсеры проставляют Seq
		cp := *ev
		t.Emit(&cp)
	}
}

func (f fanout) Flush() error {
	var errs []error
	for _, t := range f {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (f fanout) Close() error {
	var errs []error
	for _, t := range f {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (f fanout) Level() Level {
	lvl := LevelOff
	for _, t := range f {
		lvl = max(lvl, t.Level())
	}
	return lvl
}

func (f fanout) Enabled() bool { return f.Level() > LevelOff }
