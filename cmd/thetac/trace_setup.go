package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thetac/internal/trace"
)

// traceFlags are bound with pf.Var; the trace types parse themselves.
var traceFlags = struct {
	level  trace.Level
	mode   trace.StorageMode
	format trace.Format
}{mode: trace.ModeStream}

// setupTracing builds the tracer from the --trace* flags and puts it, plus
// a fresh Status for heartbeats, into the command context.
func setupTracing(cmd *cobra.Command) (func(), error) {
	pf := cmd.Root().PersistentFlags()

	output, err := pf.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	dumpTail, err := pf.GetInt("trace-dump")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-dump flag: %w", err)
	}
	interval, err := pf.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level := traceFlags.level
	// --trace без уровня включает фазы
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	res, err := trace.New(trace.Config{
		Level:      level,
		Mode:       traceFlags.mode,
		Format:     traceFlags.format,
		OutputPath: output,
		RingSize:   ringSize,
		Heartbeat:  interval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	status := trace.NewStatus()
	ctx := trace.WithStatus(trace.WithTracer(cmd.Context(), res.Tracer), status)
	cmd.SetContext(ctx)

	heartbeat := trace.StartHeartbeat(res.Tracer, status, interval)
	logger.Debug("tracing enabled", "level", level, "mode", traceFlags.mode, "output", output)

	return func() {
		heartbeat.Stop()
		// в ring-режиме событиям больше некуда деться
		if res.Ring != nil && traceFlags.mode == trace.ModeRing {
			format := traceFlags.format
			if format == trace.FormatAuto {
				format = trace.FormatText
			}
			if err := res.Ring.Dump(cmd.ErrOrStderr(), format, dumpTail); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := res.Tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}
