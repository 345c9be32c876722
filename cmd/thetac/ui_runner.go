package main

import (
	"context"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"thetac/internal/buildpipeline"
	"thetac/internal/driver"
	"thetac/internal/ui"
)

type compileOutcome struct {
	result *driver.Result
	err    error
}

// runCompileWithUI runs Compile in the background and renders its progress
// events until the event channel is closed.
func runCompileWithUI(ctx context.Context, title string, opts driver.Options, entry, output string) (*driver.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		opts.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := driver.NewCompiler(opts).Compile(ctx, entry, output)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	first := entry
	if abs, err := filepath.Abs(entry); err == nil {
		first = filepath.ToSlash(abs)
	}
	model := ui.NewProgressModel(title, []string{first}, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI упал раньше времени: не блокируем компиляцию на полном канале
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		logger.Warn("progress UI failed", "error", uiErr)
	}
	return outcome.result, outcome.err
}
