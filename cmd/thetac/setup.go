package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: "thetac"})
	cleanups []func()
)

// setupRun prepares logging, tracing and profiling for any subcommand.
func setupRun(cmd *cobra.Command, _ []string) error {
	if err := setupLogger(cmd); err != nil {
		return err
	}
	colorOn, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}
	color.NoColor = !colorOn
	cleanupProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, cleanupProf)
	cleanupTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, cleanupTrace)
	return nil
}

// runCleanups runs in reverse order; a second call is a no-op.
func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func setupLogger(cmd *cobra.Command) error {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet"); quiet && level < log.ErrorLevel {
		level = log.ErrorLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(cmd.ErrOrStderr())
	return nil
}
