package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"thetac/internal/driver"
	"thetac/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "thetac",
	Short:             "Theta capsule compiler",
	Long:              `thetac parses Theta capsules, resolves their links and emits a compiled artifact`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
	PersistentPostRun: func(*cobra.Command, []string) { runCleanups() },
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(capsulesCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("root", "", "capsule search root (default: theta.toml root or entry directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("log-level", "warn", "log level (debug|info|warn|error)")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.Var(&traceFlags.level, "trace-level", "trace level (off|error|phase|detail|debug)")
	pf.Var(&traceFlags.mode, "trace-mode", "trace storage mode (stream|ring|both)")
	pf.Var(&traceFlags.format, "trace-format", "trace event format (auto|text|ndjson)")
	pf.Int("trace-dump", 0, "ring mode: dump only the last N events (0 = all)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for ring mode")
	pf.Duration("trace-heartbeat", 0, "heartbeat interval (0 disables)")
	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
}

// main executes the root command. Exit status is 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()
	if err != nil {
		if !errors.Is(err, driver.ErrCompilationFailed) {
			fmt.Fprintf(os.Stderr, "thetac: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
