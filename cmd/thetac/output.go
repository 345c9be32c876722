package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"thetac/internal/diag"
	"thetac/internal/diagfmt"
	"thetac/internal/observ"
	"thetac/internal/source"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatShort  outputFormat = "short" // одна строка на диагностику, для grep
)

func readFormat(cmd *cobra.Command) (outputFormat, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case formatPretty, formatJSON, formatShort:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (expected pretty|json|short)", value)
	}
}

// useColor: --color=on|off или автоопределение по терминалу
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}

func quietFlag(cmd *cobra.Command) bool {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && quiet
}

// reportDiagnostics prints diags in the requested format. Pretty output goes
// to stderr with a summary line, JSON goes to stdout as one document.
func reportDiagnostics(cmd *cobra.Command, diags []diag.Diagnostic, fs *source.FileSet, format outputFormat) error {
	opts, err := jsonOpts(cmd)
	if err != nil {
		return err
	}
	switch {
	case format == formatJSON:
		return diagfmt.JSON(cmd.OutOrStdout(), diags, fs, opts)
	case len(diags) == 0:
		return nil
	case format == formatShort:
		if opts.Max > 0 && len(diags) > opts.Max {
			diags = diags[:opts.Max]
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), diag.FormatShort(diags, fs, true))
		return err
	}
	colorOn, err := useColor(cmd, os.Stderr)
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	diagfmt.Pretty(out, diags, fs, diagfmt.PrettyOpts{
		Color:     colorOn,
		Context:   1,
		ShowNotes: true,
		Max:       opts.Max,
	})
	if !quietFlag(cmd) {
		fmt.Fprintln(out, diagfmt.Summary(diags))
	}
	return nil
}

func jsonOpts(cmd *cobra.Command) (diagfmt.JSONOpts, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return diagfmt.JSONOpts{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: true, Max: maxDiagnostics}, nil
}

func timingsFlag(cmd *cobra.Command) bool {
	enabled, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && enabled
}

func printTimings(cmd *cobra.Command, out io.Writer, report observ.Report) {
	if !timingsFlag(cmd) || out == nil {
		return
	}
	fmt.Fprintf(out, "discover %.1f ms\n", phaseMillis(report, "discover"))
	fmt.Fprintf(out, "build %.1f ms\n", phaseMillis(report, "build"))
	if ms := phaseMillis(report, "emit"); ms > 0 {
		fmt.Fprintf(out, "emit %.1f ms\n", ms)
	}
	fmt.Fprintf(out, "total %.1f ms\n", report.TotalMS)
	for _, item := range report.Items {
		fmt.Fprintf(out, "  %-24s %7.2f ms\n", item.Name, item.DurationMS)
	}
}

func phaseMillis(report observ.Report, name string) float64 {
	total := 0.0
	for _, p := range report.Phases {
		if p.Name == name {
			total += p.DurationMS
		}
	}
	return total
}
