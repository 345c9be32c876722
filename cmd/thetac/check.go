package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"thetac/internal/diagfmt"
	"thetac/internal/driver"
	"thetac/internal/project"
	"thetac/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [entry.th...]",
	Short: "Check entry files without emitting",
	Long: `Check compiles each entry file independently and in parallel, sharing
one capsule index, and reports diagnostics. Nothing is written.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
}

type entryDiagnostics struct {
	Entry string `json:"entry"`
	diagfmt.DiagnosticsOutput
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadBuildConfig(cmd, args[:min(len(args), 1)])
	if err != nil {
		return err
	}
	entries := args
	if len(entries) == 0 {
		entries = []string{cfg.entry}
	}

	results, err := driver.CompileMany(cmd.Context(), entries, driver.Options{
		Root:      cfg.root,
		Extension: cfg.extension,
		Tracer:    trace.FromContext(cmd.Context()),
		Logger:    logger,
	})
	if project.IsNotExist(err) {
		return fmt.Errorf("capsule root does not exist (set --root or [project].root in theta.toml): %w", err)
	}
	if err != nil {
		return err
	}

	// у каждого запуска свой FileSet, поэтому печатаем по очереди
	var docs []entryDiagnostics
	failed := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		if res.ErrorCount() > 0 {
			failed++
		}
		if format == formatJSON {
			opts, err := jsonOpts(cmd)
			if err != nil {
				return err
			}
			docs = append(docs, entryDiagnostics{
				Entry:             entries[i],
				DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(res.Diagnostics, res.FileSet, opts),
			})
			continue
		}
		if err := reportDiagnostics(cmd, res.Diagnostics, res.FileSet, format); err != nil {
			return err
		}
		if !quietFlag(cmd) && format == formatPretty && res.ErrorCount() == 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "ok %s (%d capsules)\n", entries[i], len(res.Order))
		}
	}
	if format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(docs); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d entries failed", driver.ErrCompilationFailed, failed, len(entries))
	}
	return nil
}
