package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"thetac/internal/driver"
	"thetac/internal/project"
	"thetac/internal/trace"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [entry.th]",
	Short: "Compile an entry file and the capsules it links",
	Long: `Build parses the entry file, resolves every linked capsule under the
capsule root and, when no errors were found, writes a compiled artifact.
Without an argument the entry is taken from theta.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "artifact path (default: <entry>.thc)")
	buildCmd.Flags().Bool("emit-tokens", false, "print the tokens of every parsed file")
	buildCmd.Flags().Bool("emit-ast", false, "print the AST of every parsed file")
	buildCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig(cmd, args)
	if err != nil {
		return err
	}
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	// токены, AST и JSON пишутся в stdout и перемешались бы с UI
	withUI := progressAllowed(mode, os.Getenv) && format == formatPretty && !cfg.emitTokens && !cfg.emitAST && !quietFlag(cmd)

	opts := driver.Options{
		Root:        cfg.root,
		Extension:   cfg.extension,
		EmitTokens:  cfg.emitTokens,
		EmitAST:     cfg.emitAST,
		TokenWriter: cmd.OutOrStdout(),
		ASTWriter:   cmd.OutOrStdout(),
		Tracer:      trace.FromContext(cmd.Context()),
		Logger:      logger,
	}

	var res *driver.Result
	if withUI {
		res, err = runCompileWithUI(cmd.Context(), "build "+cfg.entry, opts, cfg.entry, cfg.output)
	} else {
		res, err = driver.NewCompiler(opts).Compile(cmd.Context(), cfg.entry, cfg.output)
	}
	if res != nil {
		diags := res.Diagnostics
		// в JSON тайминги едут вместе с диагностиками
		if format == formatJSON && timingsFlag(cmd) {
			diags = append(diags, driver.TimingDiagnostic(cfg.entry, res.Timings))
		}
		if reportErr := reportDiagnostics(cmd, diags, res.FileSet, format); reportErr != nil {
			return reportErr
		}
		if format != formatJSON {
			printTimings(cmd, cmd.ErrOrStderr(), res.Timings)
		}
	}
	if project.IsNotExist(err) {
		return fmt.Errorf("capsule root does not exist (set --root or [project].root in theta.toml): %w", err)
	}
	if err != nil {
		if errors.Is(err, driver.ErrCompilationFailed) {
			logger.Debug("build failed", "entry", cfg.entry, "error", err)
		}
		return err
	}
	if !quietFlag(cmd) && format == formatPretty {
		fmt.Fprintf(cmd.ErrOrStderr(), "built %s (%d capsules)\n", res.Output, len(res.Order))
	}
	return nil
}
