package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thetac/internal/diagfmt"
	"thetac/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.th|-",
	Short: "Parse a Theta source file and output its AST",
	Long: `Parse analyzes a single Theta source file and prints its syntax tree.
Links are listed by name but not followed.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	parseCmd.Flags().Bool("spans", false, "include source positions")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	withSpans, err := cmd.Flags().GetBool("spans")
	if err != nil {
		return fmt.Errorf("failed to get spans flag: %w", err)
	}

	result, err := driver.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	if result.Bag.Len() > 0 {
		if err := reportDiagnostics(cmd, result.Bag.Sorted(), result.FileSet, formatPretty); err != nil {
			return err
		}
	}

	switch format {
	case formatJSON:
		err = diagfmt.FormatASTJSON(cmd.OutOrStdout(), result.Source, withSpans)
	default:
		err = diagfmt.FormatASTTree(cmd.OutOrStdout(), result.FileSet, result.Source, withSpans)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("%w: %d error(s)", driver.ErrCompilationFailed, result.Bag.ErrorCount())
	}
	return nil
}
