package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thetac/internal/diagfmt"
	"thetac/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.th|-",
	Short: "Tokenize a Theta source file",
	Long:  `Tokenize breaks down a Theta source file into its constituent tokens`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}

	result, err := driver.Tokenize(args[0])
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if result.Bag.Len() > 0 {
		if err := reportDiagnostics(cmd, result.Bag.Sorted(), result.FileSet, formatPretty); err != nil {
			return err
		}
	}

	switch format {
	case formatJSON:
		err = diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens)
	default:
		err = diagfmt.FormatTokens(cmd.OutOrStdout(), result.FileSet, result.Tokens)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return fmt.Errorf("%w: %d error(s)", driver.ErrCompilationFailed, result.Bag.ErrorCount())
	}
	return nil
}
