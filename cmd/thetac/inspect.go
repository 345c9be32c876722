package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thetac/internal/emit"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] artifact.thc",
	Short: "Print the contents of a compiled artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	inspectCmd.Flags().Bool("defs", false, "list definitions of every capsule")
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	showDefs, err := cmd.Flags().GetBool("defs")
	if err != nil {
		return fmt.Errorf("failed to get defs flag: %w", err)
	}

	art, err := emit.ReadArtifact(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(art)
	}

	fmt.Fprintf(out, "artifact  %s (schema %d)\n", args[0], art.Schema)
	fmt.Fprintf(out, "compiler  %s\n", art.Compiler)
	fmt.Fprintf(out, "entry     %s", art.Entry)
	if art.Root.Capsule != "" {
		fmt.Fprintf(out, " (capsule %s)", art.Root.Capsule)
	}
	fmt.Fprintln(out)
	if len(art.Root.Links) > 0 {
		fmt.Fprintf(out, "links     %s\n", strings.Join(art.Root.Links, ", "))
	}
	fmt.Fprintf(out, "capsules  %d\n", len(art.Capsules))
	for _, c := range art.Capsules {
		fmt.Fprintf(out, "  %-28s %x  %s\n", c.Name, c.Digest[:6], c.Path)
		if len(c.Links) > 0 {
			fmt.Fprintf(out, "  %-28s links: %s\n", "", strings.Join(c.Links, ", "))
		}
		if showDefs {
			for _, d := range c.Defs {
				fmt.Fprintf(out, "  %-28s %s\n", "", defLine(d))
			}
		}
	}
	if showDefs && len(art.Root.Defs) > 0 && art.Root.Capsule == "" {
		fmt.Fprintln(out, "entry definitions:")
		for _, d := range art.Root.Defs {
			fmt.Fprintf(out, "  %s\n", defLine(d))
		}
	}
	return nil
}

func defLine(d emit.DefRecord) string {
	if d.Type != "" {
		return fmt.Sprintf("%s<%s> = %s", d.Name, d.Type, d.Value.Kind)
	}
	return fmt.Sprintf("%s = %s", d.Name, d.Value.Kind)
}
