package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"thetac/internal/project"
)

var capsulesCmd = &cobra.Command{
	Use:   "capsules [flags] [root]",
	Short: "List the capsules discovered under a root",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCapsules,
}

func init() {
	capsulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type capsuleEntry struct {
	Name       string   `json:"name"`
	Path       string   `json:"path"`
	Duplicates []string `json:"duplicates,omitempty"`
}

type capsulesPayload struct {
	Root     string         `json:"root"`
	Capsules []capsuleEntry `json:"capsules"`
	Skipped  []string       `json:"skipped,omitempty"`
}

func runCapsules(cmd *cobra.Command, args []string) error {
	format, err := readFormat(cmd)
	if err != nil {
		return err
	}
	root, ext, err := capsuleRoot(cmd, args)
	if err != nil {
		return err
	}

	idx, err := project.DiscoverCapsules(root, ext, project.DiscoverOptions{Logger: logger})
	if err != nil {
		return err
	}

	payload := capsulesPayload{Root: idx.Root(), Capsules: make([]capsuleEntry, 0, idx.Len())}
	for _, name := range idx.Names() {
		path, _ := idx.Resolve(name)
		payload.Capsules = append(payload.Capsules, capsuleEntry{Name: name, Path: path, Duplicates: idx.Duplicates(name)})
	}
	for _, sk := range idx.Skipped() {
		payload.Skipped = append(payload.Skipped, fmt.Sprintf("%s: %v", sk.Path, sk.Err))
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	for _, c := range payload.Capsules {
		rel := c.Path
		if r, err := filepath.Rel(payload.Root, c.Path); err == nil {
			rel = r
		}
		fmt.Fprintf(out, "%-32s %s\n", c.Name, rel)
		for _, d := range c.Duplicates {
			fmt.Fprintf(out, "%-32s   duplicate: %s\n", "", d)
		}
	}
	if !quietFlag(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d capsules under %s\n", len(payload.Capsules), payload.Root)
	}
	return nil
}

// capsuleRoot: аргумент, затем --root, затем theta.toml, затем текущий каталог
func capsuleRoot(cmd *cobra.Command, args []string) (string, string, error) {
	ext := project.DefaultExtension
	if len(args) > 0 {
		return args[0], ext, nil
	}
	rootFlag, err := cmd.Root().PersistentFlags().GetString("root")
	if err != nil {
		return "", "", fmt.Errorf("failed to get root flag: %w", err)
	}
	manifest, err := project.FindManifest(".")
	if err == nil {
		ext = manifest.Compiler.Extension
		if rootFlag == "" {
			return manifest.RootDir(), ext, nil
		}
	} else if !errors.Is(err, project.ErrNoManifest) {
		return "", "", err
	}
	if rootFlag != "" {
		return rootFlag, ext, nil
	}
	return ".", ext, nil
}
