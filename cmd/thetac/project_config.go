package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"thetac/internal/project"
)

const noEntryMessage = "no entry file given and no theta.toml with [project].entry found\nplease specify the entry explicitly, e.g.:\n  thetac build path/to/main.th"

// buildConfig is the merge of CLI flags over theta.toml. Flags win.
type buildConfig struct {
	manifest   *project.Manifest
	root       string
	entry      string
	output     string
	extension  string
	emitTokens bool
	emitAST    bool
}

// loadBuildConfig resolves the entry, capsule root and output path.
// The manifest is searched from the entry's directory, or from the
// working directory when no entry is given.
func loadBuildConfig(cmd *cobra.Command, args []string) (*buildConfig, error) {
	cfg := &buildConfig{extension: project.DefaultExtension}

	startDir := "."
	if len(args) > 0 {
		cfg.entry = args[0]
		startDir = filepath.Dir(args[0])
	}
	manifest, err := project.FindManifest(startDir)
	switch {
	case err == nil:
		cfg.manifest = manifest
		cfg.root = manifest.RootDir()
		cfg.extension = manifest.Compiler.Extension
		cfg.emitTokens = manifest.Compiler.EmitTokens
		cfg.emitAST = manifest.Compiler.EmitAST
		cfg.output = manifest.OutputPath()
		if cfg.entry == "" {
			cfg.entry = manifest.EntryPath()
		}
		logger.Debug("using manifest", "path", manifest.Path, "root", cfg.root)
	case errors.Is(err, project.ErrNoManifest):
	default:
		return nil, err
	}
	if cfg.entry == "" {
		return nil, errors.New(noEntryMessage)
	}

	rootFlag, err := cmd.Root().PersistentFlags().GetString("root")
	if err != nil {
		return nil, fmt.Errorf("failed to get root flag: %w", err)
	}
	if rootFlag != "" {
		cfg.root = rootFlag
	}
	if cmd.Flags().Lookup("output") != nil {
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			cfg.output = out
		}
	}
	if cfg.output == "" {
		cfg.output = outputNameFromPath(cfg.entry)
	}
	for _, name := range []string{"emit-tokens", "emit-ast"} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			v, _ := cmd.Flags().GetBool(name)
			if name == "emit-tokens" {
				cfg.emitTokens = v
			} else {
				cfg.emitAST = v
			}
		}
	}
	if _, err := os.Stat(cfg.entry); err != nil {
		return nil, fmt.Errorf("entry %s: %w", cfg.entry, err)
	}
	return cfg, nil
}

// outputNameFromPath: main.th -> main.thc в текущем каталоге
func outputNameFromPath(entry string) string {
	base := filepath.Base(entry)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".thc"
}
