package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file looked up from the working directory.
const ManifestName = "theta.toml"

// DefaultExtension is the capsule source file extension.
const DefaultExtension = ".th"

var (
	// ErrNoManifest indicates that no theta.toml was found up the directory tree.
	ErrNoManifest = errors.New("theta.toml not found")
	// ErrProjectSectionMissing indicates that [project] is missing in the manifest.
	ErrProjectSectionMissing = errors.New("missing [project]")
)

// Manifest is the decoded theta.toml. Relative paths are resolved
// against Dir by the accessor methods.
type Manifest struct {
	Path string // абсолютный путь к theta.toml
	Dir  string

	Project  ProjectSection
	Compiler CompilerSection
}

type ProjectSection struct {
	Name   string `toml:"name"`
	Root   string `toml:"root"`
	Entry  string `toml:"entry"`
	Output string `toml:"output"`
}

type CompilerSection struct {
	Extension  string `toml:"extension"`
	EmitTokens bool   `toml:"emit_tokens"`
	EmitAST    bool   `toml:"emit_ast"`
}

type manifestFile struct {
	Project  ProjectSection  `toml:"project"`
	Compiler CompilerSection `toml:"compiler"`
}

// FindThetaToml walks up from startDir to locate theta.toml.
func FindThetaToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest parses a theta.toml.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	var cfg manifestFile
	meta, err := toml.DecodeFile(abs, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: %w", abs, ErrProjectSectionMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", abs, strings.Join(keys, ", "))
	}

	m := &Manifest{
		Path:     abs,
		Dir:      filepath.Dir(abs),
		Project:  cfg.Project,
		Compiler: cfg.Compiler,
	}
	m.Project.Name = strings.TrimSpace(m.Project.Name)
	if ext := strings.TrimSpace(m.Compiler.Extension); ext == "" {
		m.Compiler.Extension = DefaultExtension
	} else if !strings.HasPrefix(ext, ".") {
		m.Compiler.Extension = "." + ext
	} else {
		m.Compiler.Extension = ext
	}
	return m, nil
}

// FindManifest combines FindThetaToml and LoadManifest; ErrNoManifest when absent.
func FindManifest(startDir string) (*Manifest, error) {
	path, ok, err := FindThetaToml(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoManifest
	}
	return LoadManifest(path)
}

// RootDir is the capsule discovery root. Defaults to the manifest directory.
func (m *Manifest) RootDir() string {
	return m.resolve(m.Project.Root)
}

// EntryPath is the default entry file, "" when not configured.
func (m *Manifest) EntryPath() string {
	if strings.TrimSpace(m.Project.Entry) == "" {
		return ""
	}
	return m.resolve(m.Project.Entry)
}

// OutputPath is the default artifact path, "" when not configured.
func (m *Manifest) OutputPath() string {
	if strings.TrimSpace(m.Project.Output) == "" {
		return ""
	}
	return m.resolve(m.Project.Output)
}

func (m *Manifest) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return m.Dir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Dir, filepath.FromSlash(p))
}
