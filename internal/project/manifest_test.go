package project

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
[project]
name = " demo "
root = "src"
entry = "src/main.th"
output = "build/main.thc"

[compiler]
extension = "th"
emit_ast = true
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Project.Name != "demo" {
		t.Fatalf("name = %q", m.Project.Name)
	}
	if m.Compiler.Extension != ".th" {
		t.Fatalf("extension = %q", m.Compiler.Extension)
	}
	if !m.Compiler.EmitAST || m.Compiler.EmitTokens {
		t.Fatalf("compiler = %+v", m.Compiler)
	}
	if got, want := m.RootDir(), filepath.Join(dir, "src"); got != want {
		t.Fatalf("RootDir = %q, want %q", got, want)
	}
	if got, want := m.EntryPath(), filepath.Join(dir, "src", "main.th"); got != want {
		t.Fatalf("EntryPath = %q, want %q", got, want)
	}
	if got, want := m.OutputPath(), filepath.Join(dir, "build", "main.thc"); got != want {
		t.Fatalf("OutputPath = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "[project]\nname = \"x\"\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Compiler.Extension != DefaultExtension {
		t.Fatalf("extension = %q", m.Compiler.Extension)
	}
	if m.RootDir() != dir || m.EntryPath() != "" || m.OutputPath() != "" {
		t.Fatalf("paths = %q %q %q", m.RootDir(), m.EntryPath(), m.OutputPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "a", ManifestName)
	writeFile(t, missing, "[compiler]\nextension = \".th\"\n")
	if _, err := LoadManifest(missing); !errors.Is(err, ErrProjectSectionMissing) {
		t.Fatalf("err = %v, want ErrProjectSectionMissing", err)
	}

	unknown := filepath.Join(dir, "b", ManifestName)
	writeFile(t, unknown, "[project]\nname = \"x\"\nbogus = 1\n")
	if _, err := LoadManifest(unknown); err == nil || !strings.Contains(err.Error(), "project.bogus") {
		t.Fatalf("err = %v, want unknown key error", err)
	}

	broken := filepath.Join(dir, "c", ManifestName)
	writeFile(t, broken, "[project\n")
	if _, err := LoadManifest(broken); err == nil {
		t.Fatal("expected TOML error")
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "[project]\nname = \"up\"\n")
	deep := filepath.Join(dir, "src", "lib")
	writeFile(t, filepath.Join(deep, "x.th"), "")

	m, err := FindManifest(deep)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if m.Project.Name != "up" || m.Dir != dir {
		t.Fatalf("manifest = %+v", m)
	}
}
