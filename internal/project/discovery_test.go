package project

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindCapsuleName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"simple", "capsule Math { }", "Math", true},
		{"after links", "link A\nlink B\ncapsule App.Main {\n}", "App.Main", true},
		{"line comment", "// capsule Fake\ncapsule Real {}", "Real", true},
		{"block comment", "/- capsule Fake -/\ncapsule Real {}", "Real", true},
		{"string literal", "x = 'capsule Fake'\n", "", false},
		{"no capsule", "x = 1\ny = 2\n", "", false},
		{"keyword without name", "capsule {", "", false},
		{"nfc", "capsule Café {}", "Café", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FindCapsuleName([]byte(tc.input))
			if ok != tc.ok || got != tc.want {
				t.Fatalf("FindCapsuleName = (%q, %v), want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestDiscoverCapsules(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.th"), "link Math\nx = Math.pi\n")
	writeFile(t, filepath.Join(root, "lib", "math.th"), "capsule Math { pi = 3.14 }")
	writeFile(t, filepath.Join(root, "lib", "util.th"), "capsule Util.Strings { }")
	writeFile(t, filepath.Join(root, "lib", "notes.txt"), "capsule Ignored { }")
	writeFile(t, filepath.Join(root, ".hidden", "secret.th"), "capsule Secret { }")

	idx, err := DiscoverCapsules(root, "", DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCapsules: %v", err)
	}
	if want := []string{"Math", "Util.Strings"}; !slices.Equal(idx.Names(), want) {
		t.Fatalf("Names = %v, want %v", idx.Names(), want)
	}
	path, ok := idx.Resolve("Math")
	if !ok || filepath.Base(path) != "math.th" || !filepath.IsAbs(path) {
		t.Fatalf("Resolve(Math) = %q, %v", path, ok)
	}
	if name, ok := idx.CapsuleOf(path); !ok || name != "Math" {
		t.Fatalf("CapsuleOf = %q, %v", name, ok)
	}
	if _, ok := idx.CapsuleOf(filepath.Join(root, "main.th")); ok {
		t.Fatal("main.th declares no capsule")
	}
	if _, ok := idx.Resolve("Secret"); ok {
		t.Fatal("hidden directories must be skipped")
	}
}

func TestDiscoverDuplicatesFirstWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.th"), "capsule Dup { x = 1 }")
	writeFile(t, filepath.Join(root, "b.th"), "capsule Dup { x = 2 }")

	idx, err := DiscoverCapsules(root, ".th", DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCapsules: %v", err)
	}
	path, _ := idx.Resolve("Dup")
	if filepath.Base(path) != "a.th" {
		t.Fatalf("Resolve(Dup) = %q, want a.th", path)
	}
	dups := idx.Duplicates("Dup")
	if len(dups) != 1 || filepath.Base(dups[0]) != "b.th" {
		t.Fatalf("Duplicates = %v", dups)
	}
}

func TestDiscoverSkipsUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read any file")
	}
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.th"), "capsule Ok { }")
	locked := filepath.Join(root, "locked.th")
	writeFile(t, locked, "capsule Locked { }")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	idx, err := DiscoverCapsules(root, ".th", DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCapsules: %v", err)
	}
	if _, ok := idx.Resolve("Ok"); !ok {
		t.Fatal("readable capsule missing")
	}
	skipped := idx.Skipped()
	if len(skipped) != 1 || skipped[0].Path != locked {
		t.Fatalf("Skipped = %+v", skipped)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := DiscoverCapsules(filepath.Join(t.TempDir(), "nope"), ".th", DiscoverOptions{})
	if err == nil || !IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestIndexIsSnapshot(t *testing.T) {
	root := t.TempDir()
	mathPath := filepath.Join(root, "math.th")
	writeFile(t, mathPath, "capsule Math { }")

	idx, err := DiscoverCapsules(root, ".th", DiscoverOptions{})
	if err != nil {
		t.Fatalf("DiscoverCapsules: %v", err)
	}
	writeFile(t, filepath.Join(root, "late.th"), "capsule Late { }")
	if err := os.Remove(mathPath); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := idx.Resolve("Late"); ok {
		t.Fatal("index must not see files added after discovery")
	}
	if path, ok := idx.Resolve("Math"); !ok || path != mathPath {
		t.Fatalf("Resolve(Math) = %q, %v", path, ok)
	}
}
