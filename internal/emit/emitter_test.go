package emit

import (
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"thetac/internal/ast"
)

func sampleUnit() *Unit {
	math := &ast.Source{
		Path: "/src/math.th",
		Capsule: &ast.Capsule{Name: "Math", Defs: []*ast.Assignment{
			{
				Target: &ast.Identifier{Name: "pi", Type: &ast.TypeDeclaration{Name: "Number"}},
				Value:  &ast.Literal{LitKind: ast.LitNumber, Value: "3.14"},
			},
		}},
	}
	mathLink := &ast.Link{Capsule: "Math", Path: math.Path, Value: math, State: ast.LinkResolved}
	entry := &ast.Source{
		Path:  "/src/main.th",
		Links: []*ast.Link{mathLink},
		Body: []*ast.Assignment{
			{
				Target: &ast.Identifier{Name: "tau"},
				Value: &ast.Binary{
					Op:    "*",
					Left:  &ast.Literal{LitKind: ast.LitNumber, Value: "2"},
					Right: &ast.Reference{Parts: []string{"Math", "pi"}},
				},
			},
			{
				Target: &ast.Identifier{Name: "xs"},
				Value: &ast.List{Elems: []ast.Node{
					&ast.Literal{LitKind: ast.LitString, Value: "a"},
					&ast.Literal{LitKind: ast.LitBoolean, Value: "true"},
				}},
			},
		},
	}
	return &Unit{
		Entry:    entry,
		Order:    []string{"Math"},
		Capsules: map[string]*ast.Source{"Math": math},
		Content:  func(string) []byte { return []byte("capsule Math { pi<Number> = 3.14 }") },
	}
}

func TestEmitRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build", "main.thc")
	if err := (MsgpackEmitter{}).Emit(context.Background(), sampleUnit(), out); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	art, err := ReadArtifact(out)
	if err != nil {
		t.Fatalf("ReadArtifact: %v", err)
	}
	if art.Entry != "/src/main.th" || art.Root.Capsule != "" {
		t.Fatalf("root = %+v", art.Root)
	}
	if len(art.Root.Links) != 1 || art.Root.Links[0] != "Math" {
		t.Fatalf("links = %v", art.Root.Links)
	}
	tau := art.Root.Defs[0].Value
	if tau.Kind != "binary" || tau.Op != "*" || tau.Right == nil || tau.Right.Parts[1] != "pi" {
		t.Fatalf("tau = %+v", tau)
	}
	if xs := art.Root.Defs[1].Value; xs.Kind != "list" || len(xs.Elems) != 2 || xs.Elems[1].Lit != "boolean" {
		t.Fatalf("xs = %+v", xs)
	}

	rec, ok := art.Capsule("Math")
	if !ok {
		t.Fatal("Math record missing")
	}
	if rec.Defs[0].Type != "Number" || rec.Defs[0].Value.Value != "3.14" {
		t.Fatalf("Math defs = %+v", rec.Defs)
	}
	if rec.Digest != sha256.Sum256([]byte("capsule Math { pi<Number> = 3.14 }")) {
		t.Fatal("digest mismatch")
	}

	// временный файл не должен остаться рядом с артефактом
	entries, err := os.ReadDir(filepath.Dir(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestBuildRejectsMissingCapsule(t *testing.T) {
	unit := sampleUnit()
	unit.Order = append(unit.Order, "Ghost")
	if _, err := Build(unit); err == nil {
		t.Fatal("expected error for capsule without AST")
	}
	if _, err := Build(&Unit{}); err != ErrNoEntry {
		t.Fatalf("err = %v, want ErrNoEntry", err)
	}
}

func TestReadArtifactRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.thc")
	if err := os.WriteFile(path, []byte("not msgpack at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadArtifact(path); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmitHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "x.thc")
	if err := (MsgpackEmitter{}).Emit(ctx, sampleUnit(), out); err == nil {
		t.Fatal("expected context error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("artifact must not exist, stat err = %v", err)
	}
}
