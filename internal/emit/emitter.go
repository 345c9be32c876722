package emit

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"thetac/internal/ast"
	"thetac/internal/version"
)

// ErrNoEntry is returned when a Unit has no entry AST.
var ErrNoEntry = errors.New("emit: unit has no entry AST")

// Unit is a fully linked compilation handed over for emission.
type Unit struct {
	Entry    *ast.Source
	Order    []string               // capsule names, dependencies first
	Capsules map[string]*ast.Source // by capsule name
	Content  func(path string) []byte
}

// Emitter turns a linked Unit into an output file.
type Emitter interface {
	Emit(ctx context.Context, unit *Unit, outputFile string) error
}

// MsgpackEmitter writes an Artifact encoded with msgpack.
type MsgpackEmitter struct{}

// Emit encodes unit and replaces outputFile atomically.
func (MsgpackEmitter) Emit(ctx context.Context, unit *Unit, outputFile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	art, err := Build(unit)
	if err != nil {
		return err
	}
	return WriteArtifact(outputFile, art)
}

// Build converts a Unit to its Artifact form.
func Build(unit *Unit) (*Artifact, error) {
	if unit == nil || unit.Entry == nil {
		return nil, ErrNoEntry
	}
	art := &Artifact{
		Magic:    Magic,
		Schema:   SchemaVersion,
		Compiler: version.VersionString(),
		Entry:    unit.Entry.Path,
		Root: EntryRecord{
			Path:    unit.Entry.Path,
			Capsule: unit.Entry.CapsuleName(),
			Links:   linkNames(unit.Entry.Links),
			Defs:    defRecords(unit.Entry.Definitions()),
		},
	}
	for _, name := range unit.Order {
		src, ok := unit.Capsules[name]
		if !ok || src == nil {
			return nil, fmt.Errorf("emit: capsule %q has no AST", name)
		}
		rec := CapsuleRecord{
			Name:  name,
			Path:  src.Path,
			Links: linkNames(src.Links),
			Defs:  defRecords(src.Definitions()),
		}
		if unit.Content != nil {
			rec.Digest = sha256.Sum256(unit.Content(src.Path))
		}
		art.Capsules = append(art.Capsules, rec)
	}
	return art, nil
}

// WriteArtifact encodes art to path via a temp file and rename.
func WriteArtifact(path string, art *Artifact) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	f, err := os.CreateTemp(dir, ".thetac-*")
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(art); err != nil {
		return fmt.Errorf("emit: encode: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	// Атомарная замена
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	return nil
}

// ReadArtifact decodes an artifact and checks its header.
func ReadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var art Artifact
	if err := msgpack.NewDecoder(f).Decode(&art); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", path, err)
	}
	if art.Magic != Magic {
		return nil, fmt.Errorf("%s: not a theta artifact", path)
	}
	if art.Schema != SchemaVersion {
		return nil, fmt.Errorf("%s: schema %d, want %d", path, art.Schema, SchemaVersion)
	}
	return &art, nil
}
