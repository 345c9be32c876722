package project

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"thetac/internal/lexer"
	"thetac/internal/source"
	"thetac/internal/token"
)

type DiscoverOptions struct {
	Logger *log.Logger // nil: молча
}

// SkippedFile is a candidate file discovery could not read.
type SkippedFile struct {
	Path string
	Err  error
}

// CapsuleIndex maps capsule names to source files. It is built once by
// DiscoverCapsules and never changes afterwards, so lookups during a
// compilation run see a stable snapshot of the tree.
type CapsuleIndex struct {
	root    string
	ext     string
	byName  map[string]string
	byPath  map[string]string
	dups    map[string][]string
	skipped []SkippedFile
}

// DiscoverCapsules walks root recursively and indexes every file with
// extension ext that declares a capsule. Hidden directories are skipped.
// Files that cannot be read are recorded in Skipped and do not stop the
// walk; only a missing or unreadable root is an error.
func DiscoverCapsules(root, ext string, opts DiscoverOptions) (*CapsuleIndex, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve capsule root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("capsule root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("capsule root %q is not a directory", absRoot)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	idx := &CapsuleIndex{
		root:   absRoot,
		ext:    ext,
		byName: make(map[string]string),
		byPath: make(map[string]string),
		dups:   make(map[string][]string),
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			idx.skip(logger, path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ext {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			idx.skip(logger, path, err)
			return nil
		}
		name, ok := FindCapsuleName(content)
		if !ok {
			logger.Debug("no capsule declaration", "path", path)
			return nil
		}
		idx.add(logger, name, path)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to scan %q: %w", absRoot, walkErr)
	}
	logger.Debug("capsule discovery done", "root", absRoot, "capsules", len(idx.byName), "skipped", len(idx.skipped))
	return idx, nil
}

func (idx *CapsuleIndex) skip(logger *log.Logger, path string, err error) {
	idx.skipped = append(idx.skipped, SkippedFile{Path: path, Err: err})
	logger.Warn("skipping unreadable file", "path", path, "error", err)
}

// add: WalkDir идёт в лексическом порядке, первый файл выигрывает
func (idx *CapsuleIndex) add(logger *log.Logger, name, path string) {
	if first, exists := idx.byName[name]; exists {
		idx.dups[name] = append(idx.dups[name], path)
		logger.Warn("duplicate capsule declaration", "capsule", name, "path", path, "first", first)
		return
	}
	idx.byName[name] = path
	idx.byPath[path] = name
}

// Root is the absolute discovery root.
func (idx *CapsuleIndex) Root() string { return idx.root }

// Extension is the source extension the index was built with.
func (idx *CapsuleIndex) Extension() string { return idx.ext }

// Len returns the number of distinct capsule names.
func (idx *CapsuleIndex) Len() int { return len(idx.byName) }

// Resolve returns the source path declaring capsule name.
func (idx *CapsuleIndex) Resolve(name string) (string, bool) {
	if idx == nil {
		return "", false
	}
	path, ok := idx.byName[norm.NFC.String(name)]
	return path, ok
}

// CapsuleOf is the reverse lookup: the capsule a file declares.
func (idx *CapsuleIndex) CapsuleOf(path string) (string, bool) {
	if idx == nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	name, ok := idx.byPath[abs]
	return name, ok
}

// Names returns every indexed capsule name, sorted.
func (idx *CapsuleIndex) Names() []string {
	names := make([]string, 0, len(idx.byName))
	for name := range idx.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Duplicates returns the files that declared name after the winning one.
func (idx *CapsuleIndex) Duplicates(name string) []string {
	return slices.Clone(idx.dups[name])
}

// Skipped lists files that matched the extension but could not be read.
func (idx *CapsuleIndex) Skipped() []SkippedFile {
	return slices.Clone(idx.skipped)
}

// FindCapsuleName extracts the name of the first `capsule` declaration in
// content. Comments and string literals are skipped by running the real
// lexer, so a `capsule` word inside them never counts.
func FindCapsuleName(content []byte) (string, bool) {
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual("<discovery>", content))
	lx := lexer.New(file, lexer.Options{})

	for {
		tok := lx.Next()
		switch tok.Kind {
		case token.EOF:
			return "", false
		case token.KwCapsule:
			name, ok := scanQualifiedName(lx)
			if !ok {
				return "", false
			}
			return norm.NFC.String(name), true
		}
	}
}

func scanQualifiedName(lx *lexer.Lexer) (string, bool) {
	first := lx.Next()
	if first.Kind != token.Ident {
		return "", false
	}
	var b strings.Builder
	b.WriteString(first.Text)
	for lx.Peek().Kind == token.Dot {
		lx.Next()
		part := lx.Next()
		if part.Kind != token.Ident {
			return "", false
		}
		b.WriteByte('.')
		b.WriteString(part.Text)
	}
	return b.String(), true
}

// IsNotExist reports whether err from DiscoverCapsules means the root is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
