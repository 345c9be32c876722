package driver

import (
	"fmt"
	"io"
	"os"

	"thetac/internal/ast"
	"thetac/internal/diag"
	"thetac/internal/lexer"
	"thetac/internal/parser"
	"thetac/internal/source"
	"thetac/internal/token"
)

// StdinPath makes Tokenize and Parse read standard input.
const StdinPath = "-"

// FileUnit is one file loaded on its own, outside any Compiler: no capsule
// index, no link cache.
type FileUnit struct {
	FileSet *source.FileSet
	File    *source.File
	Bag     *diag.Bag
}

type TokenizeResult struct {
	FileUnit
	Tokens []token.Token
}

type ParseResult struct {
	FileUnit
	Source *ast.Source
}

func loadUnit(path string) (FileUnit, error) {
	fs := source.NewFileSet()
	var id source.FileID
	if path == StdinPath {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return FileUnit{}, fmt.Errorf("read stdin: %w", err)
		}
		id = fs.AddVirtual("<stdin>", data)
	} else {
		var err error
		if id, err = fs.Load(path); err != nil {
			return FileUnit{}, err
		}
	}
	return FileUnit{FileSet: fs, File: fs.Get(id), Bag: diag.NewBag()}, nil
}

// Tokenize lexes one file to the end. Unlike the parser it does not stop
// at the first bad token, so every lexical error in the file is reported.
func Tokenize(path string) (*TokenizeResult, error) {
	u, err := loadUnit(path)
	if err != nil {
		return nil, err
	}
	lx := lexer.New(u.File, lexer.Options{Reporter: diag.BagReporter{Bag: u.Bag}})
	return &TokenizeResult{FileUnit: u, Tokens: lx.All()}, nil
}

// Parse parses one file without following its links; every Link in the
// result stays Pending.
func Parse(path string) (*ParseResult, error) {
	u, err := loadUnit(path)
	if err != nil {
		return nil, err
	}
	reporter := diag.BagReporter{Bag: u.Bag}
	lx := lexer.New(u.File, lexer.Options{Reporter: reporter})
	res := parser.ParseFile(u.FileSet, lx, parser.Options{Reporter: reporter})
	return &ParseResult{FileUnit: u, Source: res.Source}, nil
}
