package fuzztests

import (
	"context"
	"testing"
	"time"

	"thetac/internal/diag"
	"thetac/internal/driver"
	"thetac/internal/lexer"
	"thetac/internal/parser"
	"thetac/internal/source"
	"thetac/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.th", input))

		bag := diag.NewBag()
		reporter := diag.BagReporter{Bag: bag}
		lx := lexer.New(file, lexer.Options{Reporter: reporter})

		res := parser.ParseFile(fs, lx, parser.Options{Reporter: reporter})
		if res.Source == nil {
			t.Fatal("nil source")
		}
		// одна синтаксическая ошибка на файл
		syntax := 0
		for _, d := range bag.Items() {
			if d.Code >= 2000 && d.Code < 3000 {
				syntax++
			}
		}
		if syntax > 1 {
			t.Fatalf("%d syntax errors for one file", syntax)
		}
		if !res.Failed && !bag.HasErrors() {
			if err := testkit.CheckSpanInvariants(res.Source, file); err != nil {
				t.Fatalf("span invariants: %v", err)
			}
		}
	})
}

// FuzzCompileDirect runs the whole build over one virtual file. Links
// cannot resolve (there is no capsule root on disk), so every link must
// come back as an unresolved placeholder.
func FuzzCompileDirect(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		c := driver.NewCompiler(driver.Options{Root: t.TempDir()})
		src := c.CompileDirect(string(input))
		if src == nil {
			t.Fatal("nil source")
		}
		for _, l := range src.Links {
			if l.Resolved() {
				t.Fatalf("link %q resolved without a capsule root", l.Capsule)
			}
		}
		if len(src.Links) > 0 && !c.HasErrors() {
			t.Fatal("unresolved links must be reported")
		}
	})
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("capsule A { x = [[[[[[[[ }"))
	f.Add([]byte("x = ((((((((((((1"))
	f.Add([]byte("link A.B.C.\ncapsule"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.th", input))
			reporter := diag.BagReporter{Bag: diag.NewBag()}
			_ = parser.ParseFile(fs, lexer.New(file, lexer.Options{Reporter: reporter}), parser.Options{Reporter: reporter})
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
