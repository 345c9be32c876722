package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"thetac/internal/diag"
	"thetac/internal/lexer"
	"thetac/internal/parser"
	"thetac/internal/source"
)

func fixture(t *testing.T, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("main.th", []byte(content))
}

func TestPrettyUnderlinesSpan(t *testing.T) {
	fs, id := fixture(t, "link Ghost\ncapsule A {}\n")
	d := diag.NewError(diag.ProjUnresolvedCapsule, source.Span{File: id, Start: 5, End: 10}, "capsule 'Ghost' not found").
		WithCapsule("A")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{ShowNotes: true})
	out := buf.String()

	if !strings.Contains(out, "main.th:1:6: ERROR "+diag.ProjUnresolvedCapsule.ID()+": capsule 'Ghost' not found [A]") {
		t.Fatalf("bad header:\n%s", out)
	}
	if !strings.Contains(out, "1 | link Ghost\n") {
		t.Fatalf("missing source line:\n%s", out)
	}
	if !strings.Contains(out, "  |      ^~~~~\n") {
		t.Fatalf("bad underline:\n%s", out)
	}
}

func TestPrettyWideRunes(t *testing.T) {
	// "名前" занимает 4 колонки терминала, но 6 байт
	fs, id := fixture(t, "x = '名前' +\n")
	d := diag.NewError(diag.SynExpectExpression, source.Span{File: id, Start: 13, End: 14}, "expected expression")

	var buf bytes.Buffer
	Pretty(&buf, []diag.Diagnostic{d}, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output: %q", buf.String())
	}
	caret := lines[2]
	if idx := strings.Index(caret, "^"); idx != strings.Index(caret, "|")+2+11 {
		t.Fatalf("caret at wrong column: %q", caret)
	}
}

func TestPrettyWithoutLocationAndMax(t *testing.T) {
	fs, _ := fixture(t, "")
	diags := []diag.Diagnostic{
		diag.NewError(diag.ProjUnfinishedCapsule, source.Span{}, "capsule 'A' was never finished"),
		diag.NewError(diag.ProjUnfinishedCapsule, source.Span{}, "capsule 'B' was never finished"),
	}
	var buf bytes.Buffer
	Pretty(&buf, diags, fs, PrettyOpts{Max: 1})
	out := buf.String()
	if !strings.HasPrefix(out, "ERROR "+diag.ProjUnfinishedCapsule.ID()) {
		t.Fatalf("expected header without location, got %q", out)
	}
	if strings.Contains(out, "'B'") || !strings.Contains(out, "... and 1 more") {
		t.Fatalf("max not applied: %q", out)
	}
}

func TestSummary(t *testing.T) {
	diags := []diag.Diagnostic{
		diag.NewError(diag.SynExpectExpression, source.Span{}, "a"),
		diag.NewError(diag.SynExpectExpression, source.Span{}, "b"),
		diag.New(diag.SevWarning, diag.ProjDuplicateCapsule, source.Span{}, "c"),
	}
	if got := Summary(diags); got != "2 errors, 1 warning" {
		t.Fatalf("Summary = %q", got)
	}
	if got := Summary(nil); got != "0 errors" {
		t.Fatalf("Summary(nil) = %q", got)
	}
}

func TestJSONOutput(t *testing.T) {
	fs, id := fixture(t, "link Ghost\n")
	d := diag.NewError(diag.ProjUnresolvedCapsule, source.Span{File: id, Start: 5, End: 10}, "not found").
		WithNote(source.Span{File: id, Start: 0, End: 4}, "requested here")

	var buf bytes.Buffer
	if err := JSON(&buf, []diag.Diagnostic{d}, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if out.Count != 1 || out.Errors != 1 {
		t.Fatalf("count=%d errors=%d", out.Count, out.Errors)
	}
	got := out.Diagnostics[0]
	if got.Code != diag.ProjUnresolvedCapsule.ID() || got.Severity != diag.SevError {
		t.Fatalf("unexpected diagnostic %+v", got)
	}
	if got.Location == nil || got.Location.StartLine != 1 || got.Location.StartCol != 6 || got.Location.EndCol != 11 {
		t.Fatalf("bad location %+v", got.Location)
	}
	if len(got.Notes) != 1 || got.Notes[0].Message != "requested here" {
		t.Fatalf("bad notes %+v", got.Notes)
	}
}

func TestTimingNotesAlwaysIncluded(t *testing.T) {
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").WithNote(source.Span{}, `{"total_ms":1}`)
	out := BuildDiagnosticsOutput([]diag.Diagnostic{d}, source.NewFileSet(), JSONOpts{})
	if len(out.Diagnostics[0].Notes) != 1 || out.Diagnostics[0].Location != nil {
		t.Fatalf("unexpected %+v", out.Diagnostics[0])
	}
	if out.Errors != 0 {
		t.Fatalf("info counted as error")
	}
}

func TestFormatTokens(t *testing.T) {
	fs, id := fixture(t, "capsule K {}")
	toks := lexer.New(fs.Get(id), lexer.Options{}).All()

	var buf bytes.Buffer
	if err := FormatTokens(&buf, fs, toks); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"KwCapsule", `"K"`, "LBrace", "RBrace", "EOF", "at 1:1-1:8"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := FormatTokensJSON(&buf, toks); err != nil {
		t.Fatal(err)
	}
	var decoded []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(toks) || decoded[0].Kind != "KwCapsule" {
		t.Fatalf("unexpected %+v", decoded)
	}
}

func TestFormatASTTree(t *testing.T) {
	fs, id := fixture(t, "link Util\ncapsule Demo {\n  xs<List<Number>> = [1, 2 * 3]\n  name = 'demo'\n}\n")
	res := parser.ParseFile(fs, lexer.New(fs.Get(id), lexer.Options{}), parser.Options{})
	if res.Failed {
		t.Fatal("parse failed")
	}

	var buf bytes.Buffer
	if err := FormatASTTree(&buf, fs, res.Source, false); err != nil {
		t.Fatal(err)
	}
	want := `Source capsule Demo
├─ Link Util (pending)
└─ Capsule Demo
   ├─ Assignment
   │  ├─ Identifier xs<List<Number>>
   │  └─ List [2]
   │     ├─ Literal Number 1
   │     └─ BinaryOperation *
   │        ├─ Literal Number 2
   │        └─ Literal Number 3
   └─ Assignment
      ├─ Identifier name
      └─ Literal String "demo"
`
	if buf.String() != want {
		t.Fatalf("tree mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := FormatASTTree(&buf, fs, res.Source, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Link Util (pending) @ 1:1-1:10") {
		t.Fatalf("spans missing:\n%s", buf.String())
	}
}

func TestFormatASTJSON(t *testing.T) {
	fs, id := fixture(t, "link Util\nx = Util.base\n")
	res := parser.ParseFile(fs, lexer.New(fs.Get(id), lexer.Options{}), parser.Options{})

	out := BuildASTJSON(res.Source, false)
	if out.Type != "Source" || len(out.Children) != 2 {
		t.Fatalf("unexpected root %+v", out)
	}
	link := out.Children[0]
	if link.Type != "Link" || link.Text != "Util" || link.State != "pending" {
		t.Fatalf("unexpected link %+v", link)
	}
	ref := out.Children[1].Children[1]
	if ref.Type != "Reference" || ref.Text != "Util.base" {
		t.Fatalf("unexpected reference %+v", ref)
	}
}
