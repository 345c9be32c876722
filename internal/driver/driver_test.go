package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thetac/internal/ast"
	"thetac/internal/buildpipeline"
	"thetac/internal/diag"
	"thetac/internal/diagfmt"
	"thetac/internal/emit"
	"thetac/internal/source"
	"thetac/internal/trace"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestAtMostOnceParse(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th":       "link A\nlink B\nlink C\nx = 1\n",
		"a.th":          "link Shared\ncapsule A { a = Shared.v }",
		"b.th":          "link Shared\ncapsule B { b = Shared.v }",
		"c.th":          "link Shared\nlink A\ncapsule C { c = Shared.v }",
		"lib/shared.th": "capsule Shared { v = 42 }",
	})
	c := NewCompiler(Options{Root: root})
	res, err := c.Compile(context.Background(), filepath.Join(root, "main.th"), "")
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, 1, c.ParseCount("Shared"))
	assert.Equal(t, 1, c.ParseCount("A"))
	assert.Equal(t, 1, res.Parses["Shared"])

	a, ok := c.GetIfExistsParsedLinkAST("A")
	require.True(t, ok)
	b, _ := c.GetIfExistsParsedLinkAST("B")
	cc, _ := c.GetIfExistsParsedLinkAST("C")
	shared, ok := c.GetIfExistsParsedLinkAST("Shared")
	require.True(t, ok)

	assert.Same(t, shared, a.Value.Links[0])
	assert.Same(t, shared, b.Value.Links[0])
	assert.Same(t, shared, cc.Value.Links[0])
	assert.Same(t, a, cc.Value.Links[1])
	assert.Same(t, a, res.Entry.Links[0])

	// Shared разрешается первым, потому что A тянет его изнутри
	assert.Equal(t, []string{"Shared", "A", "B", "C"}, res.Capsules)
	assert.Equal(t, "Shared", res.Order[0])
}

func TestCycleTerminates(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.th": "link B\ncapsule A { x = B.y }",
		"b.th": "link A\ncapsule B { y = 1 }",
	})

	for _, entry := range []string{"a.th", "b.th"} {
		t.Run(entry, func(t *testing.T) {
			c := NewCompiler(Options{Root: root})
			res, err := c.Compile(context.Background(), filepath.Join(root, entry), filepath.Join(root, "out.thc"))
			require.ErrorIs(t, err, ErrCompilationFailed)
			require.NotNil(t, res.Entry)
			assert.Contains(t, codes(res.Diagnostics), diag.ProjLinkCycle)
			assert.Empty(t, res.Output)
			_, statErr := os.Stat(filepath.Join(root, "out.thc"))
			assert.True(t, os.IsNotExist(statErr), "nothing is emitted on a cycle")

			self := res.Entry.CapsuleName()
			selfLink, ok := c.GetIfExistsParsedLinkAST(self)
			require.True(t, ok)
			// прямая ссылка заполнена после завершения внешней сборки
			assert.Same(t, res.Entry, selfLink.Value)
			other := res.Entry.Links[0]
			require.True(t, other.Resolved())
			assert.Same(t, selfLink, other.Value.Links[0])
			assert.Equal(t, 1, c.ParseCount(self))
		})
	}
}

func TestBuildASTRegistersOwnCapsule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.th": "link B\ncapsule A { x = B.y }",
		"b.th": "link A\ncapsule B { y = 1 }",
	})
	c := NewCompiler(Options{Root: root})

	src, err := c.BuildAST(filepath.Join(root, "a.th"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.ParseCount("A"))
	assert.Equal(t, 1, c.ParseCount("B"))
	assert.Equal(t, []diag.Code{diag.ProjLinkCycle}, codes(c.Errors()))

	a, ok := c.GetIfExistsParsedLinkAST("A")
	require.True(t, ok)
	assert.Same(t, src, a.Value)
	b := src.Links[0]
	require.True(t, b.Resolved())
	assert.Same(t, a, b.Value.Links[0])

	// второй вызов отдаёт закэшированное дерево
	again, err := c.BuildAST(filepath.Join(root, "a.th"))
	require.NoError(t, err)
	assert.Same(t, src, again)
	assert.Equal(t, 1, c.ParseCount("A"))
}

func TestCompileTwiceReusesCache(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.th":    "link Util\ncapsule A { x = Util.base }",
		"util.th": "capsule Util { base = 1 }",
	})
	c := NewCompiler(Options{Root: root})
	entry := filepath.Join(root, "a.th")

	first, err := c.Compile(context.Background(), entry, "")
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), entry, "")
	require.NoError(t, err)

	assert.Same(t, first.Entry, second.Entry)
	assert.Equal(t, []string{"Util", "A"}, second.Capsules)
	assert.Equal(t, 1, c.ParseCount("A"))
	assert.Equal(t, 1, c.ParseCount("Util"))
}

func TestResolveLinkInProgressDoesNotBuild(t *testing.T) {
	root := writeTree(t, map[string]string{"u.th": "capsule U { v = 1 }"})
	c := NewCompiler(Options{Root: root})
	_, err := c.Index("")
	require.NoError(t, err)

	held, created := c.beginLink("U", filepath.Join(root, "u.th"), source.Span{})
	require.True(t, created)
	_, created = c.beginLink("U", filepath.Join(root, "u.th"), source.Span{})
	assert.False(t, created)

	got := c.ResolveLink("U", source.Span{})
	assert.Same(t, held, got)
	assert.Equal(t, 0, c.ParseCount("U"))
	assert.Equal(t, []diag.Code{diag.ProjSelfLink}, codes(c.Errors()))
}

func TestTraceRecordsLinkErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.th": "link B\nlink Ghost\ncapsule A { x = B.y }",
		"b.th": "link A\ncapsule B { y = 1 }",
	})
	ring := trace.NewRingTracer(64, trace.LevelError)
	status := trace.NewStatus()
	ctx := trace.WithStatus(trace.WithTracer(context.Background(), ring), status)

	_, err := NewCompiler(Options{Root: root}).Compile(ctx, filepath.Join(root, "a.th"), "")
	require.ErrorIs(t, err, ErrCompilationFailed)

	var details []string
	for _, ev := range ring.Snapshot() {
		require.Equal(t, trace.KindError, ev.Kind, "only errors pass at LevelError")
		details = append(details, ev.Name+" "+ev.Detail)
	}
	assert.Contains(t, details, "link:A cycle A > B > A")
	assert.Contains(t, details, "link:Ghost unresolved, linked from A")
	assert.Empty(t, status.String(), "lane is cleared when the run ends")
}

func TestCycleThroughScriptEntry(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th": "link A\n",
		"a.th":    "link B\ncapsule A { }",
		"b.th":    "link A\ncapsule B { }",
	})
	c := NewCompiler(Options{Root: root})
	res, err := c.Compile(context.Background(), filepath.Join(root, "main.th"), "")
	require.ErrorIs(t, err, ErrCompilationFailed)

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, diag.ProjLinkCycle, d.Code)
	assert.Contains(t, d.Message, "A -> B -> A")
	assert.Equal(t, "B", d.Capsule)
	assert.Equal(t, 1, c.ParseCount("A"))
	assert.Equal(t, 1, c.ParseCount("B"))
}

func TestSelfLink(t *testing.T) {
	root := writeTree(t, map[string]string{"m.th": "link M\ncapsule M { }"})
	c := NewCompiler(Options{Root: root})
	res, err := c.Compile(context.Background(), filepath.Join(root, "m.th"), "")
	require.ErrorIs(t, err, ErrCompilationFailed)
	assert.Equal(t, []diag.Code{diag.ProjSelfLink}, codes(res.Diagnostics))
}

func TestIndexStableDuringRun(t *testing.T) {
	root := writeTree(t, map[string]string{
		"math.th": "capsule Math { pi = 3.14 }",
	})
	c := NewCompiler(Options{Root: root})
	idx, err := c.Index("")
	require.NoError(t, err)
	require.Equal(t, []string{"Math"}, idx.Names())

	require.NoError(t, os.WriteFile(filepath.Join(root, "late.th"), []byte("capsule Late { }"), 0o644))

	src := c.BuildASTFromSource("link Math\nlink Late\n", "virtual")
	require.Len(t, src.Links, 2)
	assert.True(t, src.Links[0].Resolved())
	assert.Equal(t, ast.LinkUnresolved, src.Links[1].State)
	assert.Equal(t, []diag.Code{diag.ProjUnresolvedCapsule}, codes(c.Errors()))

	again, _ := c.Index("")
	assert.Same(t, idx, again)
}

func TestErrorAccumulation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th":  "link One\nlink Two\nlink Three\n",
		"one.th":   "capsule One { x = }",
		"two.th":   "capsule Two { y = 2 }",
		"three.th": "capsule Three { z 3 }",
	})
	c := NewCompiler(Options{Root: root})
	out := filepath.Join(root, "main.thc")
	res, err := c.Compile(context.Background(), filepath.Join(root, "main.th"), out)
	require.ErrorIs(t, err, ErrCompilationFailed)

	errs := c.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "One", errs[0].Capsule)
	assert.Equal(t, "Three", errs[1].Capsule)
	for _, d := range errs {
		assert.NotEqual(t, "Two", d.Capsule)
		file := res.FileSet.Get(d.Primary.File)
		require.NotNil(t, file)
		assert.NotEqual(t, "two.th", filepath.Base(file.Path))
	}
	// все три ссылки всё равно разрешены, частичные AST сохранены
	for _, l := range res.Entry.Links {
		assert.True(t, l.Resolved(), l.Capsule)
	}
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestClearErrorsIdempotent(t *testing.T) {
	c := NewCompiler(Options{Root: t.TempDir()})
	c.ClearErrors()
	assert.Empty(t, c.Errors())

	c.CompileDirect("link Nowhere\n")
	require.Len(t, c.Errors(), 1)
	assert.True(t, c.HasErrors())

	c.ClearErrors()
	c.ClearErrors()
	assert.Empty(t, c.Errors())
	assert.False(t, c.HasErrors())
}

func TestDirectSourceEquivalence(t *testing.T) {
	text := `link Util
capsule Demo {
    name<String> = 'demo'
    sizes<List<Number>> = [1, 2 * 3, Util.base]
    ok = true
}
`
	root := writeTree(t, map[string]string{
		"util.th": "capsule Util { base = 10 }",
		"demo.th": text,
	})

	virtual := NewCompiler(Options{Root: root}).BuildASTFromSource(text, "virtual")
	fromFile, err := NewCompiler(Options{Root: root}).BuildAST(filepath.Join(root, "demo.th"))
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, diagfmt.FormatASTTree(&a, nil, virtual, false))
	require.NoError(t, diagfmt.FormatASTTree(&b, nil, fromFile, false))
	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, "Demo", virtual.CapsuleName())
	assert.Equal(t, fromFile.CapsuleName(), virtual.CapsuleName())
}

func TestUnresolvedImport(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th": "link Ghost\nvalue = Ghost.x\n",
	})
	c := NewCompiler(Options{Root: root})
	res, err := c.Compile(context.Background(), filepath.Join(root, "main.th"), "")
	require.ErrorIs(t, err, ErrCompilationFailed)

	require.Equal(t, []diag.Code{diag.ProjUnresolvedCapsule}, codes(res.Diagnostics))
	require.NotNil(t, res.Entry)
	require.Len(t, res.Entry.Links, 1)
	ghost := res.Entry.Links[0]
	assert.Equal(t, "Ghost", ghost.Capsule)
	assert.Equal(t, ast.LinkUnresolved, ghost.State)
	assert.Nil(t, ghost.Value)
	assert.Len(t, res.Entry.Body, 1)
}

func TestUnresolvedNotCached(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th": "link A\nlink Ghost\n",
		"a.th":    "link Ghost\ncapsule A { }",
	})
	c := NewCompiler(Options{Root: root})
	res, _ := c.Compile(context.Background(), filepath.Join(root, "main.th"), "")
	assert.Equal(t, []diag.Code{diag.ProjUnresolvedCapsule, diag.ProjUnresolvedCapsule}, codes(res.Diagnostics))
	assert.Equal(t, "A", res.Diagnostics[0].Capsule)
	assert.Equal(t, "", res.Diagnostics[1].Capsule)
	_, cached := c.GetIfExistsParsedLinkAST("Ghost")
	assert.False(t, cached)
}

func TestDuplicateCapsule(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.th": "link Dup\n",
		"a.th":    "capsule Dup { v = 1 }",
		"b.th":    "capsule Dup { v = 2 }",
	})
	c := NewCompiler(Options{Root: root})
	res, err := c.Compile(context.Background(), filepath.Join(root, "main.th"), "")
	require.ErrorIs(t, err, ErrCompilationFailed)
	require.Equal(t, []diag.Code{diag.ProjDuplicateCapsule}, codes(res.Diagnostics))
	require.Len(t, res.Diagnostics[0].Notes, 1)
	assert.Contains(t, res.Diagnostics[0].Notes[0].Msg, "b.th")

	dup := res.Entry.Links[0]
	require.True(t, dup.Resolved())
	assert.Equal(t, "a.th", filepath.Base(dup.Path))
}

func TestSeededCacheSkipsParse(t *testing.T) {
	root := writeTree(t, map[string]string{"pre.th": "capsule Pre { }"})
	c := NewCompiler(Options{Root: root})
	seeded := &ast.Link{Value: &ast.Source{Capsule: &ast.Capsule{Name: "Pre"}}}
	c.AddParsedLinkAST("Pre", seeded)

	src := c.CompileDirect("link Pre\n")
	assert.Same(t, seeded, src.Links[0])
	assert.Equal(t, ast.LinkResolved, seeded.State)
	assert.Equal(t, 0, c.ParseCount("Pre"))
	assert.Empty(t, c.Errors())
}

func TestUnfinishedCapsuleReported(t *testing.T) {
	c := NewCompiler(Options{Root: t.TempDir()})
	stuck := &ast.Link{Capsule: "Stuck", State: ast.LinkInProgress}
	c.AddParsedLinkAST("Stuck", stuck)

	c.CompileDirect("link Stuck\n")
	assert.Equal(t, []diag.Code{diag.ProjLinkCycle, diag.ProjUnfinishedCapsule}, codes(c.Errors()))
	assert.Equal(t, ast.LinkUnresolved, stuck.State)
}

func TestCompileEmitsArtifact(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/main.th": "link App\nstart = App.run\n",
		"src/app.th":  "link Net\nlink Util\ncapsule App { run = Net.up + 1 }",
		"src/net.th":  "link Util\ncapsule Net { up = Util.one }",
		"src/util.th": "capsule Util { one = 1 }",
	})
	sink := &buildpipeline.RecordingSink{}
	c := NewCompiler(Options{Root: filepath.Join(root, "src"), Progress: sink})
	out := filepath.Join(root, "build", "main.thc")
	res, err := c.Compile(context.Background(), filepath.Join(root, "src", "main.th"), out)
	require.NoError(t, err)
	assert.Equal(t, out, res.Output)
	assert.Equal(t, []string{"Util", "Net", "App"}, res.Order)

	art, err := emit.ReadArtifact(out)
	require.NoError(t, err)
	names := make([]string, 0, len(art.Capsules))
	for _, rec := range art.Capsules {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"Util", "Net", "App"}, names)
	assert.Equal(t, []string{"App"}, art.Root.Links)

	var sawDiscover, sawEmit bool
	for _, ev := range sink.Events() {
		if ev.Stage == buildpipeline.StageDiscover && ev.Status == buildpipeline.StatusDone {
			sawDiscover = true
		}
		if ev.Stage == buildpipeline.StageEmit && ev.Status == buildpipeline.StatusDone {
			sawEmit = true
		}
	}
	assert.True(t, sawDiscover)
	assert.True(t, sawEmit)
	assert.NotEmpty(t, res.Timings.Phases)
}

func TestCompileUnreadableEntry(t *testing.T) {
	root := t.TempDir()
	_, err := NewCompiler(Options{Root: root}).Compile(context.Background(), filepath.Join(root, "missing.th"), "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCompilationFailed)
}

func TestCompileMissingRoot(t *testing.T) {
	_, err := NewCompiler(Options{Root: filepath.Join(t.TempDir(), "nope")}).
		Compile(context.Background(), "main.th", "")
	require.Error(t, err)
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCompiler(Options{Root: t.TempDir()}).Compile(ctx, "main.th", "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmitTokensAndAST(t *testing.T) {
	root := writeTree(t, map[string]string{"k.th": "capsule K { v = 1 }"})
	var toks, tree bytes.Buffer
	c := NewCompiler(Options{
		Root:        root,
		EmitTokens:  true,
		EmitAST:     true,
		TokenWriter: &toks,
		ASTWriter:   &tree,
	})
	_, err := c.Compile(context.Background(), filepath.Join(root, "k.th"), "")
	require.NoError(t, err)
	assert.Contains(t, toks.String(), "KwCapsule")
	assert.Contains(t, tree.String(), "Capsule K")
}

func TestCompileMany(t *testing.T) {
	root := writeTree(t, map[string]string{
		"good.th": "link Lib\nx = Lib.v\n",
		"bad.th":  "link Lib\nx = \n",
		"lib.th":  "capsule Lib { v = 1 }",
	})
	entries := []string{filepath.Join(root, "good.th"), filepath.Join(root, "bad.th")}
	results, err := CompileMany(context.Background(), entries, Options{Root: root})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Zero(t, results[0].ErrorCount())
	assert.Equal(t, 1, results[1].ErrorCount())
	// у каждого запуска свой кэш: Lib разобран в каждом по разу
	assert.Equal(t, 1, results[0].Parses["Lib"])
	assert.Equal(t, 1, results[1].Parses["Lib"])
}

func TestTokenizeReportsEveryLexError(t *testing.T) {
	root := writeTree(t, map[string]string{"t.th": "x = @\ny = $\n"})
	res, err := Tokenize(filepath.Join(root, "t.th"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bag.Len())
	assert.Equal(t, "EOF", res.Tokens[len(res.Tokens)-1].Kind.String())
}

func TestParseLeavesLinksPending(t *testing.T) {
	root := writeTree(t, map[string]string{"p.th": "link Far\ncapsule P { }"})
	res, err := Parse(filepath.Join(root, "p.th"))
	require.NoError(t, err)
	assert.Zero(t, res.Bag.Len())
	require.Len(t, res.Source.Links, 1)
	assert.Equal(t, ast.LinkPending, res.Source.Links[0].State)
}

func TestTimingDiagnostic(t *testing.T) {
	c := NewCompiler(Options{Root: t.TempDir()})
	c.CompileDirect("x = 1\n")
	d := TimingDiagnostic("main.th", c.timer.Report())
	assert.Equal(t, diag.ObsTimings, d.Code)
	assert.Equal(t, diag.SevInfo, d.Severity)
	require.Len(t, d.Notes, 1)
	assert.True(t, strings.HasPrefix(d.Notes[0].Msg, `{"kind":"pipeline"`))
}
