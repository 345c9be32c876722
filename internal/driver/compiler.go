package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"thetac/internal/ast"
	"thetac/internal/buildpipeline"
	"thetac/internal/diag"
	"thetac/internal/emit"
	"thetac/internal/observ"
	"thetac/internal/project"
	"thetac/internal/project/dag"
	"thetac/internal/source"
	"thetac/internal/trace"
)

// ErrCompilationFailed is returned by Compile when the run recorded errors.
var ErrCompilationFailed = errors.New("compilation failed")

// Compiler is the context of one compilation run. It owns the FileSet, the
// error bag, the capsule index and the link cache. Nothing is global: two
// compilers never share state unless an Index is passed in explicitly.
type Compiler struct {
	opts   Options
	fs     *source.FileSet
	bag    *diag.Bag
	logger *log.Logger
	tracer trace.Tracer
	status *trace.Status // nil без --trace
	lane   string
	timer  *observ.Timer

	indexOnce sync.Once
	index     *project.CapsuleIndex
	indexErr  error

	mu     sync.Mutex
	links  map[string]*ast.Link
	chain  []string // капсулы, которые сейчас строятся (стек рекурсии)
	order  []string // порядок успешного разрешения
	parses map[string]int
	spans  []uint64 // стек trace-спанов для parent id
}

func NewCompiler(opts Options) *Compiler {
	if opts.Extension == "" {
		opts.Extension = project.DefaultExtension
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	c := &Compiler{
		opts:   opts,
		fs:     source.NewFileSet(),
		bag:    diag.NewBag(),
		logger: logger,
		tracer: tracer,
		timer:  observ.NewTimer(),
		links:  make(map[string]*ast.Link),
		parses: make(map[string]int),
	}
	if opts.Index != nil {
		c.indexOnce.Do(func() { c.index = opts.Index })
	}
	return c
}

// FileSet returns the files loaded by this compiler.
func (c *Compiler) FileSet() *source.FileSet { return c.fs }

// Index builds the capsule index on first use. root is only consulted the
// first time and only when Options.Root is empty.
func (c *Compiler) Index(root string) (*project.CapsuleIndex, error) {
	c.indexOnce.Do(func() {
		if c.opts.Root != "" {
			root = c.opts.Root
		}
		if root == "" {
			root = "."
		}
		idxPhase := c.timer.Begin("discover")
		span := c.beginSpan(trace.ScopePass, "discover")
		buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{Stage: buildpipeline.StageDiscover, Status: buildpipeline.StatusWorking})

		c.index, c.indexErr = project.DiscoverCapsules(root, c.opts.Extension, project.DiscoverOptions{Logger: c.logger})

		status := buildpipeline.StatusDone
		note := ""
		if c.indexErr != nil {
			status = buildpipeline.StatusError
		} else {
			note = fmt.Sprintf("capsules=%d", c.index.Len())
		}
		buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{Stage: buildpipeline.StageDiscover, Status: status, Err: c.indexErr})
		c.endSpan(span, note)
		c.timer.End(idxPhase, note)
	})
	return c.index, c.indexErr
}

// Compile builds entrypoint with every capsule it links and, if no errors
// were recorded, emits the result to outputFile. An empty outputFile only
// checks. An unreadable entry file or a failed discovery is returned as an
// error straight away; compile errors are in Result.Diagnostics and the
// returned error wraps ErrCompilationFailed.
func (c *Compiler) Compile(ctx context.Context, entrypoint, outputFile string) (*Result, error) {
	if c.opts.Tracer == nil {
		c.tracer = trace.FromContext(ctx)
	}
	c.status, c.lane = trace.StatusFromContext(ctx), entrypoint
	defer c.status.Set(entrypoint, "")
	root := c.beginSpan(trace.ScopeDriver, "compile")
	defer c.endSpan(root, entrypoint)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	absEntry, err := filepath.Abs(entrypoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry path: %w", err)
	}
	if _, err := c.Index(filepath.Dir(absEntry)); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buildPhase := c.timer.Begin("build")
	buildSpan := c.beginSpan(trace.ScopePass, "build")

	// BuildAST сам регистрирует капсулу entry-файла в кэше ссылок
	entry, err := c.BuildAST(absEntry)
	c.finalize()

	c.endSpan(buildSpan, fmt.Sprintf("capsules=%d", len(c.resolvedNames())))
	c.timer.End(buildPhase, "")
	if err != nil {
		return nil, err
	}

	res := c.result(entry)
	if n := c.bag.ErrorCount(); n > 0 {
		c.logger.Debug("compilation failed", "entry", absEntry, "errors", n)
		buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusSkipped})
		res.Timings = c.timer.Report()
		return res, fmt.Errorf("%w: %d error(s)", ErrCompilationFailed, n)
	}
	if outputFile == "" {
		res.Timings = c.timer.Report()
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if err := c.emit(ctx, entry, res.Order, outputFile); err != nil {
		res.Timings = c.timer.Report()
		return res, err
	}
	res.Output = outputFile
	res.Timings = c.timer.Report()
	return res, nil
}

// CompileDirect runs the build pipeline over in-memory source text without
// writing anything. Errors are available through Errors.
func (c *Compiler) CompileDirect(src string) *ast.Source {
	if _, err := c.Index(""); err != nil {
		c.logger.Warn("capsule discovery failed", "error", err)
	}
	out := c.BuildASTFromSource(src, "<direct>")
	c.finalize()
	return out
}

func (c *Compiler) emit(ctx context.Context, entry *ast.Source, order []string, outputFile string) error {
	emitPhase := c.timer.Begin("emit")
	span := c.beginSpan(trace.ScopePass, "emit")
	buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{File: outputFile, Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusWorking})

	emitter := c.opts.Emitter
	if emitter == nil {
		emitter = emit.MsgpackEmitter{}
	}
	unit := &emit.Unit{
		Entry:    entry,
		Order:    order,
		Capsules: make(map[string]*ast.Source, len(order)),
		Content:  c.fileContent,
	}
	for _, name := range order {
		if l, ok := c.GetIfExistsParsedLinkAST(name); ok {
			unit.Capsules[name] = l.Value
		}
	}
	err := emitter.Emit(ctx, unit, outputFile)

	status := buildpipeline.StatusDone
	if err != nil {
		status = buildpipeline.StatusError
		err = fmt.Errorf("emit %s: %w", outputFile, err)
	}
	buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{File: outputFile, Stage: buildpipeline.StageEmit, Status: status, Err: err})
	c.endSpan(span, "")
	c.timer.End(emitPhase, filepath.Base(outputFile))
	return err
}

func (c *Compiler) fileContent(path string) []byte {
	if id, ok := c.fs.GetLatest(path); ok {
		return c.fs.Get(id).Content
	}
	return nil
}

func (c *Compiler) result(entry *ast.Source) *Result {
	c.mu.Lock()
	parses := make(map[string]int, len(c.parses))
	for k, v := range c.parses {
		parses[k] = v
	}
	c.mu.Unlock()

	return &Result{
		Entry:       entry,
		FileSet:     c.fs,
		Diagnostics: c.bag.Items(),
		Capsules:    c.resolvedNames(),
		Parses:      parses,
		Order:       c.dependencyOrder(entry),
	}
}

// dependencyOrder sorts the linked capsules so each one comes after the
// capsules it links. The entry's own capsule is left out.
func (c *Compiler) dependencyOrder(entry *ast.Source) []string {
	self := entry.CapsuleName()
	var nodes []dag.Node
	for _, l := range ast.Links(entry) {
		if !l.Resolved() || l.Capsule == self {
			continue
		}
		node := dag.Node{Name: l.Capsule}
		for _, dep := range l.Value.Links {
			node.Links = append(node.Links, dep.Capsule)
		}
		nodes = append(nodes, node)
	}
	order, _ := dag.Order(nodes)
	return order
}

func (c *Compiler) beginSpan(scope trace.Scope, name string) *trace.Span {
	c.mu.Lock()
	parent := uint64(0)
	if n := len(c.spans); n > 0 {
		parent = c.spans[n-1]
	}
	c.mu.Unlock()

	span := trace.Begin(c.tracer, scope, name, parent)
	if span.ID() != 0 {
		c.mu.Lock()
		c.spans = append(c.spans, span.ID())
		c.mu.Unlock()
	}
	return span
}

func (c *Compiler) endSpan(span *trace.Span, detail string) {
	if span.ID() != 0 {
		c.mu.Lock()
		if n := len(c.spans); n > 0 && c.spans[n-1] == span.ID() {
			c.spans = c.spans[:n-1]
		}
		c.mu.Unlock()
	}
	span.End(detail)
}

func (c *Compiler) currentSpan() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.spans); n > 0 {
		return c.spans[n-1]
	}
	return 0
}
