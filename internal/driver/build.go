package driver

import (
	"fmt"
	"path/filepath"
	"time"

	"thetac/internal/ast"
	"thetac/internal/buildpipeline"
	"thetac/internal/diag"
	"thetac/internal/diagfmt"
	"thetac/internal/lexer"
	"thetac/internal/parser"
	"thetac/internal/source"
	"thetac/internal/token"
	"thetac/internal/trace"
)

// BuildAST loads fileName into the run's FileSet and parses it, resolving
// its links through the compiler. Only an unreadable file is an error;
// lexical and syntax errors go to the error bag and the partial AST is
// returned.
//
// A file that is the indexed home of a capsule goes through the link
// cache: it is registered in progress before parsing, so a cycle back to
// it reuses the same Link, and a second call returns the cached AST.
func (c *Compiler) BuildAST(fileName string) (*ast.Source, error) {
	path, err := filepath.Abs(fileName)
	if err != nil {
		path = fileName
	}
	idx, _ := c.Index(filepath.Dir(path))
	if name, ok := idx.CapsuleOf(path); ok {
		link, created := c.beginLink(name, path, source.Span{})
		if created {
			return c.buildLink(link)
		}
		if value, resolved := c.resolvedValue(link); resolved {
			return value, nil
		}
	}
	return c.loadAndBuild(path)
}

// buildLink parses the file behind a link this compiler just registered
// and settles the link.
func (c *Compiler) buildLink(link *ast.Link) (*ast.Source, error) {
	src, err := c.loadAndBuild(link.Path)
	c.finishLink(link, src, err)
	return src, err
}

func (c *Compiler) loadAndBuild(path string) (*ast.Source, error) {
	id, err := c.fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c.buildFile(c.fs.Get(id)), nil
}

// BuildASTFromSource is BuildAST for text that does not live on disk.
// fileName only labels the virtual file in diagnostics.
func (c *Compiler) BuildASTFromSource(src, fileName string) *ast.Source {
	id := c.fs.AddVirtual(fileName, []byte(src))
	return c.buildFile(c.fs.Get(id))
}

func (c *Compiler) buildFile(file *source.File) *ast.Source {
	capsule := c.capsuleOf(file)
	key := capsule
	if key == "" {
		key = file.Path
	}

	spanName := "file:" + file.Path
	if capsule != "" {
		spanName = "capsule:" + capsule
	}
	span := c.beginSpan(trace.ScopeCapsule, spanName)
	span.WithExtra("path", file.Path)
	started := time.Now()
	buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{File: file.Path, Capsule: capsule, Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking})

	c.mu.Lock()
	c.parses[key]++
	c.mu.Unlock()

	counting := &diag.CountingReporter{Next: diag.BagReporter{Bag: c.bag, Capsule: capsule}}
	var tokens []token.Token
	lexOpts := lexer.Options{Reporter: counting}
	if c.opts.EmitTokens {
		lexOpts.OnToken = func(tok token.Token) { tokens = append(tokens, tok) }
	}
	lx := lexer.New(file, lexOpts)

	res := parser.ParseFile(c.fs, lx, parser.Options{
		Reporter: counting,
		Resolver: c.ResolveLink,
	})
	src := res.Source

	if c.opts.EmitTokens && c.opts.TokenWriter != nil {
		if err := diagfmt.FormatTokens(c.opts.TokenWriter, c.fs, tokens); err != nil {
			c.logger.Warn("failed to write tokens", "path", file.Path, "error", err)
		}
	}
	if c.opts.EmitAST && c.opts.ASTWriter != nil {
		if err := diagfmt.FormatASTTree(c.opts.ASTWriter, c.fs, src, false); err != nil {
			c.logger.Warn("failed to write AST", "path", file.Path, "error", err)
		}
	}

	status := buildpipeline.StatusDone
	if counting.Errors > 0 {
		status = buildpipeline.StatusError
	}
	elapsed := time.Since(started)
	c.timer.Record(key, elapsed, "")
	buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{
		File:    file.Path,
		Capsule: capsule,
		Stage:   buildpipeline.StageParse,
		Status:  status,
		Elapsed: elapsed,
	})
	c.endSpan(span, fmt.Sprintf("errors=%d", counting.Errors))
	c.logger.Debug("built", "path", file.Path, "capsule", capsule, "errors", counting.Errors)
	return src
}

// capsuleOf names the capsule a file declares, for tagging diagnostics.
// Virtual files are not in the index and fall back to a quick scan.
func (c *Compiler) capsuleOf(file *source.File) string {
	if !file.IsVirtual() && c.index != nil {
		if name, ok := c.index.CapsuleOf(file.Path); ok {
			return name
		}
	}
	if name, ok := findCapsuleName(file.Content); ok {
		return name
	}
	return ""
}
