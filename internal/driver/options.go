package driver

import (
	"io"

	"github.com/charmbracelet/log"

	"thetac/internal/ast"
	"thetac/internal/buildpipeline"
	"thetac/internal/diag"
	"thetac/internal/emit"
	"thetac/internal/observ"
	"thetac/internal/project"
	"thetac/internal/source"
	"thetac/internal/trace"
)

// Options configures a Compiler. The zero value works: capsules are
// discovered next to the entry file and a successful Compile writes a
// msgpack artifact.
type Options struct {
	Root      string // корень поиска капсул; "": каталог entry-файла
	Extension string // ".th" по умолчанию

	// Index, if set, is used instead of running discovery. It is only read,
	// so one index may be shared by several compilers.
	Index *project.CapsuleIndex

	EmitTokens  bool
	EmitAST     bool
	TokenWriter io.Writer // куда писать токены при EmitTokens
	ASTWriter   io.Writer // куда писать дерево при EmitAST

	Tracer   trace.Tracer // nil: берём из context, иначе Nop
	Logger   *log.Logger  // nil: молча
	Progress buildpipeline.ProgressSink
	Emitter  emit.Emitter // nil: emit.MsgpackEmitter
}

// Result describes one Compile run.
type Result struct {
	Entry       *ast.Source
	FileSet     *source.FileSet
	Diagnostics []diag.Diagnostic
	Capsules    []string       // resolved capsules, in resolution order
	Parses      map[string]int // parse count per capsule (or file path for scripts)
	Order       []string       // capsules, dependencies first
	Output      string         // artifact path, "" if nothing was written
	Timings     observ.Report
}

// ErrorCount counts error-severity diagnostics.
func (r *Result) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.IsError() {
			n++
		}
	}
	return n
}
