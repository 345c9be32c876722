package lexer

import (
	"thetac/internal/diag"
	"thetac/internal/source"
	"thetac/internal/token"
)

type Options struct {
	Reporter diag.Reporter // может быть nil: ошибки игнорируются, лексинг продолжается
	// OnToken sees every token exactly once, when it is first scanned.
	// Peek does not repeat it.
	OnToken func(token.Token)
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}
