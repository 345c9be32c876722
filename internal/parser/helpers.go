package parser

import (
	"thetac/internal/diag"
	"thetac/internal/source"
	"thetac/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Significant() {
		p.lastSpan = tok.Span
	}
	return tok
}

// diagnosticSpan: для EOF указываем сразу за последним токеном.
func (p *Parser) diagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет: репортим и останавливаем разбор.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg)
	return token.Token{Kind: token.Invalid, Span: p.diagnosticSpan()}, false
}

func (p *Parser) expectIdent() (token.Token, bool) {
	return p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier, got "+p.lx.Peek().Describe())
}

// err фиксирует ошибку файла. Invalid-токен уже зарепортил лексер,
// второй раз о нём не сообщаем.
func (p *Parser) err(code diag.Code, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	if p.at(token.Invalid) {
		return
	}
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, diag.SevError, p.diagnosticSpan(), msg, nil)
	}
}
