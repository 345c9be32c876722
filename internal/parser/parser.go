package parser

import (
	"thetac/internal/ast"
	"thetac/internal/diag"
	"thetac/internal/lexer"
	"thetac/internal/source"
	"thetac/internal/token"
)

// LinkResolver is the one capability the parser needs from the compiler:
// turn `link Name` into the shared Link node for that capsule. It is called
// synchronously, so parsing blocks until the linked capsule is built.
type LinkResolver func(capsule string, at source.Span) *ast.Link

type Options struct {
	Reporter diag.Reporter
	Resolver LinkResolver // nil: ссылки остаются неразрешёнными заглушками
}

type Result struct {
	Source *ast.Source
	Failed bool // a lexical or syntax error stopped the parse early
}

// Parser: состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span // span последнего съеденного токена
	failed   bool
}

// ParseFile parses one file. The first lexical or syntax error ends the
// parse; everything built up to that point is returned so dependents of
// this file still see a (partial) AST.
func ParseFile(fs *source.FileSet, lx *lexer.Lexer, opts Options) Result {
	p := Parser{
		lx:       lx,
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}
	src := p.parseSource()
	src.Path = lx.File().Path
	return Result{Source: src, Failed: p.failed}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	return p.lx.Peek().Is(kinds...)
}

// parseSource: link* (capsule | assignment*) EOF
func (p *Parser) parseSource() *ast.Source {
	src := &ast.Source{Sp: p.lx.EmptySpan()}
	start := p.lx.Peek().Span

	for p.at(token.KwLink) && !p.failed {
		if link, ok := p.parseLink(); ok {
			src.Links = append(src.Links, link)
		}
	}

	switch {
	case p.failed:
	case p.at(token.KwCapsule):
		if capsule, ok := p.parseCapsule(); capsule != nil {
			src.Capsule = capsule
			if ok && !p.at(token.EOF) {
				p.unexpectedTopLevel()
			}
		}
	default:
		for !p.at(token.EOF) && !p.failed {
			if p.at(token.KwLink) {
				p.err(diag.SynLinkAfterBody, "link must come before any declaration")
				break
			}
			if p.at(token.KwCapsule) {
				p.err(diag.SynUnexpectedTopLevel, "capsule must be the first declaration after links")
				break
			}
			if a, ok := p.parseAssignment(); ok {
				src.Body = append(src.Body, a)
			}
		}
	}

	src.Sp = start.Cover(p.lastSpan)
	return src
}

// parseLink: 'link' QualifiedName
func (p *Parser) parseLink() (*ast.Link, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseQualifiedName()
	if !ok {
		return nil, false
	}
	sp := kw.Span.Cover(nameSpan)
	if p.opts.Resolver == nil {
		return &ast.Link{Capsule: name, State: ast.LinkPending, Sp: sp}, true
	}
	link := p.opts.Resolver(name, sp)
	if link == nil {
		link = ast.NewPlaceholderLink(name, sp)
	}
	return link, true
}

// parseCapsule: 'capsule' QualifiedName '{' assignment* '}'
func (p *Parser) parseCapsule() (*ast.Capsule, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseQualifiedName()
	if !ok {
		return nil, false
	}
	capsule := &ast.Capsule{Name: name, NameSpan: nameSpan, Sp: kw.Span.Cover(nameSpan)}

	if _, ok := p.expect(token.LBrace, diag.SynExpectCapsuleBody, "expected '{' after capsule name"); !ok {
		return capsule, false
	}
	for !p.atAny(token.RBrace, token.EOF) && !p.failed {
		if a, ok := p.parseAssignment(); ok {
			capsule.Defs = append(capsule.Defs, a)
		}
	}
	if p.failed {
		capsule.Sp = capsule.Sp.Cover(p.lastSpan)
		return capsule, false
	}
	closing, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close capsule "+name)
	if ok {
		capsule.Sp = capsule.Sp.Cover(closing.Span)
	}
	return capsule, ok
}

// parseQualifiedName: Ident ('.' Ident)*
func (p *Parser) parseQualifiedName() (string, source.Span, bool) {
	first, ok := p.expectIdent()
	if !ok {
		return "", first.Span, false
	}
	name := first.Text
	sp := first.Span
	for p.at(token.Dot) {
		p.advance()
		part, ok := p.expectIdent()
		if !ok {
			return name, sp, false
		}
		name += "." + part.Text
		sp = sp.Cover(part.Span)
	}
	return name, sp, true
}

func (p *Parser) unexpectedTopLevel() {
	p.err(diag.SynUnexpectedTopLevel, "unexpected \""+p.lx.Peek().Text+"\" after capsule declaration")
}
