package parser

import (
	"thetac/internal/ast"
	"thetac/internal/diag"
	"thetac/internal/token"
)

func (p *Parser) parseExpr() (ast.Node, bool) {
	return p.parseBinary(0)
}

// binary precedence levels, lowest first
var binaryLevels = [][]token.Kind{
	{token.Plus, token.Minus},
	{token.Star, token.Slash},
}

func (p *Parser) parseBinary(level int) (ast.Node, bool) {
	if level == len(binaryLevels) {
		return p.parsePrimary()
	}
	left, ok := p.parseBinary(level + 1)
	if !ok {
		return left, false
	}
	for p.atAny(binaryLevels[level]...) {
		op := p.advance()
		right, ok := p.parseBinary(level + 1)
		if !ok {
			return left, false
		}
		left = &ast.Binary{Op: op.Text, Left: left, Right: right, Sp: left.Span().Cover(right.Span())}
	}
	return left, true
}

func (p *Parser) parsePrimary() (ast.Node, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.NumberLit:
		p.advance()
		return &ast.Literal{LitKind: ast.LitNumber, Value: tok.Text, Sp: tok.Span}, true
	case token.Minus:
		minus := p.advance()
		num, ok := p.expect(token.NumberLit, diag.SynExpectExpression, "expected number after '-'")
		if !ok {
			return nil, false
		}
		return &ast.Literal{LitKind: ast.LitNumber, Value: "-" + num.Text, Sp: minus.Span.Cover(num.Span)}, true
	case token.StringLit:
		p.advance()
		return &ast.Literal{LitKind: ast.LitString, Value: tok.Text, Sp: tok.Span}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.Literal{LitKind: ast.LitBoolean, Value: tok.Text, Sp: tok.Span}, true
	case token.Ident:
		return p.parseReference()
	case token.LBracket:
		return p.parseList()
	case token.LParen:
		p.advance()
		inner, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"); !ok {
			return nil, false
		}
		return inner, true
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+tok.Describe())
		return nil, false
	}
}

func (p *Parser) parseReference() (ast.Node, bool) {
	first := p.advance()
	ref := &ast.Reference{Parts: []string{first.Text}, Sp: first.Span}
	for p.at(token.Dot) {
		p.advance()
		part, ok := p.expectIdent()
		if !ok {
			return nil, false
		}
		ref.Parts = append(ref.Parts, part.Text)
		ref.Sp = ref.Sp.Cover(part.Span)
	}
	return ref, true
}

// parseList: '[' (Expr (',' Expr)* ','?)? ']'
func (p *Parser) parseList() (ast.Node, bool) {
	open := p.advance()
	list := &ast.List{Sp: open.Span}
	for !p.atAny(token.RBracket, token.EOF) {
		elem, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		list.Elems = append(list.Elems, elem)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closing, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close list")
	if !ok {
		return nil, false
	}
	list.Sp = list.Sp.Cover(closing.Span)
	return list, true
}
