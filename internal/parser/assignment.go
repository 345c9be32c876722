package parser

import (
	"thetac/internal/ast"
	"thetac/internal/diag"
	"thetac/internal/token"
)

// parseAssignment: Ident TypeDecl? '=' Expr
func (p *Parser) parseAssignment() (*ast.Assignment, bool) {
	nameTok, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	ident := &ast.Identifier{Name: nameTok.Text, Sp: nameTok.Span}
	if p.at(token.Lt) {
		td, ok := p.parseTypeDeclaration()
		if !ok {
			return nil, false
		}
		ident.Type = td
		ident.Sp = ident.Sp.Cover(td.Sp)
	}
	if _, ok := p.expect(token.Assign, diag.SynExpectAssign, "expected '=' after "+ident.Name); !ok {
		return nil, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return &ast.Assignment{Target: ident, Value: value, Sp: ident.Sp.Cover(value.Span())}, true
}

// parseTypeDeclaration: '<' Ident TypeDecl? '>'
// The leading '<' belongs to the enclosing identifier or type.
func (p *Parser) parseTypeDeclaration() (*ast.TypeDeclaration, bool) {
	open := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		return nil, false
	}
	td := &ast.TypeDeclaration{Name: nameTok.Text, Sp: nameTok.Span}
	if p.at(token.Lt) {
		param, ok := p.parseTypeDeclaration()
		if !ok {
			return nil, false
		}
		td.Param = param
	}
	closing, ok := p.expect(token.Gt, diag.SynUnclosedAngle, "expected '>' to close type "+td.Name)
	if !ok {
		return nil, false
	}
	td.Sp = open.Span.Cover(closing.Span)
	return td, true
}
