package lexer

import (
	"thetac/internal/diag"
	"thetac/internal/token"
)

var punct = map[byte]token.Kind{
	'=': token.Assign,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'.': token.Dot,
	',': token.Comma,
	'<': token.Lt,
	'>': token.Gt,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
}

// scanOperatorOrPunct: все операторы Theta односимвольные, поэтому '>>' в
// List<List<Number>> закрывает два уровня без особых случаев.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Bump()
	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if k, ok := punct[ch]; ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	lx.report(diag.LexUnknownChar, sp, "unknown character '"+text+"'")
	return token.Token{Kind: token.Invalid, Span: sp, Text: text}
}
