package lexer

import (
	"thetac/internal/diag"
	"thetac/internal/token"
)

// scanNumber: DEC+ ('.' DEC+)?
// "1." без цифр после точки: это число 1 и отдельный Dot.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for digit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && digit(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		for digit(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if identStart(lx.cursor.Peek()) {
		// 12abc: съедаем хвост целиком, чтобы репорт был один
		for identPart(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		sp := lx.cursor.SpanFrom(start)
		text := string(lx.file.Content[sp.Start:sp.End])
		lx.report(diag.LexBadNumber, sp, "malformed number literal '"+text+"'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.NumberLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
