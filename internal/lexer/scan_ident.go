package lexer

import (
	"unicode/utf8"

	"thetac/internal/diag"
	"thetac/internal/token"
)

// scanIdentOrKeyword сканирует идентификатор и проверяет LookupKeyword.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.cursor.PeekRune()
	if sz == 0 || (r >= utf8.RuneSelf && !identStartRune(r)) {
		lx.cursor.BumpRune()
		sp := lx.cursor.SpanFrom(start)
		text := string(lx.file.Content[sp.Start:sp.End])
		lx.report(diag.LexUnknownChar, sp, "unknown character '"+text+"'")
		return token.Token{Kind: token.Invalid, Span: sp, Text: text}
	}
	lx.cursor.BumpRune()
	for {
		b := lx.cursor.Peek()
		if b < utf8.RuneSelf {
			if !identPart(b) || lx.cursor.EOF() {
				break
			}
			lx.cursor.Bump()
			continue
		}
		r, sz := lx.cursor.PeekRune()
		if sz == 0 || !identPartRune(r) {
			break
		}
		lx.cursor.BumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	text := string(lx.file.Content[sp.Start:sp.End])
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}
