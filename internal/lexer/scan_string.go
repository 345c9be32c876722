package lexer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"thetac/internal/diag"
	"thetac/internal/token"
)

// scanString scans a '...' or "..." literal on a single line.
// Token.Text holds the decoded value in NFC form.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	quote := lx.cursor.Bump()

	var b strings.Builder
	badEscape := false
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			sp := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, sp, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: b.String()}
		}
		ch := lx.cursor.Peek()
		if ch == quote {
			lx.cursor.Bump()
			break
		}
		if ch != '\\' {
			r, _ := lx.cursor.PeekRune()
			b.WriteRune(r)
			lx.cursor.BumpRune()
			continue
		}
		lx.cursor.Bump()
		switch esc := lx.cursor.Bump(); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '\'', '"':
			b.WriteByte(esc)
		default:
			badEscape = true
		}
	}

	sp := lx.cursor.SpanFrom(start)
	if badEscape {
		lx.report(diag.LexBadEscape, sp, "invalid escape sequence in string literal")
		return token.Token{Kind: token.Invalid, Span: sp, Text: b.String()}
	}
	return token.Token{Kind: token.StringLit, Span: sp, Text: norm.NFC.String(b.String())}
}
