package lexer

import (
	"thetac/internal/diag"
	"thetac/internal/token"
)

// skipTrivia пропускает пробелы, переводы строк и комментарии:
//   - "//" до конца строки
//   - "/-" ... "-/" блочный комментарий (вложенность не поддерживается)
//
// Незакрытый блочный комментарий репортится и возвращается как Invalid.
func (lx *Lexer) skipTrivia() (token.Token, bool) {
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case space(b):
			lx.cursor.Bump()
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case b == '/' && lx.cursor.PeekAt(1) == '-':
			start := lx.cursor.Mark()
			lx.cursor.Off += 2
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.Peek() == '-' && lx.cursor.PeekAt(1) == '/' {
					lx.cursor.Off += 2
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				sp := lx.cursor.SpanFrom(start)
				lx.report(diag.LexUnterminatedBlockComment, sp, "unterminated block comment")
				return token.Token{Kind: token.Invalid, Span: sp, Text: "/-"}, false
			}
		default:
			return token.Token{}, true
		}
	}
	return token.Token{}, true
}
