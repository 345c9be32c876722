package token

import (
	"strconv"

	"thetac/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token is one of kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// Significant is false for EOF and Invalid, which carry no source text
// the parser can anchor a later diagnostic to.
func (t Token) Significant() bool { return !t.Is(EOF, Invalid) }

// Describe names the token for "expected X, got Y" messages.
func (t Token) Describe() string {
	switch {
	case t.Kind == EOF:
		return "end of file"
	case t.Kind == StringLit:
		return "string literal"
	case t.Kind == NumberLit:
		return "number " + t.Text
	case t.Is(KwCapsule, KwLink, KwTrue, KwFalse):
		return "keyword " + strconv.Quote(t.Text)
	}
	return strconv.Quote(t.Text)
}
