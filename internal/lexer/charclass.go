package lexer

import "unicode"

// ASCII character classes; anything >= utf8.RuneSelf goes through the
// unicode predicates below.
const (
	classDigit uint8 = 1 << iota
	classIdentStart
	classSpace
)

var asciiClass = func() (t [128]uint8) {
	for c := '0'; c <= '9'; c++ {
		t[c] = classDigit
	}
	for c := 'a'; c <= 'z'; c++ {
		t[c] = classIdentStart
		t[c-'a'+'A'] = classIdentStart
	}
	t['_'] = classIdentStart
	for _, c := range " \t\r\n" {
		t[c] = classSpace
	}
	return t
}()

func is(b byte, class uint8) bool { return b < 128 && asciiClass[b]&class != 0 }

func digit(b byte) bool      { return is(b, classDigit) }
func space(b byte) bool      { return is(b, classSpace) }
func identStart(b byte) bool { return is(b, classIdentStart) }
func identPart(b byte) bool  { return is(b, classIdentStart|classDigit) }

// Non-ASCII identifiers: letters anywhere, any Unicode digit after the first rune.
func identStartRune(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func identPartRune(r rune) bool  { return identStartRune(r) || unicode.IsDigit(r) }
