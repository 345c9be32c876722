package token

import "testing"

func TestKindString(t *testing.T) {
	for k := Invalid; k <= RBracket; k++ {
		if k.String() == "Kind(?)" {
			t.Errorf("kind %d has no name", k)
		}
	}
	if Kind(200).String() != "Kind(?)" {
		t.Error("out-of-range kind must not panic")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"capsule", KwCapsule, true},
		{"link", KwLink, true},
		{"true", KwTrue, true},
		{"Capsule", 0, false},
		{"Number", 0, false},
	}
	for _, tt := range tests {
		got, ok := LookupKeyword(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("LookupKeyword(%q) = %v,%v; want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTokenDescribe(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: EOF}, "end of file"},
		{Token{Kind: StringLit, Text: "hi"}, "string literal"},
		{Token{Kind: NumberLit, Text: "42"}, "number 42"},
		{Token{Kind: KwLink, Text: "link"}, `keyword "link"`},
		{Token{Kind: RBrace, Text: "}"}, `"}"`},
	}
	for _, tt := range tests {
		if got := tt.tok.Describe(); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.tok.Kind, got, tt.want)
		}
	}
	if (Token{Kind: Invalid}).Significant() || !(Token{Kind: Ident}).Significant() {
		t.Error("Significant is wrong for Invalid/Ident")
	}
	if !(Token{Kind: Plus}).Is(Minus, Plus) || (Token{Kind: Plus}).Is() {
		t.Error("Is mismatch")
	}
}
