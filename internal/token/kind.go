package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token; the lexer has already reported it.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	NumberLit
	StringLit

	KwCapsule // capsule
	KwLink    // link
	KwTrue    // true
	KwFalse   // false

	Assign   // =
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /
	Dot      // .
	Comma    // ,
	Lt       // <
	Gt       // >
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	LBracket // [
	RBracket // ]
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	NumberLit: "NumberLit",
	StringLit: "StringLit",
	KwCapsule: "KwCapsule",
	KwLink:    "KwLink",
	KwTrue:    "KwTrue",
	KwFalse:   "KwFalse",
	Assign:    "Assign",
	Plus:      "Plus",
	Minus:     "Minus",
	Star:      "Star",
	Slash:     "Slash",
	Dot:       "Dot",
	Comma:     "Comma",
	Lt:        "Lt",
	Gt:        "Gt",
	LParen:    "LParen",
	RParen:    "RParen",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	LBracket:  "LBracket",
	RBracket:  "RBracket",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}
