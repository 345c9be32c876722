package ast

// Kind tags every AST node.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindSource
	KindCapsule
	KindLink
	KindAssignment
	KindIdentifier
	KindTypeDeclaration
	KindLiteral
	KindList
	KindBinary
	KindReference
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindSource:          "Source",
	KindCapsule:         "Capsule",
	KindLink:            "Link",
	KindAssignment:      "Assignment",
	KindIdentifier:      "Identifier",
	KindTypeDeclaration: "TypeDeclaration",
	KindLiteral:         "Literal",
	KindList:            "List",
	KindBinary:          "BinaryOperation",
	KindReference:       "Reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// LiteralKind distinguishes literal values.
type LiteralKind uint8

const (
	LitNumber LiteralKind = iota + 1
	LitString
	LitBoolean
)

func (k LiteralKind) String() string {
	switch k {
	case LitNumber:
		return "Number"
	case LitString:
		return "String"
	case LitBoolean:
		return "Boolean"
	}
	return "?"
}
