package ast

import "thetac/internal/source"

// Node is implemented by every AST node.
type Node interface {
	Kind() Kind
	Span() source.Span
}

// Source is the root of one parsed file: its links followed by either a
// capsule declaration or a list of top-level definitions (script files).
type Source struct {
	Path    string
	Links   []*Link
	Capsule *Capsule
	Body    []*Assignment
	Sp      source.Span
}

func (n *Source) Kind() Kind         { return KindSource }
func (n *Source) Span() source.Span { return n.Sp }

// CapsuleName returns the declared capsule name, "" for script files.
func (n *Source) CapsuleName() string {
	if n == nil || n.Capsule == nil {
		return ""
	}
	return n.Capsule.Name
}

// Definitions returns the capsule definitions or, for scripts, the body.
func (n *Source) Definitions() []*Assignment {
	if n == nil {
		return nil
	}
	if n.Capsule != nil {
		return n.Capsule.Defs
	}
	return n.Body
}

type Capsule struct {
	Name     string
	NameSpan source.Span
	Defs     []*Assignment
	Sp       source.Span
}

func (n *Capsule) Kind() Kind         { return KindCapsule }
func (n *Capsule) Span() source.Span { return n.Sp }

// Assignment binds Target to Value: `name<Type> = value`.
type Assignment struct {
	Target *Identifier
	Value  Node
	Sp     source.Span
}

func (n *Assignment) Kind() Kind         { return KindAssignment }
func (n *Assignment) Span() source.Span { return n.Sp }

// Identifier carries its textual name and an optional declared type.
type Identifier struct {
	Name string
	Type *TypeDeclaration
	Sp   source.Span
}

func (n *Identifier) Kind() Kind         { return KindIdentifier }
func (n *Identifier) Span() source.Span { return n.Sp }

// TypeDeclaration is `Name` or `Name<Param>`.
type TypeDeclaration struct {
	Name  string
	Param *TypeDeclaration
	Sp    source.Span
}

func (n *TypeDeclaration) Kind() Kind         { return KindTypeDeclaration }
func (n *TypeDeclaration) Span() source.Span { return n.Sp }

// String renders the type the way it is written in source.
func (n *TypeDeclaration) String() string {
	if n == nil {
		return ""
	}
	if n.Param == nil {
		return n.Name
	}
	return n.Name + "<" + n.Param.String() + ">"
}

type Literal struct {
	LitKind LiteralKind
	Value   string
	Sp      source.Span
}

func (n *Literal) Kind() Kind         { return KindLiteral }
func (n *Literal) Span() source.Span { return n.Sp }

type List struct {
	Elems []Node
	Sp    source.Span
}

func (n *List) Kind() Kind         { return KindList }
func (n *List) Span() source.Span { return n.Sp }

type Binary struct {
	Op    string
	Left  Node
	Right Node
	Sp    source.Span
}

func (n *Binary) Kind() Kind         { return KindBinary }
func (n *Binary) Span() source.Span { return n.Sp }

// Reference is a plain or dotted name used as a value: `x`, `Math.pi`.
type Reference struct {
	Parts []string
	Sp    source.Span
}

func (n *Reference) Kind() Kind         { return KindReference }
func (n *Reference) Span() source.Span { return n.Sp }
