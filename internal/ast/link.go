package ast

import "thetac/internal/source"

// LinkState tracks resolution of a Link through the link cache.
type LinkState uint8

const (
	LinkPending LinkState = iota
	LinkInProgress
	LinkResolved
	LinkUnresolved
)

func (s LinkState) String() string {
	switch s {
	case LinkPending:
		return "pending"
	case LinkInProgress:
		return "in-progress"
	case LinkResolved:
		return "resolved"
	case LinkUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// Link stands for a whole external capsule. One *Link exists per capsule
// per compilation run and every importer holds that same pointer, so a Link
// is shared, never owned by a single parent.
//
// While the capsule is being built the Link is InProgress and Value is nil;
// importers reaching it through a cycle get this forward reference, and
// Value is filled in when the outer build completes.
type Link struct {
	Capsule string
	Path    string // capsule source file, "" when unresolved
	Value   *Source
	State   LinkState
	Sp      source.Span // span of the first `link` that requested it
}

func (n *Link) Kind() Kind         { return KindLink }
func (n *Link) Span() source.Span { return n.Sp }

// Resolved reports whether Value holds the parsed capsule.
func (n *Link) Resolved() bool {
	return n != nil && n.State == LinkResolved && n.Value != nil
}

// NewPlaceholderLink returns a Link that will never be resolved.
func NewPlaceholderLink(capsule string, sp source.Span) *Link {
	return &Link{Capsule: capsule, State: LinkUnresolved, Sp: sp}
}
