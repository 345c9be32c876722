package emit

import (
	"thetac/internal/ast"
)

// SchemaVersion: увеличивать при любом изменении формата Artifact
const SchemaVersion uint16 = 1

// Magic opens every artifact.
const Magic = "THETA"

// Artifact is the decoded form of an emitted file: a header and one record
// per capsule, dependencies before importers. Links are stored by capsule
// name, so a cyclic link graph never turns into a cyclic structure here.
type Artifact struct {
	Magic    string          `msgpack:"magic"`
	Schema   uint16          `msgpack:"schema"`
	Compiler string          `msgpack:"compiler"`
	Entry    string          `msgpack:"entry"`
	Root     EntryRecord     `msgpack:"root"`
	Capsules []CapsuleRecord `msgpack:"capsules"`
}

// EntryRecord is the entry file itself. It may or may not declare a capsule.
type EntryRecord struct {
	Path    string      `msgpack:"path"`
	Capsule string      `msgpack:"capsule,omitempty"`
	Links   []string    `msgpack:"links,omitempty"`
	Defs    []DefRecord `msgpack:"defs,omitempty"`
}

type CapsuleRecord struct {
	Name   string      `msgpack:"name"`
	Path   string      `msgpack:"path"`
	Digest [32]byte    `msgpack:"digest"`
	Links  []string    `msgpack:"links,omitempty"`
	Defs   []DefRecord `msgpack:"defs,omitempty"`
}

type DefRecord struct {
	Name  string     `msgpack:"name"`
	Type  string     `msgpack:"type,omitempty"`
	Value ExprRecord `msgpack:"value"`
}

// ExprRecord is a flattened expression node; Kind selects which fields apply.
type ExprRecord struct {
	Kind  string       `msgpack:"kind"`
	Lit   string       `msgpack:"lit,omitempty"` // number|string|boolean
	Value string       `msgpack:"value,omitempty"`
	Op    string       `msgpack:"op,omitempty"`
	Parts []string     `msgpack:"parts,omitempty"`
	Elems []ExprRecord `msgpack:"elems,omitempty"`
	Left  *ExprRecord  `msgpack:"left,omitempty"`
	Right *ExprRecord  `msgpack:"right,omitempty"`
}

// Capsule looks up a record by name.
func (a *Artifact) Capsule(name string) (*CapsuleRecord, bool) {
	for i := range a.Capsules {
		if a.Capsules[i].Name == name {
			return &a.Capsules[i], true
		}
	}
	return nil, false
}

func linkNames(links []*ast.Link) []string {
	if len(links) == 0 {
		return nil
	}
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Capsule)
	}
	return out
}

func defRecords(defs []*ast.Assignment) []DefRecord {
	if len(defs) == 0 {
		return nil
	}
	out := make([]DefRecord, 0, len(defs))
	for _, d := range defs {
		rec := DefRecord{Name: d.Target.Name, Value: exprRecord(d.Value)}
		if d.Target.Type != nil {
			rec.Type = d.Target.Type.String()
		}
		out = append(out, rec)
	}
	return out
}

func exprRecord(n ast.Node) ExprRecord {
	switch n := n.(type) {
	case *ast.Literal:
		return ExprRecord{Kind: "literal", Lit: n.LitKind.String(), Value: n.Value}
	case *ast.Reference:
		return ExprRecord{Kind: "reference", Parts: n.Parts}
	case *ast.List:
		elems := make([]ExprRecord, 0, len(n.Elems))
		for _, e := range n.Elems {
			elems = append(elems, exprRecord(e))
		}
		return ExprRecord{Kind: "list", Elems: elems}
	case *ast.Binary:
		left := exprRecord(n.Left)
		right := exprRecord(n.Right)
		return ExprRecord{Kind: "binary", Op: n.Op, Left: &left, Right: &right}
	default:
		return ExprRecord{Kind: "unknown"}
	}
}
