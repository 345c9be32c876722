package ast

import (
	"testing"

	"thetac/internal/source"
)

func TestWalkDoesNotEnterLinks(t *testing.T) {
	shared := &Source{Capsule: &Capsule{Name: "Math", Defs: []*Assignment{
		{Target: &Identifier{Name: "pi"}, Value: &Literal{LitKind: LitNumber, Value: "3.14"}},
	}}}
	link := &Link{Capsule: "Math", Value: shared, State: LinkResolved}
	root := &Source{
		Links: []*Link{link},
		Capsule: &Capsule{Name: "Main", Defs: []*Assignment{
			{Target: &Identifier{Name: "x", Type: &TypeDeclaration{Name: "Number"}}, Value: &Reference{Parts: []string{"Math", "pi"}}},
		}},
	}

	var got []Kind
	Walk(root, func(n Node) bool {
		got = append(got, n.Kind())
		return true
	})
	want := []Kind{KindSource, KindLink, KindCapsule, KindAssignment, KindIdentifier, KindTypeDeclaration, KindReference}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("node %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinksHandlesCycles(t *testing.T) {
	a := &Link{Capsule: "A", State: LinkResolved}
	b := &Link{Capsule: "B", State: LinkResolved}
	a.Value = &Source{Links: []*Link{b}}
	b.Value = &Source{Links: []*Link{a}}
	root := &Source{Links: []*Link{a, b}}

	links := Links(root)
	if len(links) != 2 || links[0] != a || links[1] != b {
		t.Fatalf("unexpected links %v", links)
	}
}

func TestTypeDeclarationString(t *testing.T) {
	td := &TypeDeclaration{Name: "List", Param: &TypeDeclaration{Name: "List", Param: &TypeDeclaration{Name: "Number"}}}
	if td.String() != "List<List<Number>>" {
		t.Fatalf("got %q", td.String())
	}
	var nilTD *TypeDeclaration
	if nilTD.String() != "" {
		t.Fatal("nil type must render empty")
	}
}

func TestPlaceholderLink(t *testing.T) {
	l := NewPlaceholderLink("Ghost", source.Span{Start: 5, End: 10})
	if l.Resolved() || l.State != LinkUnresolved || l.Kind() != KindLink {
		t.Fatalf("bad placeholder %+v", l)
	}
}
