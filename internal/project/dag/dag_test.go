package dag

import (
	"slices"
	"testing"
)

func TestBuildIndexIncludesLinks(t *testing.T) {
	idx := BuildIndex([]Node{
		{Name: "App", Links: []string{"Math", "Util"}},
		{Name: "Util"},
	})
	want := []string{"App", "Math", "Util"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("NameToID[%q] = %v, want %d", name, id, i)
		}
	}
}

func TestToposortDependenciesFirst(t *testing.T) {
	nodes := []Node{
		{Name: "App", Links: []string{"Net", "Util"}},
		{Name: "Net", Links: []string{"Util"}},
		{Name: "Util"},
	}
	idx := BuildIndex(nodes)
	topo := ToposortKahn(BuildGraph(idx, nodes))
	if topo.Cyclic {
		t.Fatal("unexpected cycle")
	}
	if got, want := idx.Names(topo.Order), []string{"Util", "Net", "App"}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestToposortIgnoresMissingAndSelf(t *testing.T) {
	order, cycles := Order([]Node{
		{Name: "A", Links: []string{"A", "Ghost"}},
		{Name: "B", Links: []string{"A", "A"}},
	})
	if len(cycles) != 0 {
		t.Fatalf("cycles = %v", cycles)
	}
	if want := []string{"A", "B"}; !slices.Equal(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestToposortReportsCycle(t *testing.T) {
	order, cycles := Order([]Node{
		{Name: "Main", Links: []string{"A"}},
		{Name: "A", Links: []string{"B"}},
		{Name: "B", Links: []string{"A"}},
		{Name: "Leaf"},
	})
	// Main зависит от цикла, поэтому тоже не сортируется
	if want := []string{"A", "B", "Main"}; !slices.Equal(cycles, want) {
		t.Fatalf("cycles = %v, want %v", cycles, want)
	}
	if want := []string{"Leaf", "A", "B", "Main"}; !slices.Equal(order, want) {
		t.Fatalf("order = %v", order)
	}
}
