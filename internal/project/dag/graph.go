package dag

import (
	"slices"
)

// Node is one built capsule and the capsules it links.
type Node struct {
	Name  string
	Links []string
}

// Graph points from a dependency to its importers, so a topological
// order lists every capsule after everything it links.
type Graph struct {
	Edges   [][]CapsuleID // Edges[dep] = []importer
	Indeg   []int         // число присутствующих зависимостей
	Present []bool        // капсула реально собрана, а не только упомянута в link
}

func BuildGraph(idx Index, nodes []Node) Graph {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]CapsuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	for _, node := range nodes {
		if id, ok := idx.NameToID[node.Name]; ok {
			g.Present[int(id)] = true
		}
	}

	for _, node := range nodes {
		from, ok := idx.NameToID[node.Name]
		if !ok {
			continue
		}
		seen := make(map[CapsuleID]struct{}, len(node.Links))
		for _, dep := range node.Links {
			depID, ok := idx.NameToID[dep]
			if !ok || depID == from || !g.Present[int(depID)] {
				continue
			}
			if _, dup := seen[depID]; dup {
				continue
			}
			seen[depID] = struct{}{}
			g.Edges[int(depID)] = append(g.Edges[int(depID)], from)
			g.Indeg[int(from)]++
		}
	}
	for i := range g.Edges {
		if len(g.Edges[i]) > 1 {
			slices.Sort(g.Edges[i])
		}
	}
	return g
}
