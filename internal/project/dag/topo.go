package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []CapsuleID   // зависимости раньше импортёров
	Batches [][]CapsuleID // волны независимых капсул
	Cyclic  bool
	Cycles  []CapsuleID // узлы в цикле и всё, что от него зависит
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := slices.Clone(g.Indeg)

	topo := &Topo{Order: make([]CapsuleID, 0, nodeCount)}

	active := 0
	current := make([]CapsuleID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}

	visited := 0
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		var next []CapsuleID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if visited != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
	}
	return topo
}

// Order is the convenience path: index, graph and sort in one call.
// Capsules stuck in a cycle are appended after the sorted prefix in name order.
func Order(nodes []Node) (order []string, cycles []string) {
	idx := BuildIndex(nodes)
	topo := ToposortKahn(BuildGraph(idx, nodes))
	order = idx.Names(topo.Order)
	if topo.Cyclic {
		cycles = idx.Names(topo.Cycles)
		order = append(order, cycles...)
	}
	return order, cycles
}

func mustID(i int) CapsuleID {
	id, err := safecast.Conv[CapsuleID](i)
	if err != nil {
		panic(fmt.Errorf("capsule id overflow: %w", err))
	}
	return id
}
