package dag

import (
	"slices"
)

type CapsuleID uint32

type Index struct {
	NameToID map[string]CapsuleID
	IDToName []string
}

// собрать уникальные имена (и капсулы, и их ссылки), отсортировать, раздать ID по порядку
func BuildIndex(nodes []Node) Index {
	uniq := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.Name != "" {
			uniq[node.Name] = struct{}{}
		}
		for _, dep := range node.Links {
			if dep != "" {
				uniq[dep] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	slices.Sort(names)

	nameToID := make(map[string]CapsuleID, len(names))
	for i, name := range names {
		nameToID[name] = CapsuleID(i)
	}
	return Index{NameToID: nameToID, IDToName: names}
}

// Names maps ids back to capsule names.
func (idx Index) Names(ids []CapsuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}
