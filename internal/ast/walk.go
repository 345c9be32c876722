package ast

// Walk visits n and its owned children depth-first in source order.
// Links are visited but never entered: their Value belongs to the link
// cache, not to the importer. Returning false from fn skips n's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || isNilNode(n) || !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Source:
		for _, l := range v.Links {
			Walk(l, fn)
		}
		if v.Capsule != nil {
			Walk(v.Capsule, fn)
		}
		for _, a := range v.Body {
			Walk(a, fn)
		}
	case *Capsule:
		for _, a := range v.Defs {
			Walk(a, fn)
		}
	case *Assignment:
		if v.Target != nil {
			Walk(v.Target, fn)
		}
		Walk(v.Value, fn)
	case *Identifier:
		if v.Type != nil {
			Walk(v.Type, fn)
		}
	case *TypeDeclaration:
		if v.Param != nil {
			Walk(v.Param, fn)
		}
	case *List:
		for _, e := range v.Elems {
			Walk(e, fn)
		}
	case *Binary:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	}
}

// isNilNode guards against typed nil pointers stored in a Node.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Source:
		return v == nil
	case *Capsule:
		return v == nil
	case *Link:
		return v == nil
	case *Assignment:
		return v == nil
	case *Identifier:
		return v == nil
	case *TypeDeclaration:
		return v == nil
	case *Literal:
		return v == nil
	case *List:
		return v == nil
	case *Binary:
		return v == nil
	case *Reference:
		return v == nil
	}
	return false
}

// Links returns every Link reachable from root through linked capsules,
// each exactly once, in first-visit order. Cycles are safe.
func Links(root *Source) []*Link {
	var out []*Link
	seen := make(map[*Link]bool)
	var visit func(*Source)
	visit = func(src *Source) {
		if src == nil {
			return
		}
		for _, l := range src.Links {
			if l == nil || seen[l] {
				continue
			}
			seen[l] = true
			out = append(out, l)
			visit(l.Value)
		}
	}
	visit(root)
	return out
}
