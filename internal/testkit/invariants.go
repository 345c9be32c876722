package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"thetac/internal/ast"
	"thetac/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed file:
// 1) src.Sp points into sf and stays within content bounds
// 2) every owned node span is non-empty and fully contained in src.Sp
// 3) src.Sp covers the union of top-level item spans (if any items exist)
//
// Links resolved by another importer carry that importer's span and are skipped.
func CheckSpanInvariants(src *ast.Source, sf *source.File) error {
	if src == nil || sf == nil {
		return fmt.Errorf("nil source or file")
	}
	if src.Sp.File != sf.ID {
		return fmt.Errorf("source span points to different file id: got=%d want=%d", src.Sp.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if src.Sp.End > lenContent {
		return fmt.Errorf("source span end beyond content: %d > %d", src.Sp.End, lenContent)
	}

	var union source.Span
	var haveItem bool
	cover := func(sp source.Span) {
		if !haveItem {
			union, haveItem = sp, true
			return
		}
		union = union.Cover(sp)
	}
	for _, l := range src.Links {
		if l != nil && l.Sp.File == sf.ID {
			cover(l.Sp)
		}
	}
	if src.Capsule != nil {
		cover(src.Capsule.Sp)
	}
	for _, a := range src.Body {
		cover(a.Sp)
	}
	if !haveItem {
		return nil
	}
	if src.Sp.Empty() {
		return fmt.Errorf("source span is empty: %v", src.Sp)
	}

	var walkErr error
	ast.Walk(src, func(n ast.Node) bool {
		if walkErr != nil {
			return false
		}
		if _, ok := n.(*ast.Source); ok {
			return true
		}
		sp := n.Span()
		if l, ok := n.(*ast.Link); ok && l.Sp.File != sf.ID {
			return false
		}
		switch {
		case sp.Empty():
			walkErr = fmt.Errorf("empty %s span: %v", n.Kind(), sp)
		case sp.File != sf.ID:
			walkErr = fmt.Errorf("%s span file mismatch: got=%d want=%d", n.Kind(), sp.File, sf.ID)
		case !src.Sp.Contains(sp):
			walkErr = fmt.Errorf("%s span %v is outside source span %v", n.Kind(), sp, src.Sp)
		}
		return walkErr == nil
	})
	if walkErr != nil {
		return walkErr
	}

	if !src.Sp.Contains(union) {
		return fmt.Errorf("source span %v does not cover union of items %v", src.Sp, union)
	}
	return nil
}
