package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"thetac/internal/ast"
	"thetac/internal/source"
)

// treeNode: промежуточное дерево для печати
type treeNode struct {
	label    string
	span     source.Span
	children []*treeNode
}

// FormatASTTree печатает AST в виде дерева:
//
//	Source capsule Demo
//	├─ Link Util (resolved)
//	└─ Capsule Demo
//	   └─ Assignment
//	      ├─ Identifier name<String>
//	      └─ Literal String "demo"
//
// Пути файлов не печатаются. Связи печатаются по имени, без обхода
// Link.Value: граф капсул может быть циклическим.
func FormatASTTree(w io.Writer, fs *source.FileSet, root *ast.Source, withSpans bool) error {
	if root == nil {
		_, err := fmt.Fprintln(w, "<nil>")
		return err
	}
	var b strings.Builder
	node := sourceTree(root)
	writeTreeLine(&b, fs, node, withSpans)
	writeTreeChildren(&b, fs, node.children, "", withSpans)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTreeChildren(b *strings.Builder, fs *source.FileSet, children []*treeNode, prefix string, withSpans bool) {
	for i, child := range children {
		last := i == len(children)-1
		if last {
			b.WriteString(prefix + "└─ ")
		} else {
			b.WriteString(prefix + "├─ ")
		}
		writeTreeLine(b, fs, child, withSpans)
		next := prefix + "│  "
		if last {
			next = prefix + "   "
		}
		writeTreeChildren(b, fs, child.children, next, withSpans)
	}
}

func writeTreeLine(b *strings.Builder, fs *source.FileSet, n *treeNode, withSpans bool) {
	b.WriteString(n.label)
	if withSpans && fs != nil && fs.Get(n.span.File) != nil {
		start, end := fs.Resolve(n.span)
		fmt.Fprintf(b, " @ %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	b.WriteByte('\n')
}

func sourceTree(src *ast.Source) *treeNode {
	label := "Source"
	if name := src.CapsuleName(); name != "" {
		label += " capsule " + name
	} else {
		label += " script"
	}
	n := &treeNode{label: label, span: src.Sp}
	for _, l := range src.Links {
		n.children = append(n.children, linkTree(l))
	}
	if src.Capsule != nil {
		c := &treeNode{label: "Capsule " + src.Capsule.Name, span: src.Capsule.Sp}
		for _, def := range src.Capsule.Defs {
			c.children = append(c.children, assignmentTree(def))
		}
		n.children = append(n.children, c)
		return n
	}
	for _, def := range src.Body {
		n.children = append(n.children, assignmentTree(def))
	}
	return n
}

func linkTree(l *ast.Link) *treeNode {
	if l == nil {
		return &treeNode{label: "Link <nil>"}
	}
	return &treeNode{label: fmt.Sprintf("Link %s (%s)", l.Capsule, l.State), span: l.Sp}
}

func assignmentTree(a *ast.Assignment) *treeNode {
	n := &treeNode{label: "Assignment", span: a.Sp}
	if a.Target != nil {
		label := "Identifier " + a.Target.Name
		if a.Target.Type != nil {
			label += "<" + a.Target.Type.String() + ">"
		}
		n.children = append(n.children, &treeNode{label: label, span: a.Target.Sp})
	}
	if a.Value != nil {
		n.children = append(n.children, exprTree(a.Value))
	}
	return n
}

func exprTree(e ast.Node) *treeNode {
	switch v := e.(type) {
	case *ast.Literal:
		val := v.Value
		if v.LitKind == ast.LitString {
			val = strconv.Quote(val)
		}
		return &treeNode{label: fmt.Sprintf("Literal %s %s", v.LitKind, val), span: v.Sp}
	case *ast.Reference:
		return &treeNode{label: "Reference " + strings.Join(v.Parts, "."), span: v.Sp}
	case *ast.List:
		n := &treeNode{label: fmt.Sprintf("List [%d]", len(v.Elems)), span: v.Sp}
		for _, el := range v.Elems {
			n.children = append(n.children, exprTree(el))
		}
		return n
	case *ast.Binary:
		n := &treeNode{label: "BinaryOperation " + v.Op, span: v.Sp}
		n.children = append(n.children, exprTree(v.Left), exprTree(v.Right))
		return n
	case nil:
		return &treeNode{label: "<nil>"}
	default:
		return &treeNode{label: e.Kind().String(), span: e.Span()}
	}
}
