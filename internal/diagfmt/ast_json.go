package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"thetac/internal/ast"
	"thetac/internal/source"
)

// ASTNodeOutput представляет узел AST для JSON вывода
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Text     string          `json:"text,omitempty"`
	State    string          `json:"state,omitempty"`
	Span     *source.Span    `json:"span,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// BuildASTJSON строит JSON-представление того же дерева, что печатает FormatASTTree.
func BuildASTJSON(root *ast.Source, withSpans bool) ASTNodeOutput {
	if root == nil {
		return ASTNodeOutput{Type: "Nil"}
	}
	return toJSONNode(sourceTree(root), withSpans)
}

// FormatASTJSON выводит AST в JSON формате
func FormatASTJSON(w io.Writer, root *ast.Source, withSpans bool) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildASTJSON(root, withSpans))
}

func toJSONNode(n *treeNode, withSpans bool) ASTNodeOutput {
	typ, text, _ := strings.Cut(n.label, " ")
	out := ASTNodeOutput{Type: typ}
	switch typ {
	case "Link":
		name, state, _ := strings.Cut(text, " ")
		out.Text = name
		out.State = strings.Trim(state, "()")
	case "Literal":
		kind, val, _ := strings.Cut(text, " ")
		out.Kind = kind
		out.Text = val
	default:
		out.Text = text
	}
	if withSpans && n.span != (source.Span{}) {
		sp := n.span
		out.Span = &sp
	}
	for _, c := range n.children {
		out.Children = append(out.Children, toJSONNode(c, withSpans))
	}
	return out
}
