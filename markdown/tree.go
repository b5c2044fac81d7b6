// Package markdown builds the syntax tree the highlighting engine walks. Node
// type names follow the HyperMD convention used by markdown editors: a name is
// a '_' separated list of tags, and Classify maps it onto a closed set of
// categories.
package markdown

// Node type names produced by Parser.
const (
	TypeDocument       = "Document"
	TypeInlineCode     = "inline-code"
	TypeInlineCodeMark = "formatting_formatting-code_inline-code"
	TypeCodeBlockBegin = "HyperMD-codeblock_HyperMD-codeblock-begin"
	TypeCodeBlockLine  = "HyperMD-codeblock_HyperMD-codeblock-bg"
	TypeCodeBlockEnd   = "HyperMD-codeblock_HyperMD-codeblock-end"
	TypeCodeFence      = "formatting_formatting-code-block"
)

// Node is a syntax node covering the rune range [From, To) of the document.
type Node struct {
	From, To int
	Type     string
	Children []*Node
}

func (n *Node) append(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Tree is the syntax tree of one document revision.
type Tree struct {
	Root *Node
}

// Iterate walks the tree depth-first in document order. Returning false from
// enter skips the children of that node.
func (t *Tree) Iterate(enter func(n *Node) bool) {
	if t == nil || t.Root == nil {
		return
	}
	iterate(t.Root, enter)
}

func iterate(n *Node, enter func(n *Node) bool) {
	if !enter(n) {
		return
	}
	for _, child := range n.Children {
		iterate(child, enter)
	}
}
