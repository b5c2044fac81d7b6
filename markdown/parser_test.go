package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flatNode struct {
	Type string
	Text string
}

func flatten(t *testing.T, src string) []flatNode {
	t.Helper()
	tree := NewParser().Parse([]byte(src))
	runes := []rune(src)

	var nodes []flatNode
	tree.Iterate(func(n *Node) bool {
		require.LessOrEqual(t, n.From, n.To)
		nodes = append(nodes, flatNode{Type: n.Type, Text: string(runes[n.From:n.To])})
		return true
	})
	return nodes
}

func TestParseFencedBlock(t *testing.T) {
	nodes := flatten(t, "# Title\n\n```python\nprint(1)\nprint(2)\n```\n")

	assert.Equal(t, []flatNode{
		{TypeDocument, "# Title\n\n```python\nprint(1)\nprint(2)\n```\n"},
		{TypeCodeBlockBegin, "```python"},
		{TypeCodeFence, "```"},
		{TypeCodeBlockLine, "print(1)"},
		{TypeCodeBlockLine, "print(2)"},
		{TypeCodeBlockEnd, "```"},
		{TypeCodeFence, "```"},
	}, nodes)
}

func TestParseUnclosedFence(t *testing.T) {
	nodes := flatten(t, "~~~go\nfunc main() {}\n")

	require.Len(t, nodes, 4)
	assert.Equal(t, TypeCodeBlockBegin, nodes[1].Type)
	assert.Equal(t, "~~~go", nodes[1].Text)
	assert.Equal(t, TypeCodeBlockLine, nodes[3].Type)
}

func TestParseEmptyFence(t *testing.T) {
	nodes := flatten(t, "```go\n```\n")

	assert.Len(t, nodes, 1)
}

func TestParseInlineCode(t *testing.T) {
	nodes := flatten(t, "Use `{js} const a = 1;` here, and `plain`.")

	assert.Equal(t, []flatNode{
		{TypeDocument, "Use `{js} const a = 1;` here, and `plain`."},
		{TypeInlineCodeMark, "`"},
		{TypeInlineCode, "{js} const a = 1;"},
		{TypeInlineCodeMark, "`"},
		{TypeInlineCodeMark, "`"},
		{TypeInlineCode, "plain"},
		{TypeInlineCodeMark, "`"},
	}, nodes)
}

func TestParseRuneOffsets(t *testing.T) {
	src := "héllo `wörld`\n\n```go\nx := \"ü\"\n```\n"
	nodes := flatten(t, src)

	var texts []string
	for _, n := range nodes[1:] {
		texts = append(texts, n.Text)
	}
	assert.Contains(t, texts, "wörld")
	assert.Contains(t, texts, "x := \"ü\"")
}

func TestIterateSkipsChildren(t *testing.T) {
	tree := NewParser().Parse([]byte("```go\nx\n```\n"))

	var visited []string
	tree.Iterate(func(n *Node) bool {
		visited = append(visited, n.Type)
		return !Classify(n.Type).Has(CodeBlockBegin)
	})
	assert.Equal(t, []string{TypeDocument, TypeCodeBlockBegin, TypeCodeBlockLine, TypeCodeBlockEnd, TypeCodeFence}, visited)
}

func TestClassify(t *testing.T) {
	testcases := []struct {
		name string
		want Category
	}{
		{"", 0},
		{"paragraph", 0},
		{TypeInlineCode, InlineCode},
		{TypeInlineCodeMark, Formatting | InlineCode},
		{TypeCodeBlockBegin, CodeBlock | CodeBlockBegin},
		{TypeCodeBlockLine, CodeBlock},
		{TypeCodeBlockEnd, CodeBlock | CodeBlockEnd},
		{TypeCodeFence, Formatting},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.want, Classify(tc.name), tc.name)
	}
}
