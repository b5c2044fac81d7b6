package markdown

import (
	"bytes"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Parser turns markdown source into a Tree using goldmark for block and
// inline structure.
type Parser struct {
	md goldmark.Markdown
}

// NewParser creates a parser for GitHub flavored markdown.
func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Parse builds the syntax tree of src. Node offsets are rune offsets.
func (p *Parser) Parse(src []byte) *Tree {
	b := &treeBuilder{
		src:   src,
		runes: newRuneIndex(src),
	}
	b.root = &Node{From: 0, To: b.runes[len(src)], Type: TypeDocument}

	doc := p.md.Parser().Parse(text.NewReader(src))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			b.fencedCodeBlock(node)
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			b.codeSpan(node)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return &Tree{Root: b.root}
}

type treeBuilder struct {
	src   []byte
	runes []int
	root  *Node
}

func (b *treeBuilder) node(from, to int, typ string) *Node {
	return &Node{From: b.runes[from], To: b.runes[to], Type: typ}
}

// fencedCodeBlock emits the opening fence line, one node per content line and
// the closing fence line when the block is closed. Blocks without content are
// left out as there is nothing to highlight in them.
func (b *treeBuilder) fencedCodeBlock(block *ast.FencedCodeBlock) {
	lines := block.Lines()
	if lines.Len() == 0 {
		return
	}

	first := lines.At(0)
	start := lineStart(b.src, first.Start)
	if start == 0 {
		return
	}

	openStart := lineStart(b.src, start-1)
	openEnd := trimEOL(b.src, openStart, start-1)
	fenceAt := bytes.IndexAny(b.src[openStart:openEnd], "`~")
	if fenceAt < 0 {
		return
	}
	fenceAt += openStart
	fenceChar := b.src[fenceAt]
	fenceLen := runLength(b.src, fenceAt, fenceChar)

	begin := b.root.append(b.node(fenceAt, openEnd, TypeCodeBlockBegin))
	begin.append(b.node(fenceAt, fenceAt+fenceLen, TypeCodeFence))

	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.root.append(b.node(seg.Start, trimEOL(b.src, seg.Start, seg.Stop), TypeCodeBlockLine))
	}

	last := lines.At(lines.Len() - 1)
	closeStart := last.Stop
	if closeStart >= len(b.src) || closeStart == 0 || b.src[closeStart-1] != '\n' {
		return
	}
	closeEnd := lineEnd(b.src, closeStart)
	at, ok := closingFence(b.src[closeStart:closeEnd], fenceChar, fenceLen)
	if !ok {
		return
	}
	at += closeStart
	end := b.root.append(b.node(at, trimEOL(b.src, at, closeEnd), TypeCodeBlockEnd))
	end.append(b.node(at, at+runLength(b.src, at, fenceChar), TypeCodeFence))
}

// codeSpan emits the backtick runs as formatting nodes around the content node.
func (b *treeBuilder) codeSpan(span *ast.CodeSpan) {
	from, to := -1, -1
	for child := span.FirstChild(); child != nil; child = child.NextSibling() {
		t, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		if from < 0 || t.Segment.Start < from {
			from = t.Segment.Start
		}
		if t.Segment.Stop > to {
			to = t.Segment.Stop
		}
	}
	if from < 0 || from >= to {
		return
	}

	open := from
	for open > 0 && b.src[open-1] == '`' {
		open--
	}
	closing := to
	for closing < len(b.src) && b.src[closing] == '`' {
		closing++
	}

	if open < from {
		b.root.append(b.node(open, from, TypeInlineCodeMark))
	}
	b.root.append(b.node(from, to, TypeInlineCode))
	if closing > to {
		b.root.append(b.node(to, closing, TypeInlineCodeMark))
	}
}

// closingFence reports whether line closes a fence opened with n fenceChars,
// returning the offset of the fence in line.
func closingFence(line []byte, fenceChar byte, n int) (int, bool) {
	at := bytes.IndexByte(line, fenceChar)
	if at < 0 || len(bytes.Trim(line[:at], " \t>")) > 0 {
		return 0, false
	}
	run := runLength(line, at, fenceChar)
	if run < n || len(bytes.TrimSpace(line[at+run:])) > 0 {
		return 0, false
	}
	return at, true
}

func runLength(src []byte, at int, c byte) int {
	n := 0
	for at+n < len(src) && src[at+n] == c {
		n++
	}
	return n
}

func lineStart(src []byte, pos int) int {
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(src []byte, pos int) int {
	if i := bytes.IndexByte(src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(src)
}

// trimEOL drops a trailing line break from [from, to) and returns the new end.
func trimEOL(src []byte, from, to int) int {
	for to > from && (src[to-1] == '\n' || src[to-1] == '\r') {
		to--
	}
	return to
}

// newRuneIndex maps every byte offset of src, plus len(src), to a rune offset.
func newRuneIndex(src []byte) []int {
	idx := make([]int, len(src)+1)
	n := 0
	for i := 0; i < len(src); {
		_, size := utf8.DecodeRune(src[i:])
		for j := 0; j < size; j++ {
			idx[i+j] = n
		}
		n++
		i += size
	}
	idx[len(src)] = n
	return idx
}
