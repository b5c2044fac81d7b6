package markdown

import "strings"

// Category is a bit set of the node kinds the scanner cares about.
type Category uint8

const (
	Formatting Category = 1 << iota
	InlineCode
	CodeBlock
	CodeBlockBegin
	CodeBlockEnd
)

var tagCategories = map[string]Category{
	"formatting":              Formatting,
	"inline-code":             InlineCode,
	"HyperMD-codeblock":       CodeBlock,
	"HyperMD-codeblock-begin": CodeBlockBegin,
	"HyperMD-codeblock-end":   CodeBlockEnd,
}

func (c Category) Has(mask Category) bool {
	return c&mask > 0
}

// Classify maps a node type name onto its categories. Tags not listed are
// ignored, and an empty name has no category.
func Classify(typeName string) Category {
	if typeName == "" {
		return 0
	}

	var c Category
	for _, tag := range strings.Split(typeName, "_") {
		c |= tagCategories[tag]
	}
	return c
}
