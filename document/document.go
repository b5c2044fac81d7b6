// Package document holds the text snapshot a host editor hands to the
// highlighting engine, together with the edits that move it from one
// revision to the next.
package document

import (
	"errors"
	"fmt"
)

var ErrInvalidEdit = errors.New("edit out of range")

// Document is an immutable snapshot of a text buffer. All offsets are rune
// offsets. Applying edits yields a new Document with a higher revision, so a
// snapshot taken before an asynchronous operation stays valid for comparison.
type Document struct {
	runes    []rune
	revision uint64
}

func New(text string) *Document {
	return &Document{runes: []rune(text)}
}

// Revision increases by one every time edits are applied.
func (d *Document) Revision() uint64 {
	return d.revision
}

// Len returns the length of the document in runes.
func (d *Document) Len() int {
	return len(d.runes)
}

func (d *Document) Text() string {
	return string(d.runes)
}

// Slice returns the text between rune offsets from and to. Out of range
// offsets are clamped to the document.
func (d *Document) Slice(from, to int) string {
	from = clamp(from, 0, len(d.runes))
	to = clamp(to, 0, len(d.runes))
	if from >= to {
		return ""
	}

	return string(d.runes[from:to])
}

// Apply applies edits in order, each one expressed in the coordinates left by
// the previous edit, and returns the resulting document with the change set
// that maps positions of d into it.
func (d *Document) Apply(edits ...Edit) (*Document, ChangeSet, error) {
	if len(edits) == 0 {
		return d, nil, nil
	}

	runes := make([]rune, len(d.runes))
	copy(runes, d.runes)

	for i, e := range edits {
		if e.From < 0 || e.From > e.To || e.To > len(runes) {
			return nil, nil, fmt.Errorf("edit %d [%d, %d) on length %d: %w", i, e.From, e.To, len(runes), ErrInvalidEdit)
		}

		inserted := []rune(e.Text)
		next := make([]rune, 0, len(runes)-(e.To-e.From)+len(inserted))
		next = append(next, runes[:e.From]...)
		next = append(next, inserted...)
		next = append(next, runes[e.To:]...)
		runes = next
	}

	return &Document{runes: runes, revision: d.revision + 1}, ChangeSet(edits), nil
}

// Replace swaps the whole text for text, describing the difference as a
// minimal change set.
func (d *Document) Replace(text string) (*Document, ChangeSet, error) {
	return d.Apply(Diff(d.Text(), text)...)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
