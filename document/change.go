package document

import "unicode/utf8"

// Bias rules for positions sitting exactly where text is inserted.
const (
	// BiasBackward keeps the position before the inserted text.
	BiasBackward = -1
	// BiasForward pushes the position to the end of the inserted text.
	BiasForward = 1
)

// Edit replaces the runes in [From, To) with Text.
type Edit struct {
	From, To int
	Text     string
}

func (e Edit) insertLen() int {
	return utf8.RuneCountInString(e.Text)
}

// ChangeSet is an ordered list of edits. Each edit is expressed in the
// coordinates produced by the edits before it.
type ChangeSet []Edit

func (c ChangeSet) Empty() bool {
	return len(c) == 0
}

// MapPos maps a position of the old document into the new one. assoc decides
// which side of inserted text the position sticks to: a negative value keeps
// it before, otherwise it moves after. Positions inside a deleted span
// collapse onto the edit.
func (c ChangeSet) MapPos(pos int, assoc int) int {
	for _, e := range c {
		pos = mapPos(e, pos, assoc)
	}
	return pos
}

func mapPos(e Edit, pos int, assoc int) int {
	ins := e.insertLen()

	switch {
	case pos < e.From:
		return pos
	case pos > e.To:
		return pos + ins - (e.To - e.From)
	case pos == e.To && e.To > e.From:
		return e.From + ins
	case assoc < 0:
		return e.From
	default:
		return e.From + ins
	}
}

// MapRange maps [from, to) through the change set. The returned flag is false
// when any edit touched the interior of the range, that is deleted runes in it
// or inserted text strictly inside it. Insertions at either boundary leave the
// range intact.
func (c ChangeSet) MapRange(from, to int) (int, int, bool) {
	intact := true
	for _, e := range c {
		if touches(e, from, to) {
			intact = false
		}
		from = mapPos(e, from, BiasForward)
		to = mapPos(e, to, BiasBackward)
		if to < from {
			to = from
		}
	}

	return from, to, intact
}

func touches(e Edit, from, to int) bool {
	if e.From == e.To {
		return from < e.From && e.From < to
	}
	return e.From < to && from < e.To
}
