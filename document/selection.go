package document

// SelRange is one selection range. From may equal To for a plain cursor.
type SelRange struct {
	From, To int
}

// Selection holds every range selected in the editor.
type Selection struct {
	Ranges []SelRange
}

// Cursor returns a selection made of a single caret at pos.
func Cursor(pos int) Selection {
	return Selection{Ranges: []SelRange{{From: pos, To: pos}}}
}

// Overlaps reports whether any selection range touches [from, to]. Both ends
// are inclusive so a caret sitting right at a boundary counts.
func (s Selection) Overlaps(from, to int) bool {
	for _, r := range s.Ranges {
		lo, hi := r.From, r.To
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo <= to && from <= hi {
			return true
		}
	}
	return false
}

// Map moves the selection through the change set.
func (s Selection) Map(c ChangeSet) Selection {
	if c.Empty() || len(s.Ranges) == 0 {
		return s
	}

	mapped := make([]SelRange, len(s.Ranges))
	for i, r := range s.Ranges {
		mapped[i] = SelRange{From: c.MapPos(r.From, BiasBackward), To: c.MapPos(r.To, BiasForward)}
	}
	return Selection{Ranges: mapped}
}
