package document

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff computes the change set turning oldText into newText.
func Diff(oldText, newText string) ChangeSet {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var changes ChangeSet
	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			changes = append(changes, Edit{From: pos, To: pos + n})
		case diffmatchpatch.DiffInsert:
			changes = append(changes, Edit{From: pos, To: pos, Text: d.Text})
			pos += n
		}
	}

	return changes
}
