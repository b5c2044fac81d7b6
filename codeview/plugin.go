package codeview

import (
	"github.com/oligo/mdhl/document"
	"github.com/oligo/mdhl/markdown"
)

// ViewPlugin is the contract between an editor view and something that
// decorates it.
type ViewPlugin interface {
	// OnChange is called after every transaction of the view.
	OnChange(u Update)
	// OnDestroy is called once when the view goes away.
	OnDestroy()
}

// State is a snapshot of the editor.
type State struct {
	Doc       *document.Document
	Tree      *markdown.Tree
	Selection document.Selection
	// LivePreview is set when the editor renders markdown in place rather
	// than showing raw source.
	LivePreview bool
}

// Update describes one transaction.
type Update struct {
	State State
	// Changes maps positions of the previous document into State.Doc.
	Changes      document.ChangeSet
	DocChanged   bool
	SelectionSet bool
}

// NewState parses text and returns the state of a freshly opened document.
func NewState(text string, sel document.Selection, livePreview bool) State {
	doc := document.New(text)
	return State{
		Doc:         doc,
		Tree:        markdown.NewParser().Parse([]byte(text)),
		Selection:   sel,
		LivePreview: livePreview,
	}
}

// Apply edits the document of s and returns the update to feed an engine.
// The selection is carried through the edits.
func (s State) Apply(edits ...document.Edit) (Update, error) {
	doc, changes, err := s.Doc.Apply(edits...)
	if err != nil {
		return Update{}, err
	}
	return s.update(doc, changes), nil
}

// Replace swaps the whole text of the document, diffing it against the
// current one so unchanged regions keep their decorations.
func (s State) Replace(text string) (Update, error) {
	doc, changes, err := s.Doc.Replace(text)
	if err != nil {
		return Update{}, err
	}
	return s.update(doc, changes), nil
}

// Select moves the selection without touching the document.
func (s State) Select(sel document.Selection) Update {
	s.Selection = sel
	return Update{State: s, SelectionSet: true}
}

func (s State) update(doc *document.Document, changes document.ChangeSet) Update {
	next := State{
		Doc:         doc,
		Tree:        markdown.NewParser().Parse([]byte(doc.Text())),
		Selection:   s.Selection.Map(changes),
		LivePreview: s.LivePreview,
	}
	return Update{
		State:      next,
		Changes:    changes,
		DocChanged: !changes.Empty(),
	}
}
