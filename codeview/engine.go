// Package codeview drives code highlighting of a markdown editor view. It
// scans the syntax tree after each transaction, fetches highlights off the
// host goroutine and keeps a decoration store in step with the document.
package codeview

import (
	"context"

	"github.com/oligo/mdhl/document"
	"github.com/oligo/mdhl/highlight"
	"github.com/oligo/mdhl/scan"
	"github.com/oligo/mdhl/textstyle/decoration"
)

const resultBufferSize = 64

type Options struct {
	InlineHighlighting bool
	// Redraw asks the host to repaint. It is called on the host goroutine.
	Redraw func()
	// Wake is called from fetch goroutines when a result is ready to be
	// drained. It must be safe for concurrent use, e.g. a Gio window's
	// Invalidate.
	Wake func()
}

// pass tracks the fetches dispatched by one scan pass.
type pass struct {
	outstanding int
	// dirty is set once the store changed on behalf of the pass.
	dirty bool
}

// fetch is a dispatched request still waiting for its result. Its range is
// kept in current document coordinates.
type fetch struct {
	pass     *pass
	origin   origin
	from, to int
	stale    bool
}

// Engine is a ViewPlugin highlighting fenced code blocks and tagged inline
// code. All methods must be called from the host goroutine.
type Engine struct {
	opts    Options
	scanner *scan.Scanner
	fetcher *highlight.Fetcher
	store   *decoration.DecorationTree
	state   State

	ctx     context.Context
	cancel  context.CancelFunc
	results chan highlight.Result
	pending map[uint64]*fetch
	nextID  uint64

	destroyed bool
}

var _ ViewPlugin = (*Engine)(nil)

// New creates an engine and runs a first pass over state.
func New(tokenizer highlight.Tokenizer, state State, opts Options) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		opts:    opts,
		scanner: scan.New(scan.Options{InlineHighlighting: opts.InlineHighlighting}),
		fetcher: highlight.NewFetcher(tokenizer),
		store:   decoration.NewDecorationTree(),
		state:   state,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan highlight.Result, resultBufferSize),
		pending: make(map[uint64]*fetch),
	}

	e.run(true, false)
	return e
}

// Decorations returns the decoration store. Callers must not modify it.
func (e *Engine) Decorations() *decoration.DecorationTree {
	return e.store
}

// State returns the last state seen by the engine.
func (e *Engine) State() State {
	return e.state
}

// Pending returns the number of fetches waiting for their result.
func (e *Engine) Pending() int {
	return len(e.pending)
}

func (e *Engine) OnChange(u Update) {
	if e.destroyed {
		return
	}

	if !u.Changes.Empty() {
		e.store.MapThroughEdit(u.Changes)
		e.mapPending(u.Changes)
	}
	e.state = u.State

	if u.DocChanged || u.SelectionSet {
		e.run(u.DocChanged, false)
	}
}

// ForceFullRescan drops every decoration and pending fetch and rebuilds the
// highlighting of the whole document.
func (e *Engine) ForceFullRescan() {
	if e.destroyed {
		return
	}

	for _, f := range e.pending {
		f.stale = true
	}
	e.store.Clear()
	e.run(true, true)
}

// SetInlineHighlighting turns highlighting of tagged inline code on or off
// and rescans the document.
func (e *Engine) SetInlineHighlighting(on bool) {
	if e.opts.InlineHighlighting == on {
		return
	}
	e.opts.InlineHighlighting = on
	e.scanner = scan.New(scan.Options{InlineHighlighting: on})
	e.ForceFullRescan()
}

// SetTokenizer replaces the tokenizer, e.g. after the theme or the disabled
// languages changed, and rebuilds the highlighting with it.
func (e *Engine) SetTokenizer(tokenizer highlight.Tokenizer) {
	if e.destroyed {
		return
	}
	e.fetcher = highlight.NewFetcher(tokenizer)
	e.ForceFullRescan()
}

func (e *Engine) OnDestroy() {
	if e.destroyed {
		return
	}

	e.destroyed = true
	e.cancel()
	e.store.Clear()
	clear(e.pending)
}

// Drain applies every result that is ready without blocking and returns how
// many were handled.
func (e *Engine) Drain() int {
	n := 0
	for {
		select {
		case r := <-e.results:
			e.apply(r)
			n++
		default:
			return n
		}
	}
}

// Wait applies results until no fetch is pending or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	for len(e.pending) > 0 {
		select {
		case r := <-e.results:
			e.apply(r)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (e *Engine) run(docChanged, dirty bool) {
	if e.state.Doc == nil || e.state.Tree == nil {
		return
	}

	items, err := e.scanner.Scan(scan.Input{
		Tree:        e.state.Tree,
		Source:      e.state.Doc,
		Selection:   e.state.Selection,
		LivePreview: e.state.LivePreview,
		DocChanged:  docChanged,
	})
	if err != nil {
		logger.Error("scan aborted", "revision", e.state.Doc.Revision(), "error", err)
		return
	}

	p := &pass{dirty: dirty}
	for i := 0; i < len(items); i++ {
		item := items[i]
		from, to := item.Span()

		if item.Op == scan.Remove {
			// a removal immediately redone by an identical insert is a no-op.
			if i+1 < len(items) && e.redundantRemove(item, items[i+1]) {
				i++
				continue
			}
			if e.store.ExistsBetween(from, to) {
				e.store.RemoveBetween(from, to)
				p.dirty = true
			}
			e.supersede(from, to)
			continue
		}

		o := originOf(item)
		if e.holds(from, to, o) || e.fetching(from, to, o) {
			continue
		}
		e.supersede(from, to)
		e.dispatch(item, o, p)
	}

	if p.outstanding == 0 && p.dirty {
		e.redraw()
	}
}

func (e *Engine) redundantRemove(remove, next scan.WorkItem) bool {
	if next.Op != scan.Insert {
		return false
	}
	from, to := remove.Span()
	nfrom, nto := next.Span()
	return from == nfrom && to == nto && e.holds(from, to, originOf(next))
}

// holds reports whether the store covers [from, to) with decorations built
// from o and nothing else.
func (e *Engine) holds(from, to int, o origin) bool {
	decos := e.store.QueryRange(from, to)
	if len(decos) == 0 {
		return false
	}
	for _, d := range decos {
		if d.Source != o {
			return false
		}
	}
	return true
}

func (e *Engine) fetching(from, to int, o origin) bool {
	for _, f := range e.pending {
		if !f.stale && f.from == from && f.to == to && f.origin == o {
			return true
		}
	}
	return false
}

// supersede marks the pending fetches overlapping [from, to) as stale.
func (e *Engine) supersede(from, to int) {
	for _, f := range e.pending {
		if (f.from < to && from < f.to) || (f.from == from && f.to == to) {
			f.stale = true
		}
	}
}

func (e *Engine) mapPending(changes document.ChangeSet) {
	for _, f := range e.pending {
		from, to, intact := changes.MapRange(f.from, f.to)
		if !intact {
			f.stale = true
		}
		f.from, f.to = from, to
	}
}

func (e *Engine) dispatch(item scan.WorkItem, o origin, p *pass) {
	e.nextID++
	id := e.nextID

	from, to := item.Span()
	e.pending[id] = &fetch{pass: p, origin: o, from: from, to: to}
	p.outstanding++

	req := highlight.Request{
		ID:       id,
		Language: item.Region.Language,
		Code:     item.Region.Content,
		From:     item.Region.From,
		To:       item.Region.To,
		TagFrom:  item.TagFrom,
		HideTag:  item.HideLang,
		Source:   o,
	}
	logger.Debug("dispatching highlight", "id", id, "lang", req.Language, "from", req.From, "to", req.To)
	e.fetcher.Dispatch(e.ctx, req, e.deliver)
}

// deliver runs on fetch goroutines.
func (e *Engine) deliver(r highlight.Result) {
	select {
	case e.results <- r:
		if e.opts.Wake != nil {
			e.opts.Wake()
		}
	case <-e.ctx.Done():
	}
}

func (e *Engine) apply(r highlight.Result) {
	f, ok := e.pending[r.Request.ID]
	if !ok {
		return
	}
	delete(e.pending, r.Request.ID)
	f.pass.outstanding--

	req := r.Request
	switch {
	case f.stale:
		logger.Debug("discarding stale highlight", "id", req.ID, "lang", req.Language)
	case r.Err != nil:
		logger.Warn("highlight failed", "lang", req.Language, "from", req.TagFrom, "to", req.To, "error", r.Err)
	case f.to-f.from != req.To-req.TagFrom:
		logger.Debug("discarding resized highlight", "id", req.ID)
	default:
		shift := f.from - req.TagFrom
		decos := make([]decoration.Decoration, len(r.Decorations))
		for i, d := range r.Decorations {
			d.Start += shift
			d.End += shift
			decos[i] = d
		}

		e.store.RemoveBetween(f.from, f.to)
		e.store.AddAll(decos...)
		f.pass.dirty = true
	}

	if f.pass.outstanding == 0 && f.pass.dirty {
		e.redraw()
	}
}

func (e *Engine) redraw() {
	if e.opts.Redraw != nil {
		e.opts.Redraw()
	}
}
