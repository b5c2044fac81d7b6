package highlight

import (
	"context"
	"fmt"

	"github.com/oligo/mdhl/textstyle/decoration"
	"github.com/oligo/mdhl/textstyle/syntax"
)

// Request asks for the decorations of one code region.
type Request struct {
	// ID lets the caller match a Result to its request.
	ID       uint64
	Language string
	Code     string
	// From and To is the rune range of Code in the document.
	From, To int
	// TagFrom is where the region starts including its language tag. It
	// equals From for regions without an inline tag.
	TagFrom int
	// HideTag adds a replace decoration over [TagFrom, From).
	HideTag bool
	// Source is stamped on every decoration built for the request.
	Source any
}

// Result is the outcome of a dispatched request.
type Result struct {
	Request     Request
	Decorations []decoration.Decoration
	Err         error
}

// Fetcher obtains tokens for code regions and converts them to decorations.
type Fetcher struct {
	tokenizer Tokenizer
}

func NewFetcher(tokenizer Tokenizer) *Fetcher {
	return &Fetcher{tokenizer: tokenizer}
}

// Fetch tokenizes the request's code and builds its decorations. A panicking
// tokenizer is reported as ErrTokenizerPanic.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (decos []decoration.Decoration, err error) {
	defer func() {
		if r := recover(); r != nil {
			decos = nil
			err = fmt.Errorf("%w: %v", ErrTokenizerPanic, r)
		}
	}()

	if req.Language == "" {
		return nil, fmt.Errorf("%w: empty language", ErrUnsupportedLanguage)
	}

	tokens, err := f.tokenizer.Tokenize(ctx, req.Code, req.Language)
	if err != nil {
		return nil, err
	}

	decos = Build(req, tokens)
	if len(decos) == 0 {
		return nil, fmt.Errorf("%w: %s region [%d, %d)", ErrNoTokens, req.Language, req.From, req.To)
	}
	return decos, nil
}

// Dispatch runs Fetch on a new goroutine and hands the result to deliver,
// which is called on that goroutine.
func (f *Fetcher) Dispatch(ctx context.Context, req Request, deliver func(Result)) {
	go func() {
		decos, err := f.Fetch(ctx, req)
		deliver(Result{Request: req, Decorations: decos, Err: err})
	}()
}

// Build converts tokens into mark decorations. Token i covers the runes from
// its offset up to the offset of token i+1, the last one up to the end of the
// region. Spans are clipped to the region and empty ones are skipped. When the
// request hides its tag, a replace decoration over the tag comes first, even
// for code without tokens. Build returns nil when it has nothing to add.
func Build(req Request, tokens []syntax.Token) []decoration.Decoration {
	decos := make([]decoration.Decoration, 0, len(tokens)+1)
	if req.HideTag && req.TagFrom < req.From {
		hide := decoration.ReplaceDeco(req.TagFrom, req.From)
		hide.Source = req.Source
		decos = append(decos, hide)
	}

	for i, tok := range tokens {
		from := req.From + tok.Offset
		to := req.To
		if i+1 < len(tokens) {
			to = min(req.From+tokens[i+1].Offset, req.To)
		}
		if from >= to {
			continue
		}

		d := decoration.MarkDeco(from, to, decoration.Style{
			Color:   tok.Color,
			Classes: tok.FontStyle.Classes(),
		})
		d.Source = req.Source
		decos = append(decos, d)
	}

	if len(decos) == 0 {
		return nil
	}
	return decos
}
