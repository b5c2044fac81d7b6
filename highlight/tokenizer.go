// Package highlight turns code into styled tokens and tokens into decorations.
package highlight

import (
	"context"
	"errors"

	"github.com/oligo/mdhl/textstyle/syntax"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrNoTokens            = errors.New("tokenizer returned no tokens")
	ErrTokenizerPanic      = errors.New("tokenizer panicked")
	ErrUnknownTheme        = errors.New("unknown theme")
)

// Tokenizer splits code of a language into styled tokens. Token offsets are
// rune offsets relative to the start of code, in ascending order.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokenize(ctx context.Context, code, lang string) ([]syntax.Token, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(ctx context.Context, code, lang string) ([]syntax.Token, error)

func (f TokenizerFunc) Tokenize(ctx context.Context, code, lang string) ([]syntax.Token, error) {
	return f(ctx, code, lang)
}
