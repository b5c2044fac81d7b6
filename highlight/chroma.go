package highlight

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/cespare/xxhash/v2"
	"github.com/go-enry/go-enry/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/oligo/mdhl/textstyle/syntax"
)

const (
	DefaultTheme        = "github"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheCleanup = 30 * time.Minute
)

// ChromaOptions configures a ChromaTokenizer.
type ChromaOptions struct {
	// Theme is a chroma style name.
	Theme string
	// DisabledLanguages are never tokenized. Names are matched case
	// insensitively against both the requested name and its canonical name.
	DisabledLanguages []string
	CacheTTL          time.Duration
	CacheCleanup      time.Duration
}

// ChromaTokenizer tokenizes code with chroma lexers and colors tokens with a
// chroma style. Results are cached by theme, language and content.
type ChromaTokenizer struct {
	mu       sync.RWMutex
	theme    string
	style    *chroma.Style
	disabled map[string]bool
	cache    *gocache.Cache
}

func NewChromaTokenizer(opts ChromaOptions) (*ChromaTokenizer, error) {
	if opts.Theme == "" {
		opts.Theme = DefaultTheme
	}
	style, ok := styles.Registry[strings.ToLower(opts.Theme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, opts.Theme)
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.CacheCleanup <= 0 {
		opts.CacheCleanup = DefaultCacheCleanup
	}

	disabled := make(map[string]bool, len(opts.DisabledLanguages))
	for _, lang := range opts.DisabledLanguages {
		disabled[strings.ToLower(strings.TrimSpace(lang))] = true
	}

	return &ChromaTokenizer{
		theme:    strings.ToLower(opts.Theme),
		style:    style,
		disabled: disabled,
		cache:    gocache.New(opts.CacheTTL, opts.CacheCleanup),
	}, nil
}

// Theme returns the name of the chroma style in use.
func (c *ChromaTokenizer) Theme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// SetTheme switches to another chroma style and flushes the results cached
// for the old one. Decorations already built keep their colors until their
// regions are fetched again.
func (c *ChromaTokenizer) SetTheme(name string) error {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	c.mu.Lock()
	changed := c.theme != strings.ToLower(name)
	c.theme = strings.ToLower(name)
	c.style = style
	c.mu.Unlock()

	if changed {
		c.Flush()
	}
	return nil
}

func (c *ChromaTokenizer) current() (string, *chroma.Style) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme, c.style
}

// Supports reports whether lang resolves to an enabled lexer.
func (c *ChromaTokenizer) Supports(lang string) bool {
	return c.lexer(lang) != nil
}

// lexer resolves a fence language to a chroma lexer. Aliases chroma does not
// know are first normalized through linguist's alias table.
func (c *ChromaTokenizer) lexer(lang string) chroma.Lexer {
	name := strings.ToLower(strings.TrimSpace(lang))
	if name == "" || c.disabled[name] {
		return nil
	}

	if canonical, ok := enry.GetLanguageByAlias(name); ok {
		if c.disabled[strings.ToLower(canonical)] {
			return nil
		}
		if l := lexers.Get(canonical); l != nil {
			return l
		}
	}

	l := lexers.Get(name)
	if l != nil && c.disabled[strings.ToLower(l.Config().Name)] {
		return nil
	}
	return l
}

func (c *ChromaTokenizer) Tokenize(ctx context.Context, code, lang string) ([]syntax.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lexer := c.lexer(lang)
	if lexer == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	theme, style := c.current()
	name := lexer.Config().Name
	key := theme + "\x00" + name + "\x00" + strconv.FormatUint(xxhash.Sum64String(code), 16) + ":" + strconv.Itoa(len(code))
	if cached, ok := c.cache.Get(key); ok {
		if tokens, ok := cached.([]syntax.Token); ok {
			logger.Debug("token cache hit", "lang", name, "tokens", len(tokens))
			return tokens, nil
		}
	}

	// LF normalization would shift offsets against the document, so it stays off.
	it, err := chroma.Coalesce(lexer).Tokenise(&chroma.TokeniseOptions{State: "root"}, code)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", name, err)
	}

	var tokens []syntax.Token
	offset := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		n := utf8.RuneCountInString(tok.Value)
		if n == 0 {
			continue
		}

		entry := style.Get(tok.Type)
		t := syntax.Token{
			Content:   tok.Value,
			Offset:    offset,
			FontStyle: fontStyle(entry),
		}
		if entry.Colour.IsSet() {
			t.Color = entry.Colour.String()
		}
		tokens = append(tokens, t)
		offset += n
	}

	c.cache.Set(key, tokens, gocache.DefaultExpiration)
	return tokens, nil
}

// Flush drops every cached result.
func (c *ChromaTokenizer) Flush() {
	c.cache.Flush()
}

func fontStyle(entry chroma.StyleEntry) syntax.FontStyle {
	var s syntax.FontStyle
	if entry.Italic == chroma.Yes {
		s |= syntax.Italic
	}
	if entry.Bold == chroma.Yes {
		s |= syntax.Bold
	}
	if entry.Underline == chroma.Yes {
		s |= syntax.Underline
	}
	return s
}

// Themes lists the available chroma styles.
func Themes() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

// HasTheme reports whether name is a known chroma style.
func HasTheme(name string) bool {
	_, ok := styles.Registry[strings.ToLower(name)]
	return ok
}

// Languages lists the names of the available chroma lexers.
func Languages() []string {
	return lexers.Names(false)
}
