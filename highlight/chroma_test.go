package highlight

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oligo/mdhl/textstyle/syntax"
)

func newTokenizer(t *testing.T, disabled ...string) *ChromaTokenizer {
	t.Helper()
	tk, err := NewChromaTokenizer(ChromaOptions{Theme: "github", DisabledLanguages: disabled})
	require.NoError(t, err)
	return tk
}

func joined(tokens []syntax.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Content)
	}
	return sb.String()
}

func TestChromaTokenize(t *testing.T) {
	tk := newTokenizer(t)
	code := "def greet(name):\n    return \"héllo \" + name"

	tokens, err := tk.Tokenize(context.Background(), code, "python")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	assert.True(t, strings.HasPrefix(joined(tokens), code))

	offset := 0
	colored := false
	for _, tok := range tokens {
		assert.Equal(t, offset, tok.Offset)
		offset = tok.End()
		colored = colored || tok.Color != ""
	}
	assert.True(t, colored, "expected at least one colored token")
}

func TestChromaAliases(t *testing.T) {
	tk := newTokenizer(t)

	for _, lang := range []string{"js", "JavaScript", "py", "golang", "sh", "yml"} {
		assert.True(t, tk.Supports(lang), lang)
	}
	assert.False(t, tk.Supports(""))
	assert.False(t, tk.Supports("no-such-language-xyz"))
}

func TestChromaDisabledLanguages(t *testing.T) {
	tk := newTokenizer(t, "Python", "mermaid")

	_, err := tk.Tokenize(context.Background(), "print(1)", "py")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	_, err = tk.Tokenize(context.Background(), "graph TD", "mermaid")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = tk.Tokenize(context.Background(), "const a = 1;", "js")
	assert.NoError(t, err)
}

func TestChromaCache(t *testing.T) {
	tk := newTokenizer(t)
	ctx := context.Background()

	first, err := tk.Tokenize(ctx, "x := 1", "go")
	require.NoError(t, err)
	second, err := tk.Tokenize(ctx, "x := 1", "golang")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	tk.Flush()
	third, err := tk.Tokenize(ctx, "x := 1", "go")
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestChromaSetTheme(t *testing.T) {
	tk := newTokenizer(t)
	ctx := context.Background()

	before, err := tk.Tokenize(ctx, "func main() {}", "go")
	require.NoError(t, err)

	require.NoError(t, tk.SetTheme("monokai"))
	assert.Equal(t, "monokai", tk.Theme())
	after, err := tk.Tokenize(ctx, "func main() {}", "go")
	require.NoError(t, err)

	require.Equal(t, len(before), len(after))
	assert.NotEqual(t, before, after)

	assert.ErrorIs(t, tk.SetTheme("no-such-theme"), ErrUnknownTheme)
	assert.Equal(t, "monokai", tk.Theme())
}

func TestChromaCancelled(t *testing.T) {
	tk := newTokenizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tk.Tokenize(ctx, "x", "go")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChromaUnknownTheme(t *testing.T) {
	_, err := NewChromaTokenizer(ChromaOptions{Theme: "no-such-theme"})
	assert.ErrorIs(t, err, ErrUnknownTheme)
	assert.Contains(t, Themes(), "github")
	assert.True(t, HasTheme("GitHub"))
	assert.False(t, HasTheme("no-such-theme"))
	assert.NotEmpty(t, Languages())
}
