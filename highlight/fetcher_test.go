package highlight

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oligo/mdhl/textstyle/decoration"
	"github.com/oligo/mdhl/textstyle/syntax"
)

func staticTokens(tokens ...syntax.Token) Tokenizer {
	return TokenizerFunc(func(context.Context, string, string) ([]syntax.Token, error) {
		return tokens, nil
	})
}

func TestBuild(t *testing.T) {
	req := Request{From: 10, To: 22, TagFrom: 10, Source: "src"}
	tokens := []syntax.Token{
		{Content: "const", Offset: 0, Color: "#ff0000", FontStyle: syntax.Bold},
		{Content: " ", Offset: 5},
		{Content: "a", Offset: 6, Color: "#00ff00", FontStyle: syntax.Italic | syntax.Underline},
		{Content: " = 1;", Offset: 7},
	}

	decos := Build(req, tokens)
	require.Len(t, decos, 4)

	spans := [][2]int{{10, 15}, {15, 16}, {16, 17}, {17, 22}}
	for i, d := range decos {
		assert.Equal(t, decoration.Mark, d.Kind)
		assert.Equal(t, spans[i][0], d.Start)
		assert.Equal(t, spans[i][1], d.End)
		assert.Equal(t, "src", d.Source)
	}
	assert.Equal(t, "#ff0000", decos[0].Style.Color)
	assert.True(t, decos[0].Style.HasClass(syntax.ClassBold))
	assert.Equal(t, []string{syntax.ClassItalic, syntax.ClassUnderline}, decos[2].Style.Classes)
}

func TestBuildHideTag(t *testing.T) {
	req := Request{From: 6, To: 10, TagFrom: 1, HideTag: true}

	decos := Build(req, []syntax.Token{{Content: "x", Offset: 0}})
	require.Len(t, decos, 2)
	assert.Equal(t, decoration.Replace, decos[0].Kind)
	assert.Equal(t, 1, decos[0].Start)
	assert.Equal(t, 6, decos[0].End)
	assert.Equal(t, 6, decos[1].Start)
	assert.Equal(t, 10, decos[1].End)
}

func TestBuildClipsToRegion(t *testing.T) {
	req := Request{From: 0, To: 4, TagFrom: 0}

	// a trailing newline appended by the lexer lies outside the region.
	decos := Build(req, []syntax.Token{{Content: "abcd", Offset: 0}, {Content: "\n", Offset: 4}})
	require.Len(t, decos, 1)
	assert.Equal(t, 4, decos[0].End)

	assert.Nil(t, Build(req, nil))
	assert.Nil(t, Build(Request{From: 3, To: 3, TagFrom: 3, HideTag: true}, nil))
}

func TestHideTagWithoutCode(t *testing.T) {
	// `{js} ` has an empty code region but its tag is still hidden.
	req := Request{Language: "js", From: 5, To: 5, TagFrom: 0, HideTag: true}

	decos, err := NewFetcher(staticTokens(syntax.Token{Content: "", Offset: 0})).Fetch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, decos, 1)
	assert.Equal(t, decoration.Replace, decos[0].Kind)
	assert.Equal(t, 0, decos[0].Start)
	assert.Equal(t, 5, decos[0].End)

	req.HideTag = false
	_, err = NewFetcher(staticTokens()).Fetch(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoTokens)
}

func TestFetchErrors(t *testing.T) {
	ctx := context.Background()
	req := Request{Language: "go", Code: "x", From: 0, To: 1}

	_, err := NewFetcher(staticTokens()).Fetch(ctx, req)
	assert.ErrorIs(t, err, ErrNoTokens)

	boom := errors.New("boom")
	_, err = NewFetcher(TokenizerFunc(func(context.Context, string, string) ([]syntax.Token, error) {
		return nil, boom
	})).Fetch(ctx, req)
	assert.ErrorIs(t, err, boom)

	decos, err := NewFetcher(TokenizerFunc(func(context.Context, string, string) ([]syntax.Token, error) {
		panic("lexer bug")
	})).Fetch(ctx, req)
	assert.ErrorIs(t, err, ErrTokenizerPanic)
	assert.Nil(t, decos)

	_, err = NewFetcher(staticTokens(syntax.Token{Content: "x"})).Fetch(ctx, Request{Code: "x", To: 1})
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestDispatch(t *testing.T) {
	f := NewFetcher(staticTokens(syntax.Token{Content: "x", Color: "#123456"}))
	out := make(chan Result, 1)

	f.Dispatch(context.Background(), Request{ID: 7, Language: "go", Code: "x", To: 1}, func(r Result) {
		out <- r
	})

	r := <-out
	require.NoError(t, r.Err)
	assert.Equal(t, uint64(7), r.Request.ID)
	assert.Len(t, r.Decorations, 1)
}
