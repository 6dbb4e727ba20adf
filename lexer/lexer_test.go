package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/token"
)

func TestIdentifierRoundTrip(t *testing.T) {
	for _, s := range []string{"foo", "_bar", "$baz", "a1", "élan"} {
		l := New(s)
		tok := l.Next()
		require.NoError(t, l.Err())
		assert.Equal(t, token.Identifier, tok.Kind)
		assert.Equal(t, s, tok.Lexeme)
	}
}

func TestKeywordNotIdentifier(t *testing.T) {
	l := New("return")
	tok := l.Next()
	assert.Equal(t, token.KwReturn, tok.Kind)
}

func TestNumberGrammar(t *testing.T) {
	cases := map[string]token.Kind{
		"123":       token.Number,
		"1.5":       token.Number,
		"1e10":      token.Number,
		"1.5e-3":    token.Number,
		"0x1F":      token.Number,
		"0b101":     token.Number,
		"0o17":      token.Number,
		"1_000_000": token.Number,
		"10n":       token.BigInt,
	}
	for src, want := range cases {
		l := New(src)
		tok := l.Next()
		require.NoErrorf(t, l.Err(), "source %q", src)
		assert.Equalf(t, want, tok.Kind, "source %q", src)
	}
}

func TestRegexVsDivideDisambiguation(t *testing.T) {
	l := New("a/b/g")
	kinds := []token.Kind{}
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			break
		}
		kinds = append(kinds, tok.Kind)
	}
	require.NoError(t, l.Err())
	assert.Equal(t, []token.Kind{token.Identifier, token.Slash, token.Identifier, token.Slash, token.Identifier}, kinds)

	l2 := New("return /a/g")
	first := l2.Next()
	assert.Equal(t, token.KwReturn, first.Kind)
	second := l2.Next()
	assert.Equal(t, token.Regex, second.Kind)
	assert.Equal(t, "a", second.Lexeme)
	assert.Equal(t, "g", second.Flags)
}

func TestUnterminatedStringFails(t *testing.T) {
	l := New(`"abc`)
	tok := l.Next()
	assert.Equal(t, token.Illegal, tok.Kind)
	require.Error(t, l.Err())
	se := l.Err().(*SyntaxError)
	assert.Equal(t, 0, se.Pos)
}

func TestUnterminatedBlockCommentFails(t *testing.T) {
	l := New("/* comment")
	tok := l.Next()
	assert.Equal(t, token.Illegal, tok.Kind)
	require.Error(t, l.Err())
}

func TestUnterminatedRegexFails(t *testing.T) {
	l := New("/abc")
	tok := l.Next()
	assert.Equal(t, token.Illegal, tok.Kind)
	require.Error(t, l.Err())
}

func TestCheckpointRewind(t *testing.T) {
	l := New("(x, y) => x")
	cp := l.Checkpoint()
	_ = l.Next() // (
	_ = l.Next() // x
	l.Rewind(cp)
	tok := l.Next()
	assert.Equal(t, token.LParen, tok.Kind)
}

func TestSurrogatePairEscape(t *testing.T) {
	l := New("\"\\uD83D\\uDE00\"")
	tok := l.Next()
	require.NoError(t, l.Err())
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, "😀", tok.Lexeme)
}

func TestLineTablePosition(t *testing.T) {
	lt := NewLineTable("abc\ndef\nghi")
	line, col := lt.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	line, col = lt.Position(4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)
	line, col = lt.Position(9)
	assert.Equal(t, 3, line)
	assert.Equal(t, 2, col)
}
