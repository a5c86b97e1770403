package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ozanh/ulox/token"
)

func TestLookup(t *testing.T) {
	kws := token.Keywords()
	require.Len(t, kws, 16)
	for _, kw := range kws {
		k := token.Lookup(kw)
		require.True(t, k.IsKeyword(), kw)
		require.Equal(t, kw, k.String())
	}
	require.Equal(t, token.Nil, token.Lookup("nil"))
	require.Equal(t, token.Identifier, token.Lookup("nill"))
	require.Equal(t, token.Identifier, token.Lookup("And"))
	require.Equal(t, token.Identifier, token.Lookup("_"))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "!=", token.BangEqual.String())
	require.Equal(t, "EOF", token.EOF.String())
	require.Equal(t, "kind(-1)", token.Kind(-1).String())
	require.Equal(t, "kind(1000)", token.Kind(1000).String())
	require.False(t, token.Identifier.IsKeyword())
	require.False(t, token.Error.IsKeyword())
}

func TestTokenString(t *testing.T) {
	require.Equal(t, `NUMBER "1.5"`,
		token.Token{Kind: token.Number, Lexeme: "1.5"}.String())
	require.Equal(t, "+", token.Token{Kind: token.Plus, Lexeme: "+"}.String())
}
