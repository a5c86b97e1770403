package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/ozanh/ulox/parser"
	"github.com/ozanh/ulox/token"
)

type scanExpect struct {
	kind   token.Kind
	lexeme string
	line   int
}

func TestScannerPunctuation(t *testing.T) {
	expectScan(t, "(){},.-+;/*", []scanExpect{
		{token.LeftParen, "(", 1},
		{token.RightParen, ")", 1},
		{token.LeftBrace, "{", 1},
		{token.RightBrace, "}", 1},
		{token.Comma, ",", 1},
		{token.Dot, ".", 1},
		{token.Minus, "-", 1},
		{token.Plus, "+", 1},
		{token.Semicolon, ";", 1},
		{token.Slash, "/", 1},
		{token.Star, "*", 1},
		{token.EOF, "", 1},
	})
}

func TestScannerOperators(t *testing.T) {
	expectScan(t, "! != = == < <= > >=", []scanExpect{
		{token.Bang, "!", 1},
		{token.BangEqual, "!=", 1},
		{token.Equal, "=", 1},
		{token.EqualEqual, "==", 1},
		{token.Less, "<", 1},
		{token.LessEqual, "<=", 1},
		{token.Greater, ">", 1},
		{token.GreaterEqual, ">=", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "!=<", []scanExpect{
		{token.BangEqual, "!=", 1},
		{token.Less, "<", 1},
		{token.EOF, "", 1},
	})
	// lookahead at end of input
	expectScan(t, "=", []scanExpect{
		{token.Equal, "=", 1},
		{token.EOF, "", 1},
	})
}

func TestScannerCommentVsDivision(t *testing.T) {
	expectScan(t, "3/4", []scanExpect{
		{token.Number, "3", 1},
		{token.Slash, "/", 1},
		{token.Number, "4", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "3 // 4\n5", []scanExpect{
		{token.Number, "3", 1},
		{token.Number, "5", 2},
		{token.EOF, "", 2},
	})
	expectScan(t, "// only a comment", []scanExpect{
		{token.EOF, "", 1},
	})
	expectScan(t, "/", []scanExpect{
		{token.Slash, "/", 1},
		{token.EOF, "", 1},
	})
}

func TestScannerLines(t *testing.T) {
	expectScan(t, " { \n } ", []scanExpect{
		{token.LeftBrace, "{", 1},
		{token.RightBrace, "}", 2},
		{token.EOF, "", 2},
	})
	expectScan(t, "\r\n\t1\n\n2 // c\n", []scanExpect{
		{token.Number, "1", 2},
		{token.Number, "2", 4},
		{token.EOF, "", 5},
	})
}

func TestScannerNumber(t *testing.T) {
	expectScan(t, "0 123 1.5 12.", []scanExpect{
		{token.Number, "0", 1},
		{token.Number, "123", 1},
		{token.Number, "1.5", 1},
		{token.Number, "12", 1},
		{token.Dot, ".", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, ".5", []scanExpect{
		{token.Dot, ".", 1},
		{token.Number, "5", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "1e5", []scanExpect{
		{token.Number, "1", 1},
		{token.Identifier, "e5", 1},
		{token.EOF, "", 1},
	})
}

func TestScannerString(t *testing.T) {
	expectScan(t, `"Hey"`, []scanExpect{
		{token.String, `"Hey"`, 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "\"a\nb\" 1", []scanExpect{
		{token.String, "\"a\nb\"", 2},
		{token.Number, "1", 2},
		{token.EOF, "", 2},
	})
	expectScan(t, `"abc`, []scanExpect{
		{token.Error, MsgUnterminatedString, 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "\"a\n", []scanExpect{
		{token.Error, MsgUnterminatedString, 2},
		{token.EOF, "", 2},
	})
}

func TestScannerIdentifiers(t *testing.T) {
	expectScan(t, "and class else false for fun if nil or print "+
		"return super this true var while", []scanExpect{
		{token.And, "and", 1},
		{token.Class, "class", 1},
		{token.Else, "else", 1},
		{token.False, "false", 1},
		{token.For, "for", 1},
		{token.Fun, "fun", 1},
		{token.If, "if", 1},
		{token.Nil, "nil", 1},
		{token.Or, "or", 1},
		{token.Print, "print", 1},
		{token.Return, "return", 1},
		{token.Super, "super", 1},
		{token.This, "this", 1},
		{token.True, "true", 1},
		{token.Var, "var", 1},
		{token.While, "while", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "_a a1 andy Class _", []scanExpect{
		{token.Identifier, "_a", 1},
		{token.Identifier, "a1", 1},
		{token.Identifier, "andy", 1},
		{token.Identifier, "Class", 1},
		{token.Identifier, "_", 1},
		{token.EOF, "", 1},
	})
}

func TestScannerUnexpectedCharacter(t *testing.T) {
	expectScan(t, "1 @ 2", []scanExpect{
		{token.Number, "1", 1},
		{token.Error, MsgUnexpectedChar, 1},
		{token.Number, "2", 1},
		{token.EOF, "", 1},
	})
	expectScan(t, "\x00", []scanExpect{
		{token.Error, MsgUnexpectedChar, 1},
		{token.EOF, "", 1},
	})
	// non-ASCII input is reported byte by byte
	expectScan(t, "é", []scanExpect{
		{token.Error, MsgUnexpectedChar, 1},
		{token.Error, MsgUnexpectedChar, 1},
		{token.EOF, "", 1},
	})
}

func TestScannerEOFIsIdempotent(t *testing.T) {
	s := NewScanner([]byte("1"))
	require.Equal(t, token.Number, s.Scan().Kind)
	for i := 0; i < 3; i++ {
		tok := s.Scan()
		require.Equal(t, token.EOF, tok.Kind)
		require.Equal(t, "", tok.Lexeme)
	}

	s = NewScanner(nil)
	require.Equal(t, token.EOF, s.Scan().Kind)
	require.Equal(t, token.EOF, s.Scan().Kind)
	require.Equal(t, 1, s.Line())
}

func expectScan(t *testing.T, input string, expected []scanExpect) {
	t.Helper()
	toks := NewScanner([]byte(input)).ScanAll()
	require.Len(t, toks, len(expected), "input: %q tokens: %v", input, toks)
	for i, tok := range toks {
		exp := expected[i]
		require.Equal(t, exp.kind, tok.Kind,
			"input: %q token #%d: %v", input, i, tok)
		require.Equal(t, exp.lexeme, tok.Lexeme,
			"input: %q token #%d: %v", input, i, tok)
		require.Equal(t, exp.line, tok.Line,
			"input: %q token #%d: %v", input, i, tok)
	}
}
