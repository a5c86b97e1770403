// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package parser

import (
	"github.com/ozanh/ulox/token"
)

// Scanner error messages.
const (
	MsgUnexpectedChar     = "Unexpected character."
	MsgUnterminatedString = "Unterminated string."
)

// Scanner reads the source text and produces tokens on demand.
type Scanner struct {
	src     string
	start   int // start offset of the token being scanned
	current int // read offset
	line    int
}

// NewScanner creates a Scanner for src.
func NewScanner(src []byte) *Scanner {
	return &Scanner{src: string(src), line: 1}
}

// Line returns the current line number.
func (s *Scanner) Line() int {
	return s.line
}

// Scan returns the next token. Once the end of input is reached, Scan keeps
// returning EOF tokens.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespace()
	s.start = s.current
	if s.atEnd() {
		return s.makeToken(token.EOF)
	}

	c := s.advance()
	switch {
	case isDigit(c):
		return s.number()
	case isAlpha(c):
		return s.identifier()
	}

	switch c {
	case '(':
		return s.makeToken(token.LeftParen)
	case ')':
		return s.makeToken(token.RightParen)
	case '{':
		return s.makeToken(token.LeftBrace)
	case '}':
		return s.makeToken(token.RightBrace)
	case ';':
		return s.makeToken(token.Semicolon)
	case ',':
		return s.makeToken(token.Comma)
	case '.':
		return s.makeToken(token.Dot)
	case '-':
		return s.makeToken(token.Minus)
	case '+':
		return s.makeToken(token.Plus)
	case '/':
		return s.makeToken(token.Slash)
	case '*':
		return s.makeToken(token.Star)
	case '!':
		return s.makeToken(s.choose('=', token.BangEqual, token.Bang))
	case '=':
		return s.makeToken(s.choose('=', token.EqualEqual, token.Equal))
	case '<':
		return s.makeToken(s.choose('=', token.LessEqual, token.Less))
	case '>':
		return s.makeToken(s.choose('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}
	return s.errorToken(MsgUnexpectedChar)
}

// ScanAll scans the whole source and returns all tokens including the
// terminating EOF token.
func (s *Scanner) ScanAll() []token.Token {
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for s.peek() != '\n' && !s.atEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorToken(MsgUnterminatedString)
	}
	s.advance() // closing quote
	return s.makeToken(token.String)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.makeToken(token.Lookup(s.src[s.start:s.current]))
}

func (s *Scanner) choose(next byte, matched, otherwise token.Kind) token.Kind {
	if s.match(next) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected byte) bool {
	if s.atEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

// peek returns 0 at the end of input.
func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) atEnd() bool {
	return s.current >= len(s.src)
}

func (s *Scanner) makeToken(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Line:   s.line,
		Lexeme: s.src[s.start:s.current],
	}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{
		Kind:   token.Error,
		Line:   s.line,
		Lexeme: msg,
	}
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}
