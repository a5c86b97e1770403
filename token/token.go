// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package token

import "strconv"

// Kind represents the kind of a lexical token.
type Kind int

// List of token kinds.
const (
	// Single-character tokens.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	keywordBeg
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordEnd

	Error
	EOF

	// NumKinds is the number of token kinds, it is used to size lookup tables.
	NumKinds
)

var kinds = [...]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Identifier:   "IDENT",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	For:          "for",
	Fun:          "fun",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	Error:        "ERROR",
	EOF:          "EOF",
}

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keywordEnd-keywordBeg-1)
	for i := keywordBeg + 1; i < keywordEnd; i++ {
		keywords[kinds[i]] = i
	}
}

func (k Kind) String() string {
	if 0 <= k && k < Kind(len(kinds)) && kinds[k] != "" {
		return kinds[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword returns true if the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return keywordBeg < k && k < keywordEnd
}

// Lookup returns the keyword kind of ident, or Identifier if ident is not a
// reserved word.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Identifier
}

// Keywords returns reserved words in declaration order.
func Keywords() []string {
	out := make([]string, 0, keywordEnd-keywordBeg-1)
	for i := keywordBeg + 1; i < keywordEnd; i++ {
		out = append(out, kinds[i])
	}
	return out
}

// Token is a lexical unit produced by the scanner. For Error tokens Lexeme
// holds the diagnostic message instead of source text.
type Token struct {
	Kind   Kind
	Line   int
	Lexeme string
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier, String, Number, Error:
		return t.Kind.String() + " " + strconv.Quote(t.Lexeme)
	}
	return t.Kind.String()
}
