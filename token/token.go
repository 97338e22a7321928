// Package token defines the tokens of the C0 language as consumed by the
// parser. Lexing happens elsewhere; this package only describes the shape
// of what a lexer hands over.
package token

import (
	"fmt"
	"strconv"
)

// Kind is the variant tag of a token.
type Kind uint8

// Token kinds
const (
	Invalid Kind = iota
	EOF

	// Identifiers and literals
	Ident
	IntLit
	FloatLit
	CharLit
	StringLit
	BoolLit

	// Keywords
	While
	If
	Else
	Fn
	Return
	Break
	Continue

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semicolon
	Arrow
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Bang
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	And
	Or
)

var kindNames = [...]string{
	Invalid:   "INVALID",
	EOF:       "end of input",
	Ident:     "identifier",
	IntLit:    "integer literal",
	FloatLit:  "float literal",
	CharLit:   "char literal",
	StringLit: "string literal",
	BoolLit:   "boolean literal",
	While:     "while",
	If:        "if",
	Else:      "else",
	Fn:        "fn",
	Return:    "return",
	Break:     "break",
	Continue:  "continue",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Comma:     ",",
	Semicolon: ";",
	Arrow:     "->",
	Assign:    "=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Percent:   "%",
	Bang:      "!",
	Eq:        "==",
	NotEq:     "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	And:       "&&",
	Or:        "||",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsLiteral reports whether tokens of this kind carry a literal value.
func (k Kind) IsLiteral() bool {
	return k >= IntLit && k <= BoolLit
}

// Reserved keywords
var keywords = map[string]Kind{
	"while":    While,
	"if":       If,
	"else":     Else,
	"fn":       Fn,
	"return":   Return,
	"break":    Break,
	"continue": Continue,
}

// LookupIdentifier returns the keyword kind for the given word, or Ident if
// the word is not reserved. Lexers use this to classify words.
func LookupIdentifier(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	return Ident
}

// Token represents one token lexed from the input source code. Only the
// payload field matching Kind is meaningful: Text for identifiers and
// string literals, Int for integer and char literals, Float for float
// literals and Bool for boolean literals.
type Token struct {
	Kind  Kind
	Text  string
	Int   int64
	Float float64
	Bool  bool
	Span  Span
}

// Is compares the variant tag only. Payloads are ignored, so an
// identifier token "x" Is(Ident).
func (t Token) Is(kind Kind) bool {
	return t.Kind == kind
}

func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return t.Text
	case IntLit:
		return strconv.FormatInt(t.Int, 10)
	case FloatLit:
		return strconv.FormatFloat(t.Float, 'g', -1, 64)
	case CharLit:
		return strconv.QuoteRune(rune(t.Int))
	case StringLit:
		return strconv.Quote(t.Text)
	case BoolLit:
		return strconv.FormatBool(t.Bool)
	default:
		return t.Kind.String()
	}
}

// New returns a payload-free token such as a keyword or punctuation.
func New(kind Kind, span Span) Token {
	return Token{Kind: kind, Span: span}
}

// NewIdent returns an identifier token.
func NewIdent(name string, span Span) Token {
	return Token{Kind: Ident, Text: name, Span: span}
}

// NewInt returns an integer literal token.
func NewInt(value int64, span Span) Token {
	return Token{Kind: IntLit, Int: value, Span: span}
}

// NewFloat returns a float literal token.
func NewFloat(value float64, span Span) Token {
	return Token{Kind: FloatLit, Float: value, Span: span}
}

// NewChar returns a char literal token.
func NewChar(value byte, span Span) Token {
	return Token{Kind: CharLit, Int: int64(value), Span: span}
}

// NewString returns a string literal token.
func NewString(value string, span Span) Token {
	return Token{Kind: StringLit, Text: value, Span: span}
}

// NewBool returns a boolean literal token.
func NewBool(value bool, span Span) Token {
	return Token{Kind: BoolLit, Bool: value, Span: span}
}
