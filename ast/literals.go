package ast

import (
	"strconv"

	"github.com/cloudcmds/c0/token"
)

// Value is the payload of a Literal. It is one of Int, Float, Char, String
// or Bool.
type Value interface {
	literalValue()
	String() string
}

// Int is an integer literal value.
type Int int64

// Float is a floating point literal value.
type Float float64

// Char is a character literal value.
type Char byte

// String is a string literal value.
type String string

// Bool is a boolean literal value.
type Bool bool

func (Int) literalValue()    {}
func (Float) literalValue()  {}
func (Char) literalValue()   {}
func (String) literalValue() {}
func (Bool) literalValue()   {}

func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Char) String() string   { return strconv.QuoteRune(rune(v)) }
func (v String) String() string { return strconv.Quote(string(v)) }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }

// Literal is an expression node holding a constant value.
type Literal struct {
	ValueSpan token.Span
	Value     Value
}

func (x *Literal) exprNode() {}

func (x *Literal) Span() token.Span { return x.ValueSpan }
func (x *Literal) String() string   { return x.Value.String() }
