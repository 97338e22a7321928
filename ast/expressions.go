package ast

import (
	"bytes"
	"strings"

	"github.com/cloudcmds/c0/token"
)

// Ident is an expression node that refers to a variable by name. Var is
// the id of the VarDef the name resolved to while parsing.
type Ident struct {
	NameSpan token.Span
	Name     string
	Var      int
}

func (x *Ident) exprNode() {}

func (x *Ident) Span() token.Span { return x.NameSpan }
func (x *Ident) String() string   { return x.Name }

// Unary is an operator expression where the operator precedes the operand.
// Examples include "!done" and "-x".
type Unary struct {
	OpSpan token.Span
	Op     token.Kind
	X      Expr
}

func (x *Unary) exprNode() {}

func (x *Unary) Span() token.Span { return x.OpSpan.Join(x.X.Span()) }

func (x *Unary) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.Op.String())
	out.WriteString(x.X.String())
	out.WriteString(")")
	return out.String()
}

// Binary is an infix operator expression such as "a + b".
type Binary struct {
	X  Expr
	Op token.Kind
	Y  Expr
}

func (x *Binary) exprNode() {}

func (x *Binary) Span() token.Span { return x.X.Span().Join(x.Y.Span()) }

func (x *Binary) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(x.X.String())
	out.WriteString(" " + x.Op.String() + " ")
	out.WriteString(x.Y.String())
	out.WriteString(")")
	return out.String()
}

// Assign stores Value into Target, which is an *Ident or an *Index.
type Assign struct {
	Target Expr
	Value  Expr
}

func (x *Assign) exprNode() {}

func (x *Assign) Span() token.Span { return x.Target.Span().Join(x.Value.Span()) }

func (x *Assign) String() string {
	return x.Target.String() + " = " + x.Value.String()
}

// Call is a function call expression.
type Call struct {
	Fn     Expr
	Args   []Expr
	Rparen token.Span
}

func (x *Call) exprNode() {}

func (x *Call) Span() token.Span { return x.Fn.Span().Join(x.Rparen) }

func (x *Call) String() string {
	args := make([]string, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, a.String())
	}
	return x.Fn.String() + "(" + strings.Join(args, ", ") + ")"
}

// Index is an array element expression: X[Index].
type Index struct {
	X        Expr
	Index    Expr
	Rbracket token.Span
}

func (x *Index) exprNode() {}

func (x *Index) Span() token.Span { return x.X.Span().Join(x.Rbracket) }

func (x *Index) String() string {
	return "(" + x.X.String() + "[" + x.Index.String() + "])"
}
