package ast

import (
	"bytes"
	"strings"

	"github.com/cloudcmds/c0/symbol"
	"github.com/cloudcmds/c0/token"
)

// Block is a braced sequence of statements in its own scope. Tail is the
// trailing expression without a semicolon, and is nil for blocks that
// produce no value.
type Block struct {
	Lbrace token.Span
	Scope  symbol.ScopeID
	Stmts  []Node
	Tail   Expr
	Rbrace token.Span
}

func (x *Block) exprNode() {}

func (x *Block) Span() token.Span { return x.Lbrace.Join(x.Rbrace) }

// Yields reports whether the block produces a value: it must end with a
// tail expression that itself yields.
func (x *Block) Yields() bool { return x.Tail != nil && Yields(x.Tail) }

func (x *Block) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range x.Stmts {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	if x.Tail != nil {
		out.WriteString(x.Tail.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// If is a conditional expression. Else is nil, a *Block, or an *If for an
// "else if" chain.
type If struct {
	IfSpan token.Span
	Cond   Expr
	Then   *Block
	Else   Expr
}

func (x *If) exprNode() {}

func (x *If) Span() token.Span {
	if x.Else != nil {
		return x.IfSpan.Join(x.Else.Span())
	}
	return x.IfSpan.Join(x.Then.Span())
}

// Yields reports whether the if expression produces a value: there must be
// an else branch and both branches must yield.
func (x *If) Yields() bool {
	if x.Else == nil || !x.Then.Yields() {
		return false
	}
	return Yields(x.Else)
}

func (x *If) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(x.Cond.String())
	out.WriteString(" ")
	out.WriteString(x.Then.String())
	if x.Else != nil {
		out.WriteString(" else ")
		out.WriteString(x.Else.String())
	}
	return out.String()
}

// Yields reports whether evaluating expr produces a value. Blocks and ifs
// decide for themselves. Every other expression yields.
func Yields(expr Expr) bool {
	switch x := expr.(type) {
	case *Block:
		return x.Yields()
	case *If:
		return x.Yields()
	default:
		return true
	}
}

// While is a loop statement.
type While struct {
	WhileSpan token.Span
	Cond      Expr
	Body      *Block
}

func (x *While) stmtNode() {}

func (x *While) Span() token.Span { return x.WhileSpan.Join(x.Body.Span()) }

func (x *While) String() string {
	return "while " + x.Cond.String() + " " + x.Body.String()
}

// Declarator is one name declared by a Decl, with an optional initializer.
type Declarator struct {
	Name  *Ident
	Value Expr
}

// Decl declares one or more variables of the same type:
// "int a = 1, b;".
type Decl struct {
	TypeSpan  token.Span
	Type      int
	TypeName  string
	Names     []Declarator
	Semicolon token.Span
}

func (x *Decl) stmtNode() {}

func (x *Decl) Span() token.Span { return x.TypeSpan.Join(x.Semicolon) }

func (x *Decl) String() string {
	parts := make([]string, 0, len(x.Names))
	for _, d := range x.Names {
		if d.Value != nil {
			parts = append(parts, d.Name.String()+" = "+d.Value.String())
		} else {
			parts = append(parts, d.Name.String())
		}
	}
	return x.TypeName + " " + strings.Join(parts, ", ") + ";"
}

// Param is a function parameter.
type Param struct {
	Name     *Ident
	Type     int
	TypeName string
}

// FnDef is a function definition. Scope is the function scope that holds
// the parameters; the body block shares it.
type FnDef struct {
	FnSpan     token.Span
	Name       *Ident
	Params     []Param
	Result     int
	ResultName string
	Scope      symbol.ScopeID
	Body       *Block
}

func (x *FnDef) stmtNode() {}

func (x *FnDef) Span() token.Span { return x.FnSpan.Join(x.Body.Span()) }

func (x *FnDef) String() string {
	params := make([]string, 0, len(x.Params))
	for _, p := range x.Params {
		params = append(params, p.TypeName+" "+p.Name.Name)
	}
	out := "fn " + x.Name.Name + "(" + strings.Join(params, ", ") + ")"
	if x.ResultName != "" && x.ResultName != symbol.VoidType {
		out += " -> " + x.ResultName
	}
	return out + " " + x.Body.String()
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	X         Expr
	Semicolon token.Span
}

func (x *ExprStmt) stmtNode() {}

func (x *ExprStmt) Span() token.Span { return x.X.Span().Join(x.Semicolon) }

func (x *ExprStmt) String() string { return x.X.String() + ";" }

// Return leaves the enclosing function, optionally with a value.
type Return struct {
	ReturnSpan token.Span
	Value      Expr
	Semicolon  token.Span
}

func (x *Return) stmtNode() {}

func (x *Return) Span() token.Span { return x.ReturnSpan.Join(x.Semicolon) }

func (x *Return) String() string {
	if x.Value == nil {
		return "return;"
	}
	return "return " + x.Value.String() + ";"
}

// Break leaves the innermost while loop.
type Break struct {
	BreakSpan token.Span
	Semicolon token.Span
}

func (x *Break) stmtNode() {}

func (x *Break) Span() token.Span { return x.BreakSpan.Join(x.Semicolon) }
func (x *Break) String() string   { return "break;" }

// Continue jumps to the next iteration of the innermost while loop.
type Continue struct {
	ContinueSpan token.Span
	Semicolon    token.Span
}

func (x *Continue) stmtNode() {}

func (x *Continue) Span() token.Span { return x.ContinueSpan.Join(x.Semicolon) }
func (x *Continue) String() string   { return "continue;" }
