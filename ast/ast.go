// Package ast defines the abstract syntax tree produced by the C0 parser.
package ast

import (
	"strings"

	"github.com/cloudcmds/c0/symbol"
	"github.com/cloudcmds/c0/token"
)

// Node represents a portion of the syntax tree. All nodes carry the span of
// source text they were parsed from.
type Node interface {
	// Span returns the half-open byte range covered by the node.
	Span() token.Span

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Program is the result of parsing a whole token stream. Items holds
// statements and yielding-shape expressions (if, block) in source order.
// The scope table and symbol registry that were built during the parse are
// owned by the Program so that the scope handles stored in Block and FnDef
// nodes remain valid.
type Program struct {
	Items   []Node
	Scopes  *symbol.Table
	Symbols *symbol.Registry
	Root    symbol.ScopeID
}

func (p *Program) Span() token.Span {
	if len(p.Items) == 0 {
		return token.Zero()
	}
	return p.Items[0].Span().Join(p.Items[len(p.Items)-1].Span())
}

func (p *Program) String() string {
	lines := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, item.String())
	}
	return strings.Join(lines, "\n")
}

// Functions returns the top-level function definitions.
func (p *Program) Functions() []*FnDef {
	var fns []*FnDef
	for _, item := range p.Items {
		if fn, ok := item.(*FnDef); ok {
			fns = append(fns, fn)
		}
	}
	return fns
}
