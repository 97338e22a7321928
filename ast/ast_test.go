package ast

import (
	"testing"

	"github.com/cloudcmds/c0/token"
	"github.com/stretchr/testify/require"
)

func lit(v Value, start, end int) *Literal {
	return &Literal{ValueSpan: token.NewSpan(start, end), Value: v}
}

func TestLiteralString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{Int(42), "42"},
		{Float(2.5), "2.5"},
		{Char('x'), "'x'"},
		{String("hi"), `"hi"`},
		{Bool(false), "false"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, lit(tt.value, 0, 1).String())
	}
}

func TestBinarySpanJoinsOperands(t *testing.T) {
	expr := &Binary{X: lit(Int(1), 0, 1), Op: token.Plus, Y: lit(Int(2), 4, 5)}
	require.Equal(t, token.NewSpan(0, 5), expr.Span())
	require.Equal(t, "(1 + 2)", expr.String())
}

func TestIfYields(t *testing.T) {
	yielding := &Block{Tail: lit(Int(1), 0, 1)}
	empty := &Block{}

	require.False(t, (&If{Cond: lit(Bool(true), 0, 1), Then: yielding}).Yields())
	require.True(t, (&If{Cond: lit(Bool(true), 0, 1), Then: yielding, Else: yielding}).Yields())
	require.False(t, (&If{Cond: lit(Bool(true), 0, 1), Then: yielding, Else: empty}).Yields())
	require.False(t, (&If{Cond: lit(Bool(true), 0, 1), Then: empty, Else: yielding}).Yields())

	nested := &If{Cond: lit(Bool(true), 0, 1), Then: yielding, Else: yielding}
	require.True(t, (&If{Cond: lit(Bool(true), 0, 1), Then: yielding, Else: nested}).Yields())
	require.True(t, Yields(lit(Int(3), 0, 1)))

	half := &If{Cond: lit(Bool(true), 0, 1), Then: yielding}
	require.False(t, (&Block{Tail: half}).Yields())
	require.True(t, (&Block{Tail: nested}).Yields())
}

func TestInspect(t *testing.T) {
	x := &Ident{Name: "x", NameSpan: token.NewSpan(0, 1)}
	prog := &Program{Items: []Node{
		&ExprStmt{X: &Assign{Target: x, Value: &Binary{X: x, Op: token.Star, Y: lit(Int(2), 8, 9)}}},
		&While{
			Cond: &Binary{X: x, Op: token.Lt, Y: lit(Int(10), 20, 22)},
			Body: &Block{Stmts: []Node{&Break{}}},
		},
	}}

	var idents, literals int
	Inspect(prog, func(n Node) bool {
		switch n.(type) {
		case *Ident:
			idents++
		case *Literal:
			literals++
		}
		return true
	})
	require.Equal(t, 3, idents)
	require.Equal(t, 2, literals)

	// Returning false skips the children of the while loop.
	idents = 0
	Inspect(prog, func(n Node) bool {
		if _, ok := n.(*Ident); ok {
			idents++
		}
		_, isWhile := n.(*While)
		return !isWhile
	})
	require.Equal(t, 2, idents)
}

func TestProgramFunctions(t *testing.T) {
	body := &Block{Lbrace: token.NewSpan(10, 11), Rbrace: token.NewSpan(11, 12)}
	fn := &FnDef{
		FnSpan:     token.NewSpan(0, 2),
		Name:       &Ident{Name: "main"},
		ResultName: "void",
		Body:       body,
	}
	prog := &Program{Items: []Node{fn, &ExprStmt{X: lit(Int(1), 13, 14), Semicolon: token.NewSpan(14, 15)}}}
	require.Equal(t, []*FnDef{fn}, prog.Functions())
	require.Equal(t, token.NewSpan(0, 15), prog.Span())
	require.Equal(t, "fn main() { }\n1;", prog.String())
}
