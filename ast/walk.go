package ast

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, item := range n.Items {
			Walk(v, item)
		}

	// Statements
	case *While:
		Walk(v, n.Cond)
		Walk(v, n.Body)
	case *Decl:
		for _, d := range n.Names {
			Walk(v, d.Name)
			if d.Value != nil {
				Walk(v, d.Value)
			}
		}
	case *FnDef:
		Walk(v, n.Name)
		for _, p := range n.Params {
			Walk(v, p.Name)
		}
		Walk(v, n.Body)
	case *ExprStmt:
		Walk(v, n.X)
	case *Return:
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *Break, *Continue:

	// Expressions
	case *Block:
		for _, stmt := range n.Stmts {
			Walk(v, stmt)
		}
		if n.Tail != nil {
			Walk(v, n.Tail)
		}
	case *If:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *Unary:
		Walk(v, n.X)
	case *Binary:
		Walk(v, n.X)
		Walk(v, n.Y)
	case *Assign:
		Walk(v, n.Target)
		Walk(v, n.Value)
	case *Call:
		Walk(v, n.Fn)
		for _, a := range n.Args {
			Walk(v, a)
		}
	case *Index:
		Walk(v, n.X)
		Walk(v, n.Index)
	case *Ident, *Literal:
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if node != nil && f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for each node.
// If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
