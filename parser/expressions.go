package parser

import (
	"github.com/cloudcmds/c0/ast"
	"github.com/cloudcmds/c0/token"
)

// pendingOp is an operator waiting on the operator stack.
type pendingOp struct {
	tok   token.Token
	prec  int
	unary bool
}

// exprStacks holds the explicit operand and operator stacks of one
// expression.
type exprStacks struct {
	operands []ast.Expr
	ops      []pendingOp
}

// parseExpr parses an expression with operator precedence, using explicit
// stacks rather than one recursive call per precedence level.
func (p *Parser) parseExpr() (ast.Expr, error) {
	tok, _ := p.r.peek()
	done, err := p.nest(tok.Span)
	if err != nil {
		return nil, err
	}
	defer done()

	var s exprStacks
	for {
		for {
			tok, ok := p.r.peek()
			if !ok || !(tok.Is(token.Minus) || tok.Is(token.Bang)) {
				break
			}
			p.r.next()
			s.ops = append(s.ops, pendingOp{tok: tok, prec: PREFIX, unary: true})
		}
		operand, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		s.operands = append(s.operands, operand)

		tok, ok := p.r.peek()
		if !ok {
			break
		}
		prec := binaryPrecedence(tok.Kind)
		if prec == LOWEST {
			break
		}
		for len(s.ops) > 0 {
			top := s.ops[len(s.ops)-1]
			if top.prec < prec || (top.prec == prec && rightAssociative(tok.Kind)) {
				break
			}
			if err := s.reduce(); err != nil {
				return nil, err
			}
		}
		p.r.next()
		s.ops = append(s.ops, pendingOp{tok: tok, prec: prec})
	}
	for len(s.ops) > 0 {
		if err := s.reduce(); err != nil {
			return nil, err
		}
	}
	if len(s.operands) != 1 {
		return nil, internalErr(tok.Span, "expression left %d operands", len(s.operands))
	}
	return s.operands[0], nil
}

// parseValue parses an expression whose result is used, such as an
// initializer or a call argument.
func (p *Parser) parseValue() (ast.Expr, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := requireValue(x); err != nil {
		return nil, err
	}
	return x, nil
}

// requireValue rejects an if or block that produces no value.
func requireValue(x ast.Expr) error {
	switch x := x.(type) {
	case *ast.If:
		if x.Yields() {
			return nil
		}
		msg := "if without else yields no value"
		if x.Else != nil {
			msg = "if branches do not both yield a value"
		}
		return &ParseError{
			Kind:    UnexpectedToken,
			Actual:  token.New(token.If, x.IfSpan),
			Span:    x.Span(),
			Message: msg,
		}
	case *ast.Block:
		if x.Yields() {
			return nil
		}
		return &ParseError{
			Kind:    UnexpectedToken,
			Actual:  token.New(token.LBrace, x.Lbrace),
			Span:    x.Span(),
			Message: "block yields no value",
		}
	}
	return nil
}

// reduce pops one operator and its operands and pushes the combined node.
func (s *exprStacks) reduce() error {
	op := s.ops[len(s.ops)-1]
	s.ops = s.ops[:len(s.ops)-1]
	if op.unary {
		if len(s.operands) < 1 {
			return internalErr(op.tok.Span, "missing operand for %s", op.tok.Kind)
		}
		x := s.pop()
		if err := requireValue(x); err != nil {
			return err
		}
		s.operands = append(s.operands, &ast.Unary{OpSpan: op.tok.Span, Op: op.tok.Kind, X: x})
		return nil
	}
	if len(s.operands) < 2 {
		return internalErr(op.tok.Span, "missing operand for %s", op.tok.Kind)
	}
	y := s.pop()
	x := s.pop()
	if err := requireValue(y); err != nil {
		return err
	}
	if op.tok.Is(token.Assign) {
		switch x.(type) {
		case *ast.Ident, *ast.Index:
		default:
			return unexpectedToken(op.tok, "cannot assign to %s", x)
		}
		s.operands = append(s.operands, &ast.Assign{Target: x, Value: y})
		return nil
	}
	if err := requireValue(x); err != nil {
		return err
	}
	s.operands = append(s.operands, &ast.Binary{X: x, Op: op.tok.Kind, Y: y})
	return nil
}

func (s *exprStacks) pop() ast.Expr {
	x := s.operands[len(s.operands)-1]
	s.operands = s.operands[:len(s.operands)-1]
	return x
}

// parsePostfix parses a primary expression followed by any number of call
// and index suffixes.
func (p *Parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if p.r.peekIs(token.LParen) || p.r.peekIs(token.LBracket) {
			if err := requireValue(x); err != nil {
				return nil, err
			}
		}
		switch {
		case p.r.tryConsume(token.LParen):
			call := &ast.Call{Fn: x}
			if rparen, ok := p.r.tryConsumeSpan(token.RParen); ok {
				call.Rparen = rparen
				x = call
				continue
			}
			for {
				arg, err := p.parseValue()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, arg)
				if p.r.tryConsume(token.Comma) {
					continue
				}
				rparen, err := p.r.expect(token.RParen)
				if err != nil {
					return nil, err
				}
				call.Rparen = rparen.Span
				break
			}
			x = call
		case p.r.tryConsume(token.LBracket):
			index, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			rbracket, err := p.r.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			x = &ast.Index{X: x, Index: index, Rbracket: rbracket.Span}
		default:
			return x, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok, ok := p.r.peek()
	if !ok {
		return nil, endOfInput()
	}
	switch tok.Kind {
	case token.IntLit, token.FloatLit, token.CharLit, token.StringLit, token.BoolLit:
		p.r.next()
		return parseLiteral(tok)
	case token.Ident:
		p.r.next()
		def, err := p.resolve(tok)
		if err != nil {
			return nil, err
		}
		if def.IsType() {
			return nil, unexpectedToken(tok, "type %q used as a value", tok.Text)
		}
		return &ast.Ident{NameSpan: tok.Span, Name: tok.Text, Var: def.ID}, nil
	case token.LParen:
		p.r.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.r.expect(token.RParen); err != nil {
			return nil, err
		}
		return x, nil
	case token.LBrace:
		return p.parseBlock()
	case token.If:
		p.r.next()
		return p.parseIf(tok)
	default:
		p.r.next()
		return nil, unexpectedToken(tok, "")
	}
}
