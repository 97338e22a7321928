package parser

import (
	"github.com/cloudcmds/c0/ast"
	"github.com/cloudcmds/c0/symbol"
	"github.com/cloudcmds/c0/token"
)

// parseItem parses one top-level item. An expression must be terminated by
// a semicolon unless it is an if or a block.
func (p *Parser) parseItem() (ast.Node, error) {
	node, err := p.parseStmtOrExpr()
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expr)
	if !ok || standsAlone(expr) {
		return node, nil
	}
	if _, err := p.r.expect(token.Semicolon); err != nil {
		return nil, err
	}
	return nil, internalErr(expr.Span(), "unterminated expression")
}

// standsAlone reports whether expr may be used as a statement without a
// trailing semicolon.
func standsAlone(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.If, *ast.Block:
		return true
	default:
		return false
	}
}

// parseStmtOrExpr dispatches on the next token. The result is a statement,
// or an expression that was not followed by a semicolon, in which case the
// caller decides whether it is a block's tail.
func (p *Parser) parseStmtOrExpr() (ast.Node, error) {
	tok, ok := p.r.peek()
	if !ok {
		return nil, endOfInput()
	}
	switch tok.Kind {
	case token.While:
		return p.parseWhile()
	case token.Fn:
		return p.parseFn()
	case token.Return:
		return p.parseReturn()
	case token.Break, token.Continue:
		return p.parseLoopControl()
	case token.If:
		p.r.next()
		x, err := p.parseIf(tok)
		if err != nil {
			return nil, err
		}
		return p.finishExpr(x), nil
	case token.LBrace:
		x, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return p.finishExpr(x), nil
	case token.Ident:
		def, err := p.resolve(tok)
		if err != nil {
			return nil, err
		}
		if def.IsType() {
			return p.parseDecl()
		}
		return p.parseExprStmt()
	case token.IntLit, token.FloatLit, token.CharLit, token.StringLit, token.BoolLit,
		token.LParen, token.Minus, token.Bang:
		return p.parseExprStmt()
	default:
		p.r.next()
		return nil, unexpectedToken(tok, "")
	}
}

func (p *Parser) parseExprStmt() (ast.Node, error) {
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return p.finishExpr(x), nil
}

// finishExpr wraps x in an ExprStmt if a semicolon follows.
func (p *Parser) finishExpr(x ast.Expr) ast.Node {
	if semi, ok := p.r.tryConsumeSpan(token.Semicolon); ok {
		return &ast.ExprStmt{X: x, Semicolon: semi}
	}
	return x
}

func (p *Parser) parseWhile() (*ast.While, error) {
	tok, err := p.r.expect(token.While)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlock()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ast.While{WhileSpan: tok.Span, Cond: cond, Body: body}, nil
}

// parseIf parses the rest of an if expression after the "if" keyword.
func (p *Parser) parseIf(ifTok token.Token) (*ast.If, error) {
	cond, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{IfSpan: ifTok.Span, Cond: cond, Then: then}
	if !p.r.tryConsume(token.Else) {
		return node, nil
	}
	if tok, ok := p.r.peek(); ok && tok.Is(token.If) {
		p.r.next()
		elseIf, err := p.parseIf(tok)
		if err != nil {
			return nil, err
		}
		node.Else = elseIf
		return node, nil
	}
	alt, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node.Else = alt
	return node, nil
}

// parseBlock parses a braced block in a fresh block scope.
func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.r.expect(token.LBrace)
	if err != nil {
		return nil, err
	}
	scope, leave := p.enter(symbol.BlockScope)
	defer leave()
	return p.parseBlockBody(lbrace, scope)
}

// parseBlockNoScope parses a braced block in the current scope. Function
// bodies use it so they share the scope holding the parameters.
func (p *Parser) parseBlockNoScope() (*ast.Block, error) {
	lbrace, err := p.r.expect(token.LBrace)
	if err != nil {
		return nil, err
	}
	return p.parseBlockBody(lbrace, p.scope)
}

func (p *Parser) parseBlockBody(lbrace token.Token, scope symbol.ScopeID) (*ast.Block, error) {
	done, err := p.nest(lbrace.Span)
	if err != nil {
		return nil, err
	}
	defer done()
	block := &ast.Block{Lbrace: lbrace.Span, Scope: scope}
	for {
		tok, ok := p.r.peek()
		if !ok {
			return nil, expectToken(token.RBrace, token.Zero())
		}
		if tok.Is(token.RBrace) {
			p.r.next()
			block.Rbrace = tok.Span
			return block, nil
		}
		node, err := p.parseStmtOrExpr()
		if err != nil {
			return nil, err
		}
		expr, isExpr := node.(ast.Expr)
		switch {
		case !isExpr:
			block.Stmts = append(block.Stmts, node)
		case p.r.peekIs(token.RBrace):
			block.Tail = expr
		case standsAlone(expr):
			block.Stmts = append(block.Stmts, expr)
		default:
			if _, err := p.r.expect(token.Semicolon); err != nil {
				return nil, err
			}
			return nil, internalErr(expr.Span(), "unterminated expression")
		}
	}
}

// parseType parses a type name with any number of "[]" suffixes.
func (p *Parser) parseType() (int, string, token.Span, error) {
	tok, err := p.r.expect(token.Ident)
	if err != nil {
		return 0, "", tok.Span, err
	}
	def, err := p.resolve(tok)
	if err != nil {
		return 0, "", tok.Span, err
	}
	if !def.IsType() {
		return 0, "", tok.Span, unexpectedToken(tok, "%q is not a type", tok.Text)
	}
	typ, span := def.ID, tok.Span
	for p.r.tryConsume(token.LBracket) {
		rb, err := p.r.expect(token.RBracket)
		if err != nil {
			return 0, "", span, err
		}
		typ = p.symbols.InternArrayType(typ)
		span = span.Join(rb.Span)
	}
	return typ, p.symbols.TypeName(typ), span, nil
}

// parseDecl parses "T a = 1, b;". Each name is bound after its initializer
// is parsed.
func (p *Parser) parseDecl() (*ast.Decl, error) {
	typ, typeName, typeSpan, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if typ == p.voidType() {
		tok, _ := p.r.peek()
		return nil, unexpectedToken(tok, "variables cannot have type void")
	}
	decl := &ast.Decl{TypeSpan: typeSpan, Type: typ, TypeName: typeName}
	for {
		name, err := p.r.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if p.r.tryConsume(token.Assign) {
			if value, err = p.parseValue(); err != nil {
				return nil, err
			}
		}
		ident, err := p.declare(name, typ, false)
		if err != nil {
			return nil, err
		}
		decl.Names = append(decl.Names, ast.Declarator{Name: ident, Value: value})
		if !p.r.tryConsume(token.Comma) {
			break
		}
	}
	semi, err := p.r.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	decl.Semicolon = semi.Span
	return decl, nil
}

// parseFn parses a function definition. The name is bound in the enclosing
// scope before the body is parsed so the function may call itself.
func (p *Parser) parseFn() (*ast.FnDef, error) {
	fnTok, err := p.r.expect(token.Fn)
	if err != nil {
		return nil, err
	}
	nameTok, err := p.r.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.expect(token.LParen); err != nil {
		return nil, err
	}
	type param struct {
		name     token.Token
		typ      int
		typeName string
	}
	var params []param
	if !p.r.tryConsume(token.RParen) {
		for {
			typ, typeName, _, err := p.parseType()
			if err != nil {
				return nil, err
			}
			name, err := p.r.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			params = append(params, param{name: name, typ: typ, typeName: typeName})
			if p.r.tryConsume(token.Comma) {
				continue
			}
			if _, err := p.r.expect(token.RParen); err != nil {
				return nil, err
			}
			break
		}
	}
	result, resultName := p.voidType(), symbol.VoidType
	if p.r.tryConsume(token.Arrow) {
		if result, resultName, _, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	paramTypes := make([]int, 0, len(params))
	for _, prm := range params {
		paramTypes = append(paramTypes, prm.typ)
	}
	name, err := p.declare(nameTok, p.symbols.InternFunctionType(paramTypes, result), true)
	if err != nil {
		return nil, err
	}

	scope, leave := p.enter(symbol.FunctionScope)
	defer leave()
	fn := &ast.FnDef{
		FnSpan:     fnTok.Span,
		Name:       name,
		Result:     result,
		ResultName: resultName,
		Scope:      scope,
	}
	for _, prm := range params {
		ident, err := p.declare(prm.name, prm.typ, false)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, ast.Param{Name: ident, Type: prm.typ, TypeName: prm.typeName})
	}

	loopDepth, inFunction := p.loopDepth, p.inFunction
	p.loopDepth, p.inFunction = 0, true
	body, err := p.parseBlockNoScope()
	p.loopDepth, p.inFunction = loopDepth, inFunction
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	tok, err := p.r.expect(token.Return)
	if err != nil {
		return nil, err
	}
	if !p.inFunction {
		return nil, unexpectedToken(tok, "return outside of a function")
	}
	node := &ast.Return{ReturnSpan: tok.Span}
	if semi, ok := p.r.tryConsumeSpan(token.Semicolon); ok {
		node.Semicolon = semi
		return node, nil
	}
	if node.Value, err = p.parseValue(); err != nil {
		return nil, err
	}
	semi, err := p.r.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	node.Semicolon = semi.Span
	return node, nil
}

func (p *Parser) parseLoopControl() (ast.Stmt, error) {
	tok, _ := p.r.next()
	if p.loopDepth == 0 {
		return nil, unexpectedToken(tok, "%s outside of a loop", tok.Kind)
	}
	semi, err := p.r.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	if tok.Is(token.Break) {
		return &ast.Break{BreakSpan: tok.Span, Semicolon: semi.Span}, nil
	}
	return &ast.Continue{ContinueSpan: tok.Span, Semicolon: semi.Span}, nil
}

func (p *Parser) voidType() int {
	id, _ := p.symbols.TypeByName(symbol.VoidType)
	return id
}
