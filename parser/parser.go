// Package parser builds the abstract syntax tree for a C0 program.
//
// A Parser is created by calling New() with a token stream as input. The
// parser should then be used only once, by calling Parse() to produce the
// AST. Identifiers are resolved against a scope chain while parsing, which
// is how a statement that starts with a name is classified as either a
// declaration or an expression.
package parser

import (
	"errors"

	"github.com/cloudcmds/c0/ast"
	"github.com/cloudcmds/c0/internal/suggest"
	"github.com/cloudcmds/c0/symbol"
	"github.com/cloudcmds/c0/token"
)

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parse the provided tokens as a C0 program and return the AST. This is
// shorthand for creating a SliceStream and a Parser and calling Parse.
func Parse(tokens []token.Token, options ...Option) (*ast.Program, error) {
	return New(token.NewSliceStream(tokens), options...).Parse()
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithGlobal predeclares a variable of the named type in the root scope.
// The type must be a primitive.
func WithGlobal(name, typeName string) Option {
	return func(p *Parser) {
		p.globals = append(p.globals, global{name: name, typeName: typeName})
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

type global struct {
	name     string
	typeName string
}

// Parser object
type Parser struct {
	r *reader

	// scopes is the arena of lexical scopes; scope is the current one.
	scopes *symbol.Table
	scope  symbol.ScopeID

	symbols *symbol.Registry

	globals []global

	// loopDepth counts the while loops enclosing the current statement
	// within the current function.
	loopDepth int

	// inFunction is set while parsing a function body.
	inFunction bool

	depth    int
	maxDepth int

	used bool
}

// New returns a Parser for the given token stream.
func New(stream token.Stream, options ...Option) *Parser {
	p := &Parser{
		r:        newReader(stream),
		scopes:   symbol.NewTable(),
		symbols:  symbol.NewRegistry(),
		maxDepth: DefaultMaxDepth,
	}
	p.scope = p.scopes.Root()
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Parse the whole token stream and return the AST. The first error aborts
// the parse.
func (p *Parser) Parse() (*ast.Program, error) {
	if p.used {
		return nil, errors.New("parser: Parse called more than once")
	}
	p.used = true
	root := p.scopes.Root()
	if err := p.symbols.BindPrimitives(p.scopes, root); err != nil {
		return nil, internalErr(token.Zero(), "binding primitives: %v", err)
	}
	for _, g := range p.globals {
		if err := p.declareGlobal(g); err != nil {
			return nil, err
		}
	}
	program := &ast.Program{
		Scopes:  p.scopes,
		Symbols: p.symbols,
		Root:    root,
	}
	for {
		if _, ok := p.r.peek(); !ok {
			break
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		program.Items = append(program.Items, item)
	}
	return program, nil
}

func (p *Parser) declareGlobal(g global) error {
	def, ok := p.scopes.Lookup(p.scope, g.typeName)
	if !ok || !def.IsType() {
		return cannotFindIdent(g.typeName, token.Zero())
	}
	_, err := p.symbols.DeclareVar(p.scopes, symbol.VarDef{
		Name:  g.name,
		Type:  def.ID,
		Scope: p.scope,
	})
	if err != nil {
		return &ParseError{
			Kind:   UnexpectedToken,
			Actual: token.NewIdent(g.name, token.Zero()),
			Cause:  err,
		}
	}
	return nil
}

// enter pushes a new scope of the given kind and returns a function that
// restores the previous one.
func (p *Parser) enter(kind symbol.ScopeKind) (symbol.ScopeID, func()) {
	prev := p.scope
	p.scope = p.scopes.NewChild(prev, kind)
	return p.scope, func() { p.scope = prev }
}

// nest guards recursion depth. The returned function must be called when
// the nested production is done.
func (p *Parser) nest(span token.Span) (func(), error) {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		return nil, internalErr(span, "maximum nesting depth of %d exceeded", p.maxDepth)
	}
	return func() { p.depth-- }, nil
}

// declare binds name in the current scope. Redefinition is reported at the
// name's token.
func (p *Parser) declare(name token.Token, typ int, fn bool) (*ast.Ident, error) {
	id, err := p.symbols.DeclareVar(p.scopes, symbol.VarDef{
		Name:  name.Text,
		Type:  typ,
		Scope: p.scope,
		Func:  fn,
	})
	if err != nil {
		pe := unexpectedToken(name, "%q is already defined in this scope", name.Text)
		pe.Cause = err
		return nil, pe
	}
	return &ast.Ident{NameSpan: name.Span, Name: name.Text, Var: id}, nil
}

// resolve looks up an identifier token in the scope chain.
func (p *Parser) resolve(name token.Token) (symbol.SymbolDef, error) {
	def, ok := p.scopes.FindDef(p.scope, name.Text)
	if !ok {
		pe := cannotFindIdent(name.Text, name.Span)
		pe.Suggestions = suggest.Values(suggest.Similar(name.Text, p.scopes.Visible(p.scope)))
		return symbol.SymbolDef{}, pe
	}
	return def, nil
}

// endOfInput is the error for a production that needed another token.
func endOfInput() *ParseError {
	return unexpectedToken(token.New(token.EOF, token.Zero()), "")
}
