package parser

import (
	"github.com/cloudcmds/c0/ast"
	"github.com/cloudcmds/c0/token"
)

// parseLiteral converts a literal token into a literal node that keeps the
// token's span.
func parseLiteral(tok token.Token) (*ast.Literal, error) {
	var value ast.Value
	switch tok.Kind {
	case token.IntLit:
		value = ast.Int(tok.Int)
	case token.FloatLit:
		value = ast.Float(tok.Float)
	case token.CharLit:
		value = ast.Char(byte(tok.Int))
	case token.StringLit:
		value = ast.String(tok.Text)
	case token.BoolLit:
		value = ast.Bool(tok.Bool)
	default:
		return nil, internalErr(tok.Span, "%s is not a literal", describe(tok))
	}
	return &ast.Literal{ValueSpan: tok.Span, Value: value}, nil
}
