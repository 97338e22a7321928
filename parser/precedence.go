package parser

import "github.com/cloudcmds/c0/token"

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	OR          // ||
	AND         // &&
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
)

// Precedences for each binary operator token
var precedences = map[token.Kind]int{
	token.Assign:  ASSIGN,
	token.Or:      OR,
	token.And:     AND,
	token.Eq:      EQUALS,
	token.NotEq:   EQUALS,
	token.Lt:      LESSGREATER,
	token.LtEq:    LESSGREATER,
	token.Gt:      LESSGREATER,
	token.GtEq:    LESSGREATER,
	token.Plus:    SUM,
	token.Minus:   SUM,
	token.Star:    PRODUCT,
	token.Slash:   PRODUCT,
	token.Percent: PRODUCT,
}

// binaryPrecedence returns the precedence of kind as an infix operator, or
// LOWEST if it is not one.
func binaryPrecedence(kind token.Kind) int {
	if p, ok := precedences[kind]; ok {
		return p
	}
	return LOWEST
}

func rightAssociative(kind token.Kind) bool {
	return kind == token.Assign
}
