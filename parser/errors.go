package parser

import (
	"errors"
	"fmt"

	"github.com/cloudcmds/c0/internal/suggest"
	"github.com/cloudcmds/c0/token"
)

// ErrorKind classifies a parse error.
type ErrorKind uint8

const (
	// ExpectToken means a mandatory token was missing or mismatched.
	ExpectToken ErrorKind = iota + 1
	// UnexpectedToken means no production matches the current token.
	UnexpectedToken
	// CannotFindIdent means a name did not resolve in the scope chain.
	CannotFindIdent
	// InternalErr is a parser invariant violation.
	InternalErr
)

// Sentinel errors for use with errors.Is.
var (
	ErrExpectToken     = errors.New("expected token")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrCannotFindIdent = errors.New("cannot find identifier")
	ErrInternal        = errors.New("internal parser error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case ExpectToken:
		return ErrExpectToken
	case UnexpectedToken:
		return ErrUnexpectedToken
	case CannotFindIdent:
		return ErrCannotFindIdent
	default:
		return ErrInternal
	}
}

func (k ErrorKind) String() string {
	return k.sentinel().Error()
}

// ParseError is the single error a parse returns. Which of Expected, Actual
// and Name is set depends on Kind.
type ParseError struct {
	Kind     ErrorKind
	Span     token.Span
	Expected token.Kind  // ExpectToken
	Actual   token.Token // UnexpectedToken
	Name     string      // CannotFindIdent

	// Suggestions holds visible names close to Name.
	Suggestions []string
	Message     string // optional detail
	Cause       error
}

func (e *ParseError) Error() string {
	var msg string
	switch e.Kind {
	case ExpectToken:
		msg = fmt.Sprintf("expected %s", quoteKind(e.Expected))
	case UnexpectedToken:
		msg = fmt.Sprintf("unexpected %s", describe(e.Actual))
	case CannotFindIdent:
		msg = fmt.Sprintf("cannot find identifier %q", e.Name)
	default:
		msg = "internal error"
	}
	if e.Message != "" {
		msg = msg + ": " + e.Message
	} else if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return fmt.Sprintf("parse error: %s at %s", msg, e.Span)
}

// Is matches the sentinel for the error's kind.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Hint suggests a visible name for a CannotFindIdent error, or returns ""
// when there is none.
func (e *ParseError) Hint() string {
	return suggest.Format(e.Suggestions)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func expectToken(expected token.Kind, span token.Span) *ParseError {
	return &ParseError{Kind: ExpectToken, Expected: expected, Span: span}
}

func unexpectedToken(actual token.Token, msg string, args ...any) *ParseError {
	return &ParseError{
		Kind:    UnexpectedToken,
		Actual:  actual,
		Span:    actual.Span,
		Message: fmt.Sprintf(msg, args...),
	}
}

func cannotFindIdent(name string, span token.Span) *ParseError {
	return &ParseError{Kind: CannotFindIdent, Name: name, Span: span}
}

func internalErr(span token.Span, msg string, args ...any) *ParseError {
	return &ParseError{Kind: InternalErr, Span: span, Message: fmt.Sprintf(msg, args...)}
}

func quoteKind(k token.Kind) string {
	switch {
	case k == token.EOF, k == token.Ident, k.IsLiteral():
		return k.String()
	default:
		return fmt.Sprintf("'%s'", k)
	}
}

func describe(t token.Token) string {
	switch {
	case t.Kind == token.EOF:
		return "end of input"
	case t.Kind == token.Ident:
		return fmt.Sprintf("identifier %q", t.Text)
	case t.Kind.IsLiteral():
		return fmt.Sprintf("%s %s", t.Kind, t)
	default:
		return fmt.Sprintf("'%s'", t.Kind)
	}
}
