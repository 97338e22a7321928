package parser

import "github.com/cloudcmds/c0/token"

// reader wraps a token stream with one token of lookahead and the matching
// helpers used by the productions.
type reader struct {
	stream  token.Stream
	peeked  token.Token
	hasPeek bool
	done    bool
}

func newReader(stream token.Stream) *reader {
	return &reader{stream: stream}
}

// peek returns the next token without consuming it.
func (r *reader) peek() (token.Token, bool) {
	if r.hasPeek {
		return r.peeked, true
	}
	if r.done {
		return token.Token{}, false
	}
	tok, ok := r.stream.Next()
	if !ok {
		r.done = true
		return token.Token{}, false
	}
	r.peeked, r.hasPeek = tok, true
	return tok, true
}

// next consumes and returns the next token.
func (r *reader) next() (token.Token, bool) {
	tok, ok := r.peek()
	if ok {
		r.hasPeek = false
	}
	return tok, ok
}

// peekIs reports whether the next token has the given kind.
func (r *reader) peekIs(kind token.Kind) bool {
	tok, ok := r.peek()
	return ok && tok.Is(kind)
}

// expect consumes the next token and returns it if it has the given kind.
// A mismatch is reported at the offending token's span, exhaustion at the
// zero span.
func (r *reader) expect(kind token.Kind) (token.Token, error) {
	tok, ok := r.next()
	if !ok {
		return token.Token{}, expectToken(kind, token.Zero())
	}
	if !tok.Is(kind) {
		return tok, expectToken(kind, tok.Span)
	}
	return tok, nil
}

// tryConsume consumes the next token only if it has the given kind.
func (r *reader) tryConsume(kind token.Kind) bool {
	_, ok := r.tryConsumeSpan(kind)
	return ok
}

// tryConsumeSpan is tryConsume that also yields the consumed token's span.
func (r *reader) tryConsumeSpan(kind token.Kind) (token.Span, bool) {
	if !r.peekIs(kind) {
		return token.Span{}, false
	}
	tok, _ := r.next()
	return tok.Span, true
}

// expectMapOr always consumes one token. A token of the given kind is
// passed to onMatch, any other token to onMismatch so the caller can try an
// alternate production.
func expectMapOr[T any](r *reader, kind token.Kind, onMatch func(token.Token) T, onMismatch func(token.Token) (T, error)) (T, error) {
	tok, ok := r.next()
	if !ok {
		var zero T
		return zero, expectToken(kind, token.Zero())
	}
	if tok.Is(kind) {
		return onMatch(tok), nil
	}
	return onMismatch(tok)
}
