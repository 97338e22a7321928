package token

// Stream supplies tokens in order. Exhaustion is signaled by Next returning
// false; there is no end-of-input sentinel token.
type Stream interface {
	Next() (Token, bool)
}

// SliceStream is a Stream over an in-memory slice of tokens.
type SliceStream struct {
	tokens []Token
	pos    int
}

// NewSliceStream returns a Stream that yields the given tokens in order.
func NewSliceStream(tokens []Token) *SliceStream {
	return &SliceStream{tokens: tokens}
}

// Next returns the next token, or false once all tokens are consumed.
func (s *SliceStream) Next() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, true
}

// Remaining returns the number of tokens not yet consumed.
func (s *SliceStream) Remaining() int {
	return len(s.tokens) - s.pos
}
