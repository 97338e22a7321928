package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cloudcmds/c0/token"
)

var punctuation = map[string]token.Kind{}

func init() {
	for k := token.While; k <= token.Or; k++ {
		punctuation[k.String()] = k
	}
}

// scan turns space separated words into tokens whose spans are the words'
// byte offsets in src. It only exists to keep the tests readable.
func scan(src string) []token.Token {
	var toks []token.Token
	offset := 0
	for _, word := range strings.Fields(src) {
		start := offset + strings.Index(src[offset:], word)
		offset = start + len(word)
		span := token.NewSpan(start, offset)
		toks = append(toks, classify(word, span))
	}
	return toks
}

func classify(word string, span token.Span) token.Token {
	if kind, ok := punctuation[word]; ok {
		return token.New(kind, span)
	}
	switch {
	case word == "true" || word == "false":
		return token.NewBool(word == "true", span)
	case strings.HasPrefix(word, `"`):
		return token.NewString(strings.Trim(word, `"`), span)
	case strings.HasPrefix(word, "'"):
		return token.NewChar(word[1], span)
	case unicode.IsDigit(rune(word[0])):
		if strings.Contains(word, ".") {
			f, _ := strconv.ParseFloat(word, 64)
			return token.NewFloat(f, span)
		}
		i, _ := strconv.ParseInt(word, 10, 64)
		return token.NewInt(i, span)
	default:
		return token.NewIdent(word, span)
	}
}
