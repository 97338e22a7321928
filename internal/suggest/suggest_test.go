package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"count", "cuont", 2},
		{"same", "same", 0},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, distance(tt.a, tt.b), "%q %q", tt.a, tt.b)
		assert.Equal(t, tt.expected, distance(tt.b, tt.a), "%q %q", tt.b, tt.a)
	}
}

func TestSimilar(t *testing.T) {
	candidates := []string{"count", "counter", "amount", "int", "Count", "x", "count"}
	got := Similar("cout", candidates)
	require.Equal(t, []Suggestion{{"Count", 1}, {"count", 1}}, got)

	require.Equal(t, []string{"int"}, Values(Similar("imt", []string{"int", "double"})))
	require.Empty(t, Similar("x", candidates))
	require.Empty(t, Similar("", candidates))
	require.Empty(t, Similar("zzzzzz", candidates))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "", Format(nil))
	require.Equal(t, "did you mean 'count'?", Format([]string{"count"}))
	require.Equal(t, "did you mean one of 'a', 'b'?", Format([]string{"a", "b"}))
}
