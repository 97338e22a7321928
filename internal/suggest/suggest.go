// Package suggest finds near misses for misspelled identifiers.
package suggest

import (
	"sort"
	"strings"
)

// MaxDistance is the largest edit distance reported for names longer than
// five characters. Shorter names allow fewer edits.
const MaxDistance = 3

// MaxSuggestions caps the number of names returned by Similar.
const MaxSuggestions = 3

// Suggestion is a candidate name with its edit distance from the target.
type Suggestion struct {
	Value    string
	Distance int
}

// Similar returns up to MaxSuggestions candidates close to target, nearest
// first and then alphabetically. Comparison is case-insensitive; an exact
// match is not a suggestion.
func Similar(target string, candidates []string) []Suggestion {
	if target == "" || len(candidates) == 0 {
		return nil
	}
	target = strings.ToLower(target)
	limit := threshold(len(target))

	var out []Suggestion
	seen := map[string]bool{}
	for _, candidate := range candidates {
		lower := strings.ToLower(candidate)
		if candidate == "" || lower == target || seen[candidate] {
			continue
		}
		seen[candidate] = true
		if d := distance(target, lower); d <= limit {
			out = append(out, Suggestion{Value: candidate, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// Values returns the suggested names.
func Values(suggestions []Suggestion) []string {
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Value
	}
	return out
}

// Format renders names as a hint, or "" when there are none.
func Format(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + names[0] + "'?"
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = "'" + name + "'"
	}
	return "did you mean one of " + strings.Join(quoted, ", ") + "?"
}

func threshold(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 5:
		return 2
	}
	return MaxDistance
}

// distance is the Levenshtein distance over runes, kept to two rows.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return len(rb)
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
