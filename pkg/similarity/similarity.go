// Package similarity scores how closely an issue keyword appears inside free
// text, tolerating typos and small wording differences.
package similarity

import (
	"strings"
	"unicode"
)

// DefaultThreshold rejects matches that need more edits than 40% of the
// keyword length.
const DefaultThreshold = 0.4

// Normalize lowercases input, turns punctuation into separators and joins
// the remaining tokens with single spaces.
func Normalize(input string) string {
	tokens := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(tokens, " ")
}

// Score returns the normalized edit distance between keyword and the closest
// substring of text: 0 means keyword occurs verbatim, 1 means nothing in
// text resembles it. The position of the match inside text does not affect
// the score.
func Score(keyword, text string) float64 {
	p := []rune(Normalize(keyword))
	t := []rune(Normalize(text))
	if len(p) == 0 {
		return 1
	}

	dist := substringDistance(p, t)
	if dist >= len(p) {
		return 1
	}
	return float64(dist) / float64(len(p))
}

// Within reports whether keyword matches text with a score at or below
// threshold.
func Within(keyword, text string, threshold float64) (float64, bool) {
	s := Score(keyword, text)
	return s, s <= threshold
}

// substringDistance is the minimum Levenshtein distance between p and any
// substring of t. The first row is all zeros so a match may start anywhere.
func substringDistance(p, t []rune) int {
	prev := make([]int, len(t)+1)
	cur := make([]int, len(t)+1)

	for i := 1; i <= len(p); i++ {
		cur[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if p[i-1] == t[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	best := len(p)
	for _, d := range prev {
		if d < best {
			best = d
		}
	}
	return best
}
