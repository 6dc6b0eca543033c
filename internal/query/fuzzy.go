package query

import (
	"strings"
)

// DefaultThreshold is the highest normalised edit distance still counted
// as a match.
const DefaultThreshold = 0.3

// Matcher scores how well a query appears somewhere inside a text. Lower
// scores are better; ok is false when the text does not match at all.
type Matcher interface {
	Score(query, text string) (score float64, ok bool)
}

// FuzzyMatcher finds the best approximate occurrence of the query in the
// text, anywhere in it, and normalises the edit distance by query length.
type FuzzyMatcher struct {
	Threshold float64
}

func NewFuzzyMatcher() FuzzyMatcher {
	return FuzzyMatcher{Threshold: DefaultThreshold}
}

func (m FuzzyMatcher) Score(query, text string) (float64, bool) {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return 0, false
	}
	t := []rune(strings.ToLower(text))

	d := substringDistance(q, t)
	score := float64(d) / float64(len(q))
	if score > m.Threshold {
		return score, false
	}
	return score, true
}

// substringDistance is the smallest edit distance between the pattern and
// any substring of the text. Starting a match anywhere in the text is free.
func substringDistance(pattern, text []rune) int {
	// col[i] holds the cost of matching pattern[:i] ending at the current
	// text position.
	col := make([]int, len(pattern)+1)
	for i := range col {
		col[i] = i
	}
	best := col[len(pattern)]

	for j := 1; j <= len(text); j++ {
		diag := col[0]
		col[0] = 0
		for i := 1; i <= len(pattern); i++ {
			cost := 1
			if pattern[i-1] == text[j-1] {
				cost = 0
			}
			prev := col[i]
			col[i] = min(col[i]+1, col[i-1]+1, diag+cost)
			diag = prev
		}
		if col[len(pattern)] < best {
			best = col[len(pattern)]
		}
	}
	return best
}

type scored struct {
	index int
	score float64
}

// bestScore returns the lowest score across fields.
func bestScore(m Matcher, query string, fields ...string) (float64, bool) {
	var (
		best  float64
		found bool
	)
	for _, f := range fields {
		if f == "" {
			continue
		}
		s, ok := m.Score(query, f)
		if !ok {
			continue
		}
		if !found || s < best {
			best, found = s, true
		}
	}
	return best, found
}
