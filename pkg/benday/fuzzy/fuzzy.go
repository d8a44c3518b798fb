// Package fuzzy ranks names against a partly typed query, for picking block
// types in editors.
package fuzzy

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// Find returns the candidates that contain every rune of query in order,
// ignoring case. Tighter matches come first; ties are ordered by name. An
// empty query returns every candidate unchanged.
func Find(candidates []string, query string) []string {
	if query == "" {
		return candidates
	}

	type match struct {
		score int
		name  string
	}
	var matches []match
	for _, c := range candidates {
		if score, ok := Score(c, query); ok {
			matches = append(matches, match{score, c})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score < matches[j].score
		}
		return matches[i].name < matches[j].name
	})

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// Score measures how far apart the runes of query sit inside candidate: the
// sum of the runes skipped before each match. It reports false when some rune
// of query does not occur in order.
func Score(candidate, query string) (int, bool) {
	rest := []rune(folder.String(candidate))
	score := 0
	for _, r := range folder.String(query) {
		i := indexRune(rest, r)
		if i < 0 {
			return 0, false
		}
		score += i
		rest = rest[i+1:]
	}
	return score, true
}

// Best returns the top match for query, if any.
func Best(candidates []string, query string) (string, bool) {
	found := Find(candidates, strings.TrimSpace(query))
	if len(found) == 0 {
		return "", false
	}
	return found[0], true
}

func indexRune(rs []rune, r rune) int {
	for i, x := range rs {
		if x == r {
			return i
		}
	}
	return -1
}
