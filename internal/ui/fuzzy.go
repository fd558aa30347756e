package ui

import (
	"strings"

	"bfhlform/internal/model"
)

// fuzzyMatchScore matches needle as a case-insensitive subsequence of
// haystack and returns (cost, ok). Lower cost is better: each matched rune
// costs the number of runes skipped since the previous match, except a
// match at the start of a word, which is free.
func fuzzyMatchScore(needle, haystack string) (int, bool) {
	n := []rune(strings.ToLower(needle))
	h := []rune(strings.ToLower(haystack))
	if len(n) == 0 {
		return 0, true
	}

	cost, prev, j := 0, -1, 0
	for i := 0; i < len(h) && j < len(n); i++ {
		if h[i] != n[j] {
			continue
		}
		if !wordStart(h, i) {
			cost += i - prev - 1
		}
		prev = i
		j++
	}
	if j != len(n) {
		return 0, false
	}
	return cost, true
}

func wordStart(s []rune, i int) bool {
	return i == 0 || s[i-1] == ' ' || s[i-1] == '_'
}

// fieldScore matches against both the label and the wire name, so typing
// either "hla" or "highest_" lands on the same option.
func fieldScore(needle string, f model.Field) (int, bool) {
	best, found := 0, false
	for _, name := range []string{f.Label(), string(f)} {
		if s, ok := fuzzyMatchScore(needle, name); ok && (!found || s < best) {
			best, found = s, true
		}
	}
	return best, found
}

// matchField picks the filter option that best matches needle.
// Ties go to the earlier option.
func matchField(needle string) (model.Field, bool) {
	var (
		best  model.Field
		score = -1
	)
	for _, f := range model.Fields() {
		s, ok := fieldScore(needle, f)
		if !ok {
			continue
		}
		if score < 0 || s < score {
			best, score = f, s
		}
	}
	return best, score >= 0
}
