// Package util provides common utility functions used across the codebase.
package util

import (
	"sort"
	"strings"
)

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// LevenshteinDistance returns the number of single-character edits between a and b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// suggestMaxDistance is the largest edit distance still offered as a suggestion.
const suggestMaxDistance = 2

// SuggestSimilar returns up to maxResults candidates close to input, closest
// first. Comparison is case-insensitive. Returns nil when nothing is close.
func SuggestSimilar(input string, candidates []string, maxResults int) []string {
	if input == "" || len(candidates) == 0 {
		return nil
	}

	type match struct {
		value    string
		distance int
	}
	var matches []match
	lower := strings.ToLower(input)
	for _, c := range candidates {
		if d := LevenshteinDistance(lower, strings.ToLower(c)); d <= suggestMaxDistance {
			matches = append(matches, match{c, d})
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.value
	}
	return out
}
