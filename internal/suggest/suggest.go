// Package suggest ranks known command names by similarity to a mistyped one.
package suggest

import (
	"cmp"
	"slices"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Suggestion pairs a known name with its similarity score (0-1, higher is better).
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DefaultThreshold is the minimum similarity score for a suggestion to be returned.
const DefaultThreshold = 0.5

// DefaultTopN is the maximum number of suggestions returned.
const DefaultTopN = 3

// Suggest returns known names similar to name, ranked by similarity score.
// Only suggestions scoring at least DefaultThreshold are returned, up to
// DefaultTopN results.
func Suggest(name string, known []string) []Suggestion {
	return SuggestN(name, known, DefaultTopN, DefaultThreshold)
}

// SuggestN returns up to topN known names similar to name, with score >= threshold.
func SuggestN(name string, known []string, topN int, threshold float64) []Suggestion {
	if name == "" || len(known) == 0 {
		return nil
	}

	normName := normalize(name)
	var results []Suggestion
	for _, k := range known {
		score := similarity(normName, normalize(k))
		if score >= threshold {
			results = append(results, Suggestion{Name: k, Score: score})
		}
	}

	slices.SortStableFunc(results, func(a, b Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

// similarity combines normalized Levenshtein distance with a shared-prefix
// bonus, capped at 1.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	maxLen := max(len(a), len(b))
	lev := 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
	prefixBonus := 0.1 * float64(commonPrefixLen(a, b)) / float64(maxLen)
	return min(lev+prefixBonus, 1.0)
}

// normalize lowercases s and joins its words with single hyphens, splitting
// on underscores, hyphens, spaces and camelCase boundaries.
func normalize(s string) string {
	runes := []rune(s)
	var parts []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			parts = append(parts, string(current))
			current = current[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			if prevLower || (prevUpper && nextLower) {
				flush()
			}
			current = append(current, unicode.ToLower(r))
		default:
			current = append(current, r)
		}
	}
	flush()
	return strings.Join(parts, "-")
}

// commonPrefixLen returns the length of the common prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
