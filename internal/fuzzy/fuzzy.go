// Package fuzzy provides the similarity primitives used for noisy-text entity
// matching: participant validation during extraction and leg-to-event binding.
package fuzzy

import (
	"strings"
	"unicode"
)

// ocrFold maps characters OCR routinely confuses onto one canonical rune, so
// "Lakers" and "Laker5" or "0akland" and "Oakland" compare equal.
var ocrFold = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'5': 's',
	'8': 'b',
	'|': 'l',
	'!': 'l',
}

// Fold lowercases s and collapses OCR-confusable characters.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if folded, ok := ocrFold[r]; ok {
			r = folded
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Levenshtein returns the edit distance between a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

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
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// Similarity returns a normalized edit-distance score in [0,1], computed on
// OCR-folded text. Identical strings score 1.
func Similarity(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	if fa == fb {
		return 1
	}
	longest := len([]rune(fa))
	if l := len([]rune(fb)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(Levenshtein(fa, fb))/float64(longest)
}

// PartialSimilarity returns the best Similarity of needle against any
// token window of hay of the same token length. It tolerates a team nickname
// buried in a longer matchup line.
func PartialSimilarity(needle, hay string) float64 {
	needleTokens := Tokens(needle)
	hayTokens := Tokens(hay)
	if len(needleTokens) == 0 || len(hayTokens) == 0 {
		return 0
	}
	if len(needleTokens) >= len(hayTokens) {
		return Similarity(strings.Join(needleTokens, " "), strings.Join(hayTokens, " "))
	}

	best := 0.0
	window := len(needleTokens)
	joined := strings.Join(needleTokens, " ")
	for i := 0; i+window <= len(hayTokens); i++ {
		score := Similarity(joined, strings.Join(hayTokens[i:i+window], " "))
		if score > best {
			best = score
		}
	}
	return best
}

// TokenOverlap returns the fraction of a's tokens present in b after folding,
// with near-equal tokens (similarity >= 0.8) counting as present.
func TokenOverlap(a, b string) float64 {
	aTokens := Tokens(a)
	bTokens := Tokens(b)
	if len(aTokens) == 0 {
		return 0
	}

	matched := 0
	for _, at := range aTokens {
		for _, bt := range bTokens {
			if Similarity(at, bt) >= 0.8 {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(aTokens))
}

// Tokens splits s into folded alphanumeric tokens.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
