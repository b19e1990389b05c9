package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"lakers", "lakers", 0},
		{"lakers", "laker", 1},
		{"lakers", "lkaers", 2},
		{"kitten", "sitting", 3},
		{"", "abc", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSimilarityFoldsOCRConfusables(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Laker5", "Lakers"))
	assert.Equal(t, 1.0, Similarity("0akland", "Oakland"))
	assert.Equal(t, 1.0, Similarity("Bi11s", "Bills"))
	assert.Less(t, Similarity("Lakers", "Celtics"), 0.5)
}

func TestPartialSimilarityFindsNicknameInMatchupLine(t *testing.T) {
	score := PartialSimilarity("Lakers", "Los Angeles Lakers @ Boston Celtics")
	assert.GreaterOrEqual(t, score, 0.99)

	score = PartialSimilarity("Maple Leafs", "Toronto Maple Leafs vs Montreal Canadiens")
	assert.GreaterOrEqual(t, score, 0.99)

	assert.Equal(t, 0.0, PartialSimilarity("", "anything"))
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("Kansas City Chiefs", "Chiefs Kansas City"))
	assert.InDelta(t, 0.5, TokenOverlap("Kansas Chiefs", "Kansas Jayhawks"), 0.01)
	assert.Equal(t, 0.0, TokenOverlap("", "Chiefs"))

	// noisy OCR tokens still overlap
	assert.Equal(t, 1.0, TokenOverlap("Chief5", "Chiefs"))
}
