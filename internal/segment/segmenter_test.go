package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/router"
)

func normalized(text string) models.NormalizedText {
	return models.NormalizedText{Text: text, Format: models.FormatUnknown}
}

func TestSegmentSingleLeg(t *testing.T) {
	s := New(0, nil)

	blocks, err := s.Segment(normalized("Lakers -5.5 -110\nSTAKE $10.00\nPAYOUT $19.09"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "Lakers -5.5 -110")
}

func TestSegmentParlayOnSeparators(t *testing.T) {
	s := New(0, nil)

	text := strings.Join([]string{
		"Lakers -5.5 -110",
		router.SeparatorLine,
		"OVER 224.5 -105",
		router.SeparatorLine,
		"Chiefs MONEYLINE +120",
	}, "\n")

	blocks, err := s.Segment(normalized(text))
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Contains(t, blocks[0].Text, "Lakers")
	assert.Contains(t, blocks[1].Text, "OVER 224.5")
	assert.Contains(t, blocks[2].Text, "Chiefs")
}

func TestSegmentOrderIsPreserved(t *testing.T) {
	s := New(0, nil)

	text := strings.Join([]string{
		"Celtics -3.5 -108",
		router.SeparatorLine,
		"UNDER 210.5 -110",
	}, "\n")

	blocks, err := s.Segment(normalized(text))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	for i, b := range blocks {
		assert.Equal(t, i, b.Index)
	}
}

func TestSegmentRejectsSplitWithoutAnchor(t *testing.T) {
	s := New(0, nil)

	// The separator is followed by footer text with no odds token or bet-type
	// keyword inside the lookahead window, so it must merge into the
	// preceding block.
	text := strings.Join([]string{
		"Lakers -5.5 -110",
		router.SeparatorLine,
		"Thanks for playing",
		"Gamble responsibly",
	}, "\n")

	blocks, err := s.Segment(normalized(text))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "Gamble responsibly")
}

func TestSegmentLegStartLines(t *testing.T) {
	s := New(0, nil)

	text := strings.Join([]string{
		"OVER 285.5 -115",
		"Patrick Mahomes - Passing Yards",
		"OVER 5.5 -120",
		"Travis Kelce - Receptions",
	}, "\n")

	blocks, err := s.Segment(normalized(text))
	require.NoError(t, err)
	// the second OVER line opens a new selection even without a separator row
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0].Text, "Mahomes")
	assert.Contains(t, blocks[1].Text, "Kelce")
}

func TestSegmentDegenerateInput(t *testing.T) {
	s := New(0, nil)

	blocks, err := s.Segment(normalized("just some words\nno betting content here"))
	assert.ErrorIs(t, err, models.ErrSegmentationDegenerate)
	require.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "just some words")
}

func TestSegmentEmptyInput(t *testing.T) {
	s := New(0, nil)

	blocks, err := s.Segment(normalized(""))
	assert.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestSegmentCoversWholeInput(t *testing.T) {
	s := New(0, nil)

	text := strings.Join([]string{
		"Lakers -5.5 -110",
		router.SeparatorLine,
		"OVER 224.5 -105",
		"STAKE $25.00",
	}, "\n")

	blocks, err := s.Segment(normalized(text))
	require.NoError(t, err)

	joined := ""
	for _, b := range blocks {
		joined += b.Text + "\n"
	}
	for _, line := range strings.Split(text, "\n") {
		if line == router.SeparatorLine {
			continue
		}
		assert.Contains(t, joined, line, "line silently dropped between legs")
	}
}
