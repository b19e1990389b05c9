// Package segment splits canonical slip text into one block per wagered leg.
package segment

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/router"
)

// DefaultLookahead bounds how many lines past a candidate split point may be
// scanned for a leg anchor before the split is rejected.
const DefaultLookahead = 3

var (
	// An American odds token. Leg anchors are the strongest segmentation cue.
	reOddsToken = regexp.MustCompile(`(?:^|\s)[+-]\d{2,4}(?:\s|$)`)

	// Canonical bet-type keywords emitted by the router.
	reBetTypeKeyword = regexp.MustCompile(`\b(?:MONEYLINE|SPREAD|TOTAL|OVER|UNDER)\b`)

	// Lines that typically open a new selection on multi-leg slips.
	reLegStart = regexp.MustCompile(`(?i)^\s*(?:OVER|UNDER|YES|NO)\b|^\s*\d+\+|\bTO\s+RECORD\b|\bANYTIME\s+TD\b|\bTO\s+SCORE\b`)
)

// Segmenter splits normalized text into ordered leg blocks.
type Segmenter struct {
	lookahead int
	logger    *logrus.Logger
}

// New creates a Segmenter. lookahead <= 0 selects DefaultLookahead.
func New(lookahead int, logger *logrus.Logger) *Segmenter {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return &Segmenter{lookahead: lookahead, logger: logger}
}

// Segment splits the canonical stream on router separators and leg-start
// lines. A split point is accepted only when a leg anchor (odds token or
// bet-type keyword) follows within the lookahead window; otherwise the
// candidate is merged into the preceding block. Non-empty input always yields
// at least one block; input with no anchors at all yields exactly one block
// and models.ErrSegmentationDegenerate.
func (s *Segmenter) Segment(normalized models.NormalizedText) ([]models.LegBlock, error) {
	text := strings.TrimSpace(normalized.Text)
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")

	var blocks []models.LegBlock
	var current []string

	flush := func() {
		if len(current) == 0 {
			return
		}
		blocks = append(blocks, models.LegBlock{
			Index: len(blocks),
			Text:  strings.Join(current, "\n"),
		})
		current = nil
	}

	for i, line := range lines {
		if line == router.SeparatorLine {
			if len(current) > 0 && s.anchorWithin(lines, i+1) {
				flush()
			}
			// separator itself carries no slip content either way
			continue
		}

		if len(current) > 0 && reLegStart.MatchString(line) && s.anchorWithin(lines, i) {
			flush()
		}

		current = append(current, line)
	}
	flush()

	if len(blocks) == 0 {
		blocks = []models.LegBlock{{Index: 0, Text: text}}
	}

	if !hasAnchor(text) {
		if s.logger != nil {
			s.logger.WithField("blocks", len(blocks)).Debug("No leg anchors found, degenerate segmentation")
		}
		whole := []models.LegBlock{{Index: 0, Text: text}}
		return whole, models.ErrSegmentationDegenerate
	}

	return blocks, nil
}

// anchorWithin reports whether a leg anchor appears in the lookahead window
// starting at line index from.
func (s *Segmenter) anchorWithin(lines []string, from int) bool {
	end := from + s.lookahead
	if end > len(lines) {
		end = len(lines)
	}
	for i := from; i < end && i >= 0; i++ {
		if lines[i] == router.SeparatorLine {
			continue
		}
		if hasAnchor(lines[i]) {
			return true
		}
	}
	return false
}

func hasAnchor(text string) bool {
	return reOddsToken.MatchString(text) || reBetTypeKeyword.MatchString(text)
}
