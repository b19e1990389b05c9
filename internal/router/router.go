// Package router classifies raw slip text by issuing sportsbook and rewrites
// it into one canonical token and line stream.
package router

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
)

// DefaultMinScore is the minimum signature score required to claim a format.
// A lone shared-vocabulary hint (WAGER, PAYOUT) is never enough on its own.
const DefaultMinScore = 2

// Router detects the issuing sportsbook and normalizes raw text.
type Router struct {
	minScore int
	logger   *logrus.Logger
}

// New creates a Router. minScore <= 0 selects DefaultMinScore.
func New(minScore int, logger *logrus.Logger) *Router {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &Router{minScore: minScore, logger: logger}
}

// Route scores every known sportsbook signature against the raw text and
// rewrites the text with the winner's ruleset. Below-threshold detection is
// not an error: the text still gets best-effort generic normalization and the
// format comes back FormatUnknown.
func (r *Router) Route(raw models.RawText) models.NormalizedText {
	format, confidence := r.detect(raw.Text)

	normalized := models.NormalizedText{
		Text:       normalize(raw.Text, format),
		Format:     format,
		Confidence: confidence,
	}

	metrics.SlipsRoutedTotal.WithLabelValues(string(format)).Inc()

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{
			"format":     format,
			"confidence": confidence,
			"chars":      len(raw.Text),
		}).Debug("Routed slip text")
	}

	return normalized
}

// detect returns the highest-scoring signature at or above the minimum score.
// Ties break toward the more specific signature (higher total hint weight).
func (r *Router) detect(text string) (models.SourceFormat, float64) {
	upper := strings.ToUpper(text)

	best := models.FormatUnknown
	bestScore, bestSpecificity, bestPossible := 0, 0, 1

	for _, sig := range knownSignatures {
		score := sig.score(upper)
		if score < r.minScore {
			continue
		}
		spec := sig.specificity()
		if score > bestScore || (score == bestScore && spec > bestSpecificity) {
			best = sig.format
			bestScore = score
			bestSpecificity = spec
			bestPossible = spec
		}
	}

	if best == models.FormatUnknown {
		return best, 0
	}
	return best, float64(bestScore) / float64(bestPossible)
}
