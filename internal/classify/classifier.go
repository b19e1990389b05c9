// Package classify assigns each leg block a sport league and a bet-type
// category from keyword and structural signals.
package classify

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/fuzzy"
	"github.com/yourusername/slip-tracker/internal/models"
)

// DefaultMinConfidence is the confidence gate below which a classification is
// surfaced with models.ErrClassificationLowConfidence. Downstream stages
// decide whether to reject the leg.
const DefaultMinConfidence = 0.4

// teamMatchThreshold is the minimum fuzzy score for a dictionary nickname to
// count as present in a block.
const teamMatchThreshold = 0.75

var (
	// "Firstname Lastname - stat" shape used on player prop rows. OCR renders
	// the printed separator as a hyphen, en dash, em dash or colon.
	rePlayerStat = regexp.MustCompile(`(?m)([A-Z][a-z]+(?:\s+[A-Z][a-z'.-]+)+)\s*[-\x{2013}\x{2014}:]\s*([A-Za-z -]+)`)

	reOverUnder = regexp.MustCompile(`(?i)\b(OVER|UNDER)\s*([0-9]+(?:\.[0-9]+)?)\b`)
	reTotalKey  = regexp.MustCompile(`\bTOTAL\b`)

	// A point spread token: signed number with a decimal half point, or a
	// small signed integer that cannot be an odds token (odds are >= 2 digits).
	reSpreadToken = regexp.MustCompile(`(?:^|\s)[+-](?:\d{1,2}\.\d|\d)(?:\s|$)`)

	reMoneylineKey = regexp.MustCompile(`\bMONEYLINE\b|(?i)\b(?:TO WIN|WINNER)\b`)
	reOddsToken    = regexp.MustCompile(`(?:^|\s)[+-]\d{2,4}(?:\s|$)`)
)

// Result is the league and bet-type assignment for one leg block.
type Result struct {
	League     models.League
	BetType    models.BetType
	Confidence float64
}

// Classifier infers league and bet type per leg block.
type Classifier struct {
	minConfidence float64
	logger        *logrus.Logger
}

// New creates a Classifier. minConfidence <= 0 selects DefaultMinConfidence.
func New(minConfidence float64, logger *logrus.Logger) *Classifier {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Classifier{minConfidence: minConfidence, logger: logger}
}

// Classify assigns a league and bet type to the block. When several bet-type
// signals fire, the most specific wins: prop > total > spread > moneyline.
// Confidence below the gate returns models.ErrClassificationLowConfidence
// alongside a usable result; it never aborts the slip.
func (c *Classifier) Classify(block models.LegBlock) (Result, error) {
	league := c.detectLeague(block.Text)
	betType, signalsFound, signalsExpected := c.detectBetType(block.Text)

	if league != models.LeagueUnknown {
		signalsFound++
	}
	signalsExpected++

	result := Result{
		League:     league,
		BetType:    betType,
		Confidence: float64(signalsFound) / float64(signalsExpected),
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"league":     league,
			"bet_type":   betType,
			"confidence": result.Confidence,
		}).Debug("Classified leg block")
	}

	if result.Confidence < c.minConfidence {
		return result, models.ErrClassificationLowConfidence
	}
	return result, nil
}

// detectLeague votes with fuzzy team-dictionary matches and keyword nudges
// for the leagues without fixed team sets.
func (c *Classifier) detectLeague(text string) models.League {
	votes := make(map[models.League]int)
	lowered := strings.ToLower(text)

	for _, kw := range ufcKeywords {
		if strings.Contains(lowered, kw) {
			votes[models.LeagueUFC] += 2
			break
		}
	}
	for _, kw := range soccerKeywords {
		if strings.Contains(lowered, kw) {
			votes[models.LeagueSoccer] += 2
			break
		}
	}

	for _, league := range teamLeagues {
		for _, team := range teamsByLeague[league] {
			if fuzzy.PartialSimilarity(team, text) >= teamMatchThreshold {
				votes[league]++
			}
		}
	}

	if stat, ok := ContainsPropStat(text); ok {
		if hinted, ok := statLeagueHints[stat]; ok {
			votes[hinted]++
		}
	}

	best := models.LeagueUnknown
	bestVotes := 0
	for _, league := range append(teamLeagues, models.LeagueUFC, models.LeagueSoccer) {
		if votes[league] > bestVotes {
			best = league
			bestVotes = votes[league]
		}
	}
	return best
}

// detectBetType returns the bet type plus the count of expected signal tokens
// found, for the confidence fraction.
func (c *Classifier) detectBetType(text string) (models.BetType, int, int) {
	hasOdds := reOddsToken.MatchString(text)
	oddsSignal := 0
	if hasOdds {
		oddsSignal = 1
	}

	// prop: a named player plus a catalog statistic, regardless of
	// spread-like numbers elsewhere in the block
	if m := rePlayerStat.FindStringSubmatch(text); m != nil {
		if _, ok := ContainsPropStat(text); ok {
			found := 2 + oddsSignal // player + stat
			if reOverUnder.MatchString(text) {
				found++
			}
			return models.BetTypeProp, found, 4
		}
	}

	// total: explicit over/under or TOTAL marker, no prop signal
	if ou := reOverUnder.FindStringSubmatch(text); ou != nil {
		return models.BetTypeTotal, 2 + oddsSignal, 3 // side + line found
	}
	if reTotalKey.MatchString(text) {
		return models.BetTypeTotal, 1 + oddsSignal, 3
	}

	// spread: a handicap token next to a team
	if reSpreadToken.MatchString(text) {
		return models.BetTypeSpread, 1 + oddsSignal, 2
	}

	// moneyline: explicit marker, or the default when nothing else fires
	if reMoneylineKey.MatchString(text) {
		return models.BetTypeMoneyline, 1 + oddsSignal, 2
	}
	return models.BetTypeMoneyline, oddsSignal, 2
}
