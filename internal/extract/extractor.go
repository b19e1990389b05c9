// Package extract pulls structured fields out of classified leg blocks using
// sportsbook and bet-type specific templates.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/classify"
	"github.com/yourusername/slip-tracker/internal/fuzzy"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
)

// participantThreshold is the minimum fuzzy score for correcting an extracted
// name to a dictionary entry.
const participantThreshold = 0.6

// Extractor extracts ParsedLeg fields from leg blocks.
type Extractor struct {
	logger *logrus.Logger
}

// New creates an Extractor.
func New(logger *logrus.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract builds a ParsedLeg from a classified block. Fields are extracted
// independently; a missing mandatory field (odds, at least one participant)
// returns a LegError wrapping models.ErrFieldParseFailure and the leg is
// dropped by the caller. Missing optional fields never fail the leg.
func (e *Extractor) Extract(block models.LegBlock, league models.League, betType models.BetType, format models.SourceFormat) (models.ParsedLeg, error) {
	tpl := templateFor(format, betType)
	text := block.Text

	leg := models.ParsedLeg{
		League:   league,
		BetType:  betType,
		RawBlock: text,
	}

	odds, ok := extractOdds(tpl, text)
	if !ok {
		return leg, models.NewLegError(block.Index, "odds", models.ErrFieldParseFailure)
	}
	leg.Odds = odds

	fieldsFound, fieldsExpected := 1, 2 // odds found; participants pending

	switch betType {
	case models.BetTypeProp:
		player, stat, side, line, ok := extractProp(tpl, text)
		if !ok {
			return leg, models.NewLegError(block.Index, "participant", models.ErrFieldParseFailure)
		}
		leg.Participants = []string{player}
		leg.Stat = stat
		leg.Side = side
		leg.Line = line
		fieldsFound++
		fieldsExpected += 2 // stat + line
		if stat != "" {
			fieldsFound++
		}
		if line != nil {
			fieldsFound++
		}

	case models.BetTypeTotal:
		side, line, ok := extractOverUnder(tpl, text)
		fieldsExpected++ // line
		if ok {
			leg.Side = side
			leg.Line = line
			fieldsFound++
		}
		// the matchup anchors event matching; totals carry it as a single
		// participant
		if anchor := extractMatchupAnchor(tpl, league, text); anchor != "" {
			leg.Participants = []string{anchor}
			fieldsFound++
		} else {
			return leg, models.NewLegError(block.Index, "participant", models.ErrFieldParseFailure)
		}

	case models.BetTypeSpread:
		team, line, ok := extractSpread(tpl, league, text)
		if !ok {
			return leg, models.NewLegError(block.Index, "participant", models.ErrFieldParseFailure)
		}
		leg.Participants = participantsWithOpponent(tpl, league, text, team)
		leg.Line = line
		fieldsFound += 2
		fieldsExpected++ // line

	default: // moneyline
		team := bestDictionaryMatch(league, text)
		if team == "" {
			// keyword leagues (UFC, soccer) have no fixed dictionary; fall
			// back to the first proper-name sequence in the block
			team = firstProperName(text)
		}
		if team == "" {
			return leg, models.NewLegError(block.Index, "participant", models.ErrFieldParseFailure)
		}
		leg.Participants = participantsWithOpponent(tpl, league, text, team)
		fieldsFound++
	}

	fieldsExpected += 2 // stake + payout, optional but counted for confidence
	if stake := extractMoney(tpl.stake, text); stake != nil {
		leg.Stake = stake
		fieldsFound++
	} else if fallback := extractMoney(tpl.moneyFall, text); fallback != nil && betType != models.BetTypeProp {
		leg.Stake = fallback
		fieldsFound++
	}
	if payout := extractMoney(tpl.payout, text); payout != nil {
		leg.Payout = payout
		fieldsFound++
	}

	leg.Confidence = float64(fieldsFound) / float64(fieldsExpected)

	metrics.LegsParsedTotal.WithLabelValues(string(betType)).Inc()

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"bet_type":     betType,
			"league":       league,
			"participants": leg.Participants,
			"odds":         leg.Odds,
			"confidence":   leg.Confidence,
		}).Debug("Extracted leg")
	}

	return leg, nil
}

// extractOdds finds the American odds token. A value of exactly zero or a
// missing token is an extraction failure, never defaulted.
func extractOdds(tpl fieldTemplate, text string) (int, bool) {
	for _, m := range tpl.odds.FindAllStringSubmatch(text, -1) {
		v, err := strconv.Atoi(m[1])
		if err != nil || v == 0 {
			continue
		}
		return v, true
	}
	return 0, false
}

func extractOverUnder(tpl fieldTemplate, text string) (models.Side, *float64, bool) {
	m := tpl.overUnder.FindStringSubmatch(text)
	if m == nil {
		return models.SideNone, nil, false
	}
	side := models.SideOver
	if strings.EqualFold(m[1], "UNDER") {
		side = models.SideUnder
	}
	line, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return side, nil, false
	}
	return side, &line, true
}

func extractProp(tpl fieldTemplate, text string) (player, stat string, side models.Side, line *float64, ok bool) {
	m := tpl.player.FindStringSubmatch(text)
	if m == nil {
		return "", "", models.SideNone, nil, false
	}
	player = strings.TrimSpace(m[1])
	stat = classify.NormalizeStat(trimStatTail(m[2]))

	if s, l, found := extractOverUnder(tpl, text); found {
		side, line = s, l
	} else {
		lowered := strings.ToLower(text)
		switch {
		case strings.Contains(lowered, "anytime td"), strings.Contains(lowered, "to score"):
			side = models.SideYes
			stat = "anytime td"
		case strings.Contains(lowered, " no "):
			side = models.SideNo
		}
	}
	return player, stat, side, line, true
}

// trimStatTail drops canonical side tokens that the greedy stat capture
// swallows ("Passing Yards OVER" -> "Passing Yards").
func trimStatTail(stat string) string {
	stat = strings.TrimSpace(stat)
	for _, tail := range []string{" OVER", " UNDER", " YES", " NO"} {
		if cut, found := strings.CutSuffix(stat, tail); found {
			return strings.TrimSpace(cut)
		}
	}
	return stat
}

func extractSpread(tpl fieldTemplate, league models.League, text string) (string, *float64, bool) {
	for _, m := range tpl.spread.FindAllStringSubmatch(text, -1) {
		raw := strings.TrimSpace(m[1])
		lowered := strings.ToLower(raw)
		if lowered == "over" || lowered == "under" || lowered == "yes" || lowered == "no" {
			continue
		}
		line, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		team := correctParticipant(league, raw)
		if team == "" {
			team = raw
		}
		return team, &line, true
	}
	return "", nil, false
}

// extractMatchupAnchor returns "Away @ Home" with both names dictionary
// corrected, a single corrected team, or "".
func extractMatchupAnchor(tpl fieldTemplate, league models.League, text string) string {
	if m := tpl.matchup.FindStringSubmatch(text); m != nil {
		away := correctParticipant(league, strings.TrimSpace(m[1]))
		home := correctParticipant(league, strings.TrimSpace(m[2]))
		if away != "" && home != "" {
			return away + " @ " + home
		}
	}
	return bestDictionaryMatch(league, text)
}

// participantsWithOpponent returns the picked team first, plus the opponent
// when the block names one, giving head-to-head legs their two participants.
func participantsWithOpponent(tpl fieldTemplate, league models.League, text, picked string) []string {
	participants := []string{picked}
	if m := tpl.matchup.FindStringSubmatch(text); m != nil {
		for _, raw := range []string{m[1], m[2]} {
			corrected := correctParticipant(league, strings.TrimSpace(raw))
			if corrected != "" && corrected != picked {
				participants = append(participants, corrected)
				break
			}
		}
	}
	return participants
}

// correctParticipant fuzzy-corrects a raw name to its league dictionary
// entry, absorbing OCR substitution errors. Empty when nothing clears the
// threshold or the league has no fixed dictionary.
func correctParticipant(league models.League, raw string) string {
	teams := classify.TeamsForLeague(league)
	if len(teams) == 0 || raw == "" {
		return ""
	}
	best, bestScore := "", 0.0
	for _, team := range teams {
		if score := fuzzy.PartialSimilarity(team, raw); score > bestScore {
			best, bestScore = team, score
		}
	}
	if bestScore < participantThreshold {
		return ""
	}
	return best
}

// bestDictionaryMatch scans the whole block for the strongest dictionary team.
func bestDictionaryMatch(league models.League, text string) string {
	teams := classify.TeamsForLeague(league)
	best, bestScore := "", 0.0
	for _, team := range teams {
		if score := fuzzy.PartialSimilarity(team, text); score > bestScore {
			best, bestScore = team, score
		}
	}
	if bestScore < participantThreshold {
		return ""
	}
	return best
}

var reProperName = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z'.-]+)*`)

// firstProperName returns the first capitalized name sequence in the block,
// used when the league carries no team dictionary.
func firstProperName(text string) string {
	return strings.TrimSpace(reProperName.FindString(text))
}

// extractMoney parses a currency-stripped decimal captured by re.
func extractMoney(re *regexp.Regexp, text string) *decimal.Decimal {
	if re == nil {
		return nil
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return nil
	}
	return &v
}
