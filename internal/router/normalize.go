package router

import (
	"regexp"
	"strings"

	"github.com/yourusername/slip-tracker/internal/models"
)

// SeparatorLine is the canonical section marker the router emits wherever a
// book-specific glyph row or blank gap separated sections of the slip. The
// segmenter splits on it.
const SeparatorLine = "--"

type replacement struct {
	re   *regexp.Regexp
	with string
}

// ruleset rewrites one book's labels and abbreviations into the canonical
// vocabulary. The generic ruleset always runs after the book-specific one, so
// a book ruleset only needs the labels that differ.
type ruleset struct {
	replacements []replacement
	dropLines    *regexp.Regexp // footer/boilerplate lines removed outright
}

var genericRules = ruleset{
	replacements: []replacement{
		{regexp.MustCompile(`(?i)\bMONEY\s*LINE\b|\bMONEYLINE\b|(?:^|\s)M/?L(?:\s|$)`), " MONEYLINE "},
		{regexp.MustCompile(`(?i)\bO/U\b|\bOVER/UNDER\b`), "TOTAL"},
		{regexp.MustCompile(`(?i)\bSAME\s*GAME\s*PARLAY\b|\bSGP(?:MAX)?\b`), "PARLAY"},
		{regexp.MustCompile(`(?i)\b(?:RISK|WAGER|BET\s*AMOUNT)\b`), "STAKE"},
		{regexp.MustCompile(`(?i)\b(?:TO\s*WIN|PAID|RETURNS|TOTAL\s*PAYOUT)\b`), "PAYOUT"},
		{regexp.MustCompile(`(?i)\bOVER\b`), "OVER"},
		{regexp.MustCompile(`(?i)\bUNDER\b`), "UNDER"},
		{regexp.MustCompile(`\s+@\s+|\s+(?i:VS\.?)\s+`), " @ "},
	},
	dropLines: regexp.MustCompile(`(?i)^\s*(?:CASH\s*OUT|MY\s*BETS|BET\s*SLIP|SHARE|ODDS\s*BOOST|PROFIT\s*BOOST(?:ED)?)\s*$`),
}

var bookRules = map[models.SourceFormat]ruleset{
	models.FormatHardRock: {
		replacements: []replacement{
			{regexp.MustCompile(`(?i)^\s*HARD\s*ROCK(\s*BET)?\s*$`), ""},
		},
		dropLines: regexp.MustCompile(`(?i)^\s*ID:\s*\S*\s*$`),
	},
	models.FormatDraftKings: {
		replacements: []replacement{
			{regexp.MustCompile(`(?i)^\s*DRAFT\s*KINGS\s*$`), ""},
		},
	},
	models.FormatFanDuel: {
		replacements: []replacement{
			{regexp.MustCompile(`(?i)^\s*FAN\s*DUEL\s*$`), ""},
		},
	},
	models.FormatBetMGM: {
		replacements: []replacement{
			{regexp.MustCompile(`(?i)^\s*BET\s*MGM\s*$`), ""},
		},
	},
	models.FormatCaesars: {
		replacements: []replacement{
			{regexp.MustCompile(`(?i)^\s*C(?:AE|EA)SARS(\s*SPORTSBOOK)?\s*$`), ""},
		},
	},
}

// glyph rows OCR produces for horizontal rules and card borders
var separatorGlyphs = regexp.MustCompile(`^[\s\-_=~.•|*]+$`)

var spaceRuns = regexp.MustCompile(`[ \t]{2,}`)

// normalize rewrites raw text into the canonical vocabulary and line
// structure. It never fails: unknown formats get the generic ruleset only.
func normalize(raw string, format models.SourceFormat) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	book, hasBook := bookRules[format]

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" || separatorGlyphs.MatchString(line) {
			if len(out) > 0 && out[len(out)-1] != SeparatorLine {
				out = append(out, SeparatorLine)
			}
			continue
		}

		if hasBook {
			if book.dropLines != nil && book.dropLines.MatchString(line) {
				continue
			}
			for _, r := range book.replacements {
				line = r.re.ReplaceAllString(line, r.with)
			}
		}
		if genericRules.dropLines.MatchString(line) {
			continue
		}
		for _, r := range genericRules.replacements {
			line = r.re.ReplaceAllString(line, r.with)
		}

		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	// trim leading/trailing separators
	for len(out) > 0 && out[0] == SeparatorLine {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == SeparatorLine {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}
