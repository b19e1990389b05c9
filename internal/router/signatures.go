package router

import (
	"regexp"

	"github.com/yourusername/slip-tracker/internal/models"
)

// signature is a fixed fingerprint for one issuing sportsbook. Weights favor
// distinctive hints (the book's own name) over shared slip vocabulary, and the
// total weight doubles as the specificity tie-breaker.
type signature struct {
	format models.SourceFormat
	hints  []hint
}

type hint struct {
	re     *regexp.Regexp
	weight int
}

func (s signature) score(upperText string) int {
	total := 0
	for _, h := range s.hints {
		if h.re.MatchString(upperText) {
			total += h.weight
		}
	}
	return total
}

func (s signature) specificity() int {
	total := 0
	for _, h := range s.hints {
		total += h.weight
	}
	return total
}

// Fingerprints are matched against the uppercased raw text. Misspellings seen
// in OCR output (CEASARS) are included deliberately.
var knownSignatures = []signature{
	{
		format: models.FormatHardRock,
		hints: []hint{
			{regexp.MustCompile(`\bHARD\s*ROCK(\s*BET)?\b`), 5},
			{regexp.MustCompile(`\bSGP(MAX)?\b`), 2},
			{regexp.MustCompile(`\bCASH\s*OUT\b`), 1},
			{regexp.MustCompile(`\bMY\s*BETS\b`), 1},
			{regexp.MustCompile(`\bID:\b`), 1},
			{regexp.MustCompile(`\bWAGER\b`), 1},
			{regexp.MustCompile(`\bPAYOUT\b`), 1},
		},
	},
	{
		format: models.FormatDraftKings,
		hints: []hint{
			{regexp.MustCompile(`\bDRAFT\s*KINGS\b`), 5},
			{regexp.MustCompile(`(?:^|\s)DK(?:\s|$)`), 2},
			{regexp.MustCompile(`\bSAME\s*GAME\s*PARLAY\b`), 1},
			{regexp.MustCompile(`\bPROFIT\s*BOOST\b`), 1},
		},
	},
	{
		format: models.FormatFanDuel,
		hints: []hint{
			{regexp.MustCompile(`\bFAN\s*DUEL\b`), 5},
			{regexp.MustCompile(`(?:^|\s)FD(?:\s|$)`), 2},
			{regexp.MustCompile(`\bODDS\s*BOOST\b`), 1},
			{regexp.MustCompile(`\bSAME\s*GAME\s*PARLAY\b`), 1},
		},
	},
	{
		format: models.FormatBetMGM,
		hints: []hint{
			{regexp.MustCompile(`\bBET\s*MGM\b`), 5},
			{regexp.MustCompile(`\bMGM\b`), 2},
		},
	},
	{
		format: models.FormatCaesars,
		hints: []hint{
			{regexp.MustCompile(`\bCAESARS\b`), 5},
			{regexp.MustCompile(`\bCEASARS\b`), 4},
			{regexp.MustCompile(`\bEMPEROR\b`), 1},
		},
	},
}
