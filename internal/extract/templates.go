package extract

import (
	"regexp"

	"github.com/yourusername/slip-tracker/internal/models"
)

// fieldTemplate carries the field patterns for one (SourceFormat, BetType)
// pairing. Because the router has already rewritten book vocabulary into
// canonical tokens, most books share the generic patterns; a book entry only
// overrides the fields where its layout still differs after normalization.
type fieldTemplate struct {
	odds      *regexp.Regexp
	stake     *regexp.Regexp
	payout    *regexp.Regexp
	overUnder *regexp.Regexp
	spread    *regexp.Regexp
	player    *regexp.Regexp
	matchup   *regexp.Regexp
	moneyFall *regexp.Regexp // bare currency amount, stake fallback
}

type templateKey struct {
	format  models.SourceFormat
	betType models.BetType
}

// Shared canonical patterns. RE2 has no lookbehind, so the odds token guards
// against decimals with an explicit boundary group.
var (
	reOdds      = regexp.MustCompile(`(?:^|[^\d.])([+-]\d{2,4})(?:[^\d.]|$)`)
	reStake     = regexp.MustCompile(`(?i)STAKE:?\s*\$?([\d,]+(?:\.\d+)?)`)
	rePayout    = regexp.MustCompile(`(?i)PAYOUT:?\s*\$?([\d,]+(?:\.\d+)?)`)
	reOverUnder = regexp.MustCompile(`\b(OVER|UNDER)\s*([0-9]+(?:\.[0-9]+)?)\b`)
	// leading digits allowed: "49ers", and OCR renders "Lakers" as "Laker5"
	reSpread    = regexp.MustCompile(`([A-Za-z0-9][A-Za-z0-9 .'-]*?)\s*([+-]\d{1,2}(?:\.\d)?)(?:\s|$)`)
	// OCR renders the printed name/stat separator as a hyphen, en dash, em
	// dash or colon
	rePlayer    = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z'.-]+)+)\s*[-\x{2013}\x{2014}:]\s*([A-Za-z -]+)`)
	reMatchup   = regexp.MustCompile(`([A-Za-z][A-Za-z .'-]+?)\s+@\s+([A-Za-z][A-Za-z .'-]+)`)
	reMoneyBare = regexp.MustCompile(`\$([\d,]+(?:\.\d+)?)`)
)

var genericTemplate = fieldTemplate{
	odds:      reOdds,
	stake:     reStake,
	payout:    rePayout,
	overUnder: reOverUnder,
	spread:    reSpread,
	player:    rePlayer,
	matchup:   reMatchup,
	moneyFall: reMoneyBare,
}

// templates is the closed dispatch table. Lookup falls back to the generic
// template for any (format, betType) pair without an explicit entry.
var templates = buildTemplates()

func buildTemplates() map[templateKey]fieldTemplate {
	t := make(map[templateKey]fieldTemplate)

	allTypes := []models.BetType{
		models.BetTypeMoneyline, models.BetTypeSpread, models.BetTypeTotal, models.BetTypeProp,
	}

	// Caesars prints ticket cost without the canonical STAKE label on some
	// layouts; accept its "TICKET COST" variant.
	caesars := genericTemplate
	caesars.stake = regexp.MustCompile(`(?i)(?:STAKE|TICKET\s*COST):?\s*\$?([\d,]+(?:\.\d+)?)`)
	for _, bt := range allTypes {
		t[templateKey{models.FormatCaesars, bt}] = caesars
	}

	// BetMGM prop rows separate the player and statistic with a bullet that
	// OCR reads as a period or pipe; the normalized text keeps the period.
	mgmProp := genericTemplate
	mgmProp.player = regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z'.-]+)+)\s*[-:.]\s*([A-Za-z -]+)`)
	t[templateKey{models.FormatBetMGM, models.BetTypeProp}] = mgmProp

	return t
}

// templateFor returns the template for the format and bet type, falling back
// to the generic league-agnostic template.
func templateFor(format models.SourceFormat, betType models.BetType) fieldTemplate {
	if tpl, ok := templates[templateKey{format, betType}]; ok {
		return tpl
	}
	return genericTemplate
}
