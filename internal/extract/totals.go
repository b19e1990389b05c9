package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/slip-tracker/internal/models"
)

// Parlay tickets state combined odds on the PARLAY header line.
var reParlayLine = regexp.MustCompile(`(?m)^.*\bPARLAY\b.*$`)

// SlipTotals pulls the slip-level money fields from the full normalized text.
// Parlay tickets state stake and payout once for the whole slip, so these are
// read from the complete stream rather than from any leg block. Combined odds
// are taken from the PARLAY header line when one carries an odds token.
func SlipTotals(format models.SourceFormat, text string) (stake, payout *decimal.Decimal, odds *int) {
	tpl := templateFor(format, models.BetTypeMoneyline)

	stake = extractMoney(tpl.stake, text)
	payout = extractMoney(tpl.payout, text)

	if line := reParlayLine.FindString(text); line != "" {
		if m := reOdds.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil && v != 0 {
				odds = &v
			}
		}
	}

	if stake == nil && strings.Contains(text, "PARLAY") {
		stake = extractMoney(tpl.moneyFall, text)
	}
	return stake, payout, odds
}
