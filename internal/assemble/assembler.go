// Package assemble combines extracted legs into a validated slip-level record
// with stable leg identifiers and reconciled money fields.
package assemble

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/models"
)

// stakeTolerance absorbs rounding differences between the stated slip stake
// and the summed per-leg stakes before the mismatch counts as an inconsistency.
var stakeTolerance = decimal.NewFromFloat(0.01)

// Totals carries the slip-level money fields extracted from the full
// normalized text rather than from any single leg block. Parlay slips state
// stake and payout once for the whole ticket.
type Totals struct {
	Stake  *decimal.Decimal
	Payout *decimal.Decimal
	Odds   *int
}

// Assembler builds ParsedSlip records from extracted legs.
type Assembler struct {
	validate *validator.Validate
	logger   *logrus.Logger
	now      func() uuid.UUID
}

// New creates an Assembler.
func New(logger *logrus.Logger) *Assembler {
	return &Assembler{
		validate: validator.New(),
		logger:   logger,
		now:      uuid.New,
	}
}

// Assemble produces the slip record. A stake mismatch between the stated
// total and the summed leg stakes sets StakeInconsistent and returns
// models.ErrAssemblyInconsistent alongside the usable slip; the caller decides
// whether to warn or reject. Zero legs is a hard failure.
func (a *Assembler) Assemble(format models.SourceFormat, legs []models.ParsedLeg, totals Totals, ingestedAt time.Time) (models.ParsedSlip, error) {
	if len(legs) == 0 {
		return models.ParsedSlip{}, models.ErrParseFailure
	}

	slip := models.ParsedSlip{
		SlipID:       a.now(),
		SourceFormat: format,
		Legs:         make([]models.ParsedLeg, len(legs)),
		TotalPayout:  totals.Payout,
		TotalOdds:    totals.Odds,
		IngestedAt:   ingestedAt,
	}

	for i, leg := range legs {
		leg.LegID = legID(i, leg)
		slip.Legs[i] = leg
	}

	legSum, allLegsStaked := models.SumLegStakes(legs)

	switch {
	case totals.Stake != nil:
		slip.TotalStake = *totals.Stake
	case allLegsStaked:
		slip.TotalStake = legSum
	}

	if totals.Odds == nil && len(legs) == 1 {
		odds := legs[0].Odds
		slip.TotalOdds = &odds
	}

	if err := a.validate.Struct(&slip); err != nil {
		return models.ParsedSlip{}, fmt.Errorf("slip validation: %w", err)
	}

	if totals.Stake != nil && allLegsStaked {
		if totals.Stake.Sub(legSum).Abs().GreaterThan(stakeTolerance) {
			slip.StakeInconsistent = true
			if a.logger != nil {
				a.logger.WithFields(logrus.Fields{
					"slip_id":      slip.SlipID,
					"stated_stake": totals.Stake,
					"leg_sum":      legSum,
				}).Warn("Stated slip stake disagrees with summed leg stakes")
			}
			return slip, models.ErrAssemblyInconsistent
		}
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"slip_id": slip.SlipID,
			"format":  format,
			"legs":    len(slip.Legs),
			"parlay":  slip.IsParlay(),
		}).Info("Assembled slip")
	}

	return slip, nil
}

// legID derives a stable identifier from the leg position and its extracted
// content, so re-ingesting the same text yields the same leg identifiers.
func legID(index int, leg models.ParsedLeg) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%v|%d", index, leg.BetType, leg.Stat, leg.Participants, leg.Odds)
	if leg.Line != nil {
		fmt.Fprintf(h, "|%.1f", *leg.Line)
	}
	return fmt.Sprintf("leg-%d-%s", index, hex.EncodeToString(h.Sum(nil))[:12])
}
