package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceFormat identifies the sportsbook that issued a slip
type SourceFormat string

const (
	FormatHardRock   SourceFormat = "hardrock"
	FormatDraftKings SourceFormat = "draftkings"
	FormatFanDuel    SourceFormat = "fanduel"
	FormatBetMGM     SourceFormat = "betmgm"
	FormatCaesars    SourceFormat = "caesars"
	FormatUnknown    SourceFormat = "unknown"
)

// League represents a supported sport league
type League string

const (
	LeagueNFL     League = "NFL"
	LeagueNBA     League = "NBA"
	LeagueMLB     League = "MLB"
	LeagueNHL     League = "NHL"
	LeagueUFC     League = "UFC"
	LeagueSoccer  League = "SOCCER"
	LeagueUnknown League = ""
)

// BetType represents the category of a wagered leg
type BetType string

const (
	BetTypeMoneyline BetType = "moneyline"
	BetTypeSpread    BetType = "spread"
	BetTypeTotal     BetType = "total"
	BetTypeProp      BetType = "prop"
)

// Side represents the picked direction on a total or prop market
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideYes   Side = "yes"
	SideNo    Side = "no"
	SideNone  Side = ""
)

// RawText is the opaque OCR output handed to the pipeline. Regions are
// optional; when the detector supplies them they carry per-region confidence.
type RawText struct {
	Text    string      `json:"text"`
	Regions []TextRegion `json:"regions,omitempty"`
}

// TextRegion is a detected text region with its recognition confidence.
type TextRegion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NormalizedText is raw text rewritten into the canonical vocabulary and line
// structure, tagged with the detected issuing sportsbook.
type NormalizedText struct {
	Text       string       `json:"text"`
	Format     SourceFormat `json:"format"`
	Confidence float64      `json:"confidence"`
}

// LegBlock is a contiguous chunk of normalized text attributable to exactly
// one wager. Index preserves slip reading order end-to-end.
type LegBlock struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ParsedLeg is one fully extracted wager selection.
type ParsedLeg struct {
	LegID        string           `json:"leg_id"` // assigned at assembly
	League       League           `json:"league"`
	BetType      BetType          `json:"bet_type" validate:"required,oneof=moneyline spread total prop"`
	Participants []string         `json:"participants" validate:"required,min=1,max=2"`
	Stat         string           `json:"stat,omitempty"` // prop statistic, normalized
	Side         Side             `json:"side,omitempty"`
	Line         *float64         `json:"line,omitempty"`
	Odds         int              `json:"odds" validate:"required,ne=0"` // American convention
	Stake        *decimal.Decimal `json:"stake,omitempty"`
	Payout       *decimal.Decimal `json:"payout,omitempty"`
	RawBlock     string           `json:"raw_block,omitempty"`
	Confidence   float64          `json:"confidence"`
}

// IsHeadToHead reports whether the leg is a two-participant market.
func (l *ParsedLeg) IsHeadToHead() bool {
	return l.BetType == BetTypeMoneyline || l.BetType == BetTypeSpread
}

// PickedParticipant returns the participant the bettor is on. For totals the
// market has no side-of-team semantics and the first participant is returned
// only as a matchup anchor.
func (l *ParsedLeg) PickedParticipant() string {
	if len(l.Participants) == 0 {
		return ""
	}
	return l.Participants[0]
}

// ParsedSlip is the assembled, validated slip-level record.
type ParsedSlip struct {
	SlipID       uuid.UUID        `json:"slip_id"`
	SourceFormat SourceFormat     `json:"source_format"`
	Legs         []ParsedLeg      `json:"legs" validate:"required,min=1,dive"`
	TotalStake   decimal.Decimal  `json:"total_stake"`
	TotalPayout  *decimal.Decimal `json:"total_payout,omitempty"`
	TotalOdds    *int             `json:"total_odds,omitempty"`
	// StakeInconsistent flags a mismatch between the stated total stake and
	// the summed per-leg stakes. The slip is retained, never corrected.
	StakeInconsistent bool      `json:"stake_inconsistent,omitempty"`
	IngestedAt        time.Time `json:"ingested_at"`
}

// Stake source selectors for slips whose stated total disagrees with the
// summed per-leg stakes.
const (
	StakeSourceSlip = "slip"
	StakeSourceLegs = "legs"
)

// SumLegStakes returns the summed per-leg stakes and whether every leg carried
// one. A partial sum is meaningless for reconciliation.
func SumLegStakes(legs []ParsedLeg) (decimal.Decimal, bool) {
	sum := decimal.Zero
	for i := range legs {
		if legs[i].Stake == nil {
			return decimal.Zero, false
		}
		sum = sum.Add(*legs[i].Stake)
	}
	return sum, true
}

// EffectiveStake returns the stake that settles the slip under the given
// source selector. StakeSourceLegs falls back to the stated total when any
// leg omitted its stake.
func (s *ParsedSlip) EffectiveStake(source string) decimal.Decimal {
	if source == StakeSourceLegs {
		if sum, ok := SumLegStakes(s.Legs); ok {
			return sum
		}
	}
	return s.TotalStake
}

// IsParlay reports whether the slip is a combined multi-leg wager.
func (s *ParsedSlip) IsParlay() bool {
	return len(s.Legs) > 1
}

// LegByID returns the leg with the given stable identifier, or nil.
func (s *ParsedSlip) LegByID(legID string) *ParsedLeg {
	for i := range s.Legs {
		if s.Legs[i].LegID == legID {
			return &s.Legs[i]
		}
	}
	return nil
}
