package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStatus represents the state of a leg-to-event binding
type MatchStatus string

const (
	MatchStatusUnmatched MatchStatus = "UNMATCHED"
	MatchStatusMatched   MatchStatus = "MATCHED"
	MatchStatusExpired   MatchStatus = "EXPIRED"
)

// LegResult represents the settled outcome of an individual leg
type LegResult string

const (
	LegResultPending LegResult = "pending"
	LegResultWon     LegResult = "won"
	LegResultLost    LegResult = "lost"
	LegResultPush    LegResult = "push"
	LegResultVoid    LegResult = "void"
)

// SettlementStatus represents the lifecycle state of a tracked bet
type SettlementStatus string

const (
	SettlementPending     SettlementStatus = "PENDING"
	SettlementLive        SettlementStatus = "LIVE"
	SettlementWon         SettlementStatus = "WON"
	SettlementLost        SettlementStatus = "LOST"
	SettlementPushed      SettlementStatus = "PUSHED"
	SettlementVoid        SettlementStatus = "VOID"
	SettlementUnmatchable SettlementStatus = "UNMATCHABLE"
)

// IsTerminal reports whether no further settlement transitions are allowed.
func (s SettlementStatus) IsTerminal() bool {
	switch s {
	case SettlementWon, SettlementLost, SettlementPushed, SettlementVoid, SettlementUnmatchable:
		return true
	}
	return false
}

// LegEventBinding binds a parsed leg to a live event. One binding per leg,
// created on the first match attempt and updated in place thereafter.
type LegEventBinding struct {
	LegID         string      `db:"leg_id" json:"leg_id"`
	EventID       string      `db:"event_id" json:"event_id,omitempty"`
	Confidence    float64     `db:"confidence" json:"confidence"`
	MatchStatus   MatchStatus `db:"match_status" json:"match_status"`
	Attempts      int         `db:"attempts" json:"attempts"`
	Result        LegResult   `db:"result" json:"result"`
	CurrentValue  *float64    `db:"current_value" json:"current_value,omitempty"` // live prop statistic
	LastCheckedAt time.Time   `db:"last_checked_at" json:"last_checked_at"`
}

// TrackedBet is the user-visible aggregate of a parsed slip, its event
// bindings and the derived settlement state. Created at assembly, mutated
// only by the matcher's recurring pass.
type TrackedBet struct {
	ID       uuid.UUID         `db:"id" json:"id"`
	SlipID   uuid.UUID         `db:"slip_id" json:"slip_id"`
	Slip     ParsedSlip        `json:"slip"`
	Bindings []LegEventBinding `json:"bindings"` // aligned with Slip.Legs
	// Stake is the settling stake chosen by the configured stake source when
	// the slip's stated total and its summed leg stakes disagree.
	Stake     decimal.Decimal  `db:"stake" json:"stake"`
	Status    SettlementStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
	SettledAt *time.Time       `db:"settled_at" json:"settled_at,omitempty"`
}

// BindingForLeg returns the binding for the given leg identifier, or nil.
func (t *TrackedBet) BindingForLeg(legID string) *LegEventBinding {
	for i := range t.Bindings {
		if t.Bindings[i].LegID == legID {
			return &t.Bindings[i]
		}
	}
	return nil
}

// AllLegsSettled reports whether every leg has reached a final result.
func (t *TrackedBet) AllLegsSettled() bool {
	for i := range t.Bindings {
		switch t.Bindings[i].Result {
		case LegResultPending:
			return false
		}
	}
	return len(t.Bindings) > 0
}
