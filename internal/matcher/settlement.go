package matcher

import (
	"github.com/yourusername/slip-tracker/internal/fuzzy"
	"github.com/yourusername/slip-tracker/internal/models"
)

// SettleLeg derives the leg result from its bound event. Unfinished events
// leave the leg pending; abandoned events void it. stat carries the player's
// statistic line for props, meaningless otherwise.
func SettleLeg(leg models.ParsedLeg, event models.EventRecord, stat float64, statFound bool) models.LegResult {
	if event.IsAbandoned() {
		return models.LegResultVoid
	}
	if !event.IsFinished() {
		return models.LegResultPending
	}

	switch leg.BetType {
	case models.BetTypeMoneyline:
		return settleMoneyline(leg, event)
	case models.BetTypeSpread:
		return settleSpread(leg, event)
	case models.BetTypeTotal:
		return settleTotal(leg, event)
	case models.BetTypeProp:
		return settleProp(leg, stat, statFound)
	}
	return models.LegResultPending
}

func settleMoneyline(leg models.ParsedLeg, event models.EventRecord) models.LegResult {
	picked, opponent, ok := scoreSides(leg, event)
	if !ok {
		return models.LegResultVoid
	}
	switch {
	case picked > opponent:
		return models.LegResultWon
	case picked < opponent:
		return models.LegResultLost
	}
	return models.LegResultPush
}

func settleSpread(leg models.ParsedLeg, event models.EventRecord) models.LegResult {
	if leg.Line == nil {
		return models.LegResultVoid
	}
	picked, opponent, ok := scoreSides(leg, event)
	if !ok {
		return models.LegResultVoid
	}

	// the handicap is applied to the picked side's score
	adjusted := picked + *leg.Line
	switch {
	case adjusted > opponent:
		return models.LegResultWon
	case adjusted < opponent:
		return models.LegResultLost
	}
	return models.LegResultPush
}

func settleTotal(leg models.ParsedLeg, event models.EventRecord) models.LegResult {
	if leg.Line == nil {
		return models.LegResultVoid
	}
	total, ok := event.TotalScore()
	if !ok {
		return models.LegResultVoid
	}
	return overUnderResult(leg.Side, total, *leg.Line)
}

// settleProp compares the final statistic line against the wagered line. A
// final event whose box score never produced the statistic voids the leg
// rather than guessing.
func settleProp(leg models.ParsedLeg, stat float64, statFound bool) models.LegResult {
	if !statFound {
		return models.LegResultVoid
	}

	switch leg.Side {
	case models.SideYes:
		if stat >= 1 {
			return models.LegResultWon
		}
		return models.LegResultLost
	case models.SideNo:
		if stat >= 1 {
			return models.LegResultLost
		}
		return models.LegResultWon
	}

	if leg.Line == nil {
		return models.LegResultVoid
	}
	return overUnderResult(leg.Side, stat, *leg.Line)
}

// overUnderResult settles an over/under pick, pushing on the exact line.
func overUnderResult(side models.Side, value, line float64) models.LegResult {
	if value == line {
		return models.LegResultPush
	}
	over := value > line
	if (side == models.SideOver) == over {
		return models.LegResultWon
	}
	return models.LegResultLost
}

// scoreSides resolves the picked participant's score and the opponent's.
// Event participant names come from the feed and leg names from OCR, so the
// alignment is fuzzy.
func scoreSides(leg models.ParsedLeg, event models.EventRecord) (picked, opponent float64, ok bool) {
	if len(event.Participants) < 2 || len(event.Scores) < len(event.Participants) {
		return 0, 0, false
	}

	pickedName := leg.PickedParticipant()
	bestIdx, bestScore := -1, 0.0
	for i, p := range event.Participants {
		if s := fuzzy.Similarity(pickedName, p); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}
	if bestIdx < 0 || bestScore < 0.5 {
		return 0, 0, false
	}

	picked = event.Scores[bestIdx]
	for i := range event.Participants {
		if i != bestIdx {
			opponent = event.Scores[i]
			break
		}
	}
	return picked, opponent, true
}

// RollUpSlip derives the slip-level settlement status from the per-leg
// results. Any lost leg loses the slip immediately; otherwise the slip stays
// live until every leg resolves. Pushed and voided legs drop out of a parlay,
// so a slip with no surviving won leg pushes rather than wins.
func RollUpSlip(bindings []models.LegEventBinding) models.SettlementStatus {
	if len(bindings) == 0 {
		return models.SettlementPending
	}

	won, void := 0, 0
	for i := range bindings {
		switch bindings[i].Result {
		case models.LegResultLost:
			return models.SettlementLost
		case models.LegResultPending:
			return models.SettlementLive
		case models.LegResultWon:
			won++
		case models.LegResultVoid:
			void++
		}
	}

	if won > 0 {
		return models.SettlementWon
	}
	if void == len(bindings) {
		return models.SettlementVoid
	}
	return models.SettlementPushed
}
