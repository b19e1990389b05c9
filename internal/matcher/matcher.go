// Package matcher binds parsed legs to live events and derives settlement
// outcomes from final scores.
package matcher

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/slip-tracker/internal/fuzzy"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
)

// EventDirectory is the read surface of the event feed the matcher needs.
type EventDirectory interface {
	EventsInWindow(ctx context.Context, league models.League, window models.TimeWindow) ([]models.EventRecord, error)
	EventByID(ctx context.Context, league models.League, eventID string, day time.Time) (models.EventRecord, error)
	PlayerStat(ctx context.Context, league models.League, eventID, player, stat string) (float64, bool, error)
}

// Config tunes the matcher.
type Config struct {
	// MatchThreshold is the minimum event similarity score for a binding.
	MatchThreshold float64
	// MaxAttempts bounds retries before a binding expires.
	MaxAttempts int
	// WindowBefore/WindowAfter bound the event directory query around the
	// slip's ingestion time. Slips are usually placed shortly before kickoff.
	WindowBefore time.Duration
	WindowAfter  time.Duration
}

// DefaultConfig returns the defaults used by the daemon.
func DefaultConfig() Config {
	return Config{
		MatchThreshold: 0.6,
		MaxAttempts:    48,
		WindowBefore:   12 * time.Hour,
		WindowAfter:    48 * time.Hour,
	}
}

// Matcher resolves legs to events.
type Matcher struct {
	directory EventDirectory
	cfg       Config
	logger    *logrus.Logger
	now       func() time.Time
}

// New creates a Matcher.
func New(directory EventDirectory, cfg Config, logger *logrus.Logger) *Matcher {
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = DefaultConfig().MatchThreshold
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.WindowBefore <= 0 {
		cfg.WindowBefore = DefaultConfig().WindowBefore
	}
	if cfg.WindowAfter <= 0 {
		cfg.WindowAfter = DefaultConfig().WindowAfter
	}
	return &Matcher{directory: directory, cfg: cfg, logger: logger, now: time.Now}
}

// Bind attempts to resolve one leg to an event. An existing binding is updated
// in place: attempts accumulate across refresh cycles and the binding expires
// with models.ErrMatchExhausted once the budget is spent. A feed timeout does
// not consume an attempt.
func (m *Matcher) Bind(ctx context.Context, leg models.ParsedLeg, ingestedAt time.Time, prev *models.LegEventBinding) (models.LegEventBinding, error) {
	binding := models.LegEventBinding{
		LegID:       leg.LegID,
		MatchStatus: models.MatchStatusUnmatched,
		Result:      models.LegResultPending,
	}
	if prev != nil {
		binding = *prev
	}
	if binding.MatchStatus == models.MatchStatusMatched || binding.MatchStatus == models.MatchStatusExpired {
		return binding, nil
	}

	window := models.TimeWindow{
		From: ingestedAt.Add(-m.cfg.WindowBefore),
		To:   ingestedAt.Add(m.cfg.WindowAfter),
	}

	events, err := m.directory.EventsInWindow(ctx, leg.League, window)
	if err != nil {
		// transient feed failure: retried next cycle without spending an attempt
		binding.LastCheckedAt = m.now().UTC()
		return binding, err
	}

	metrics.MatchAttemptsTotal.Inc()
	binding.Attempts++
	binding.LastCheckedAt = m.now().UTC()

	event, score := m.bestEvent(leg, events, ingestedAt)
	if score >= m.cfg.MatchThreshold {
		binding.EventID = event.EventID
		binding.Confidence = score
		binding.MatchStatus = models.MatchStatusMatched
		metrics.MatchHitsTotal.Inc()

		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"leg_id":     leg.LegID,
				"event_id":   event.EventID,
				"confidence": score,
				"attempts":   binding.Attempts,
			}).Info("Bound leg to event")
		}
		return binding, nil
	}

	if binding.Attempts >= m.cfg.MaxAttempts {
		binding.MatchStatus = models.MatchStatusExpired
		if m.logger != nil {
			m.logger.WithFields(logrus.Fields{
				"leg_id":   leg.LegID,
				"attempts": binding.Attempts,
			}).Warn("Match attempts exhausted")
		}
		return binding, models.ErrMatchExhausted
	}
	return binding, nil
}

// maxKickoffBonus caps the proximity term well below the match threshold so
// participant similarity stays decisive.
const maxKickoffBonus = 0.1

// bestEvent returns the highest scoring event for the leg. The score combines
// participant similarity with a kickoff proximity bonus, so the same matchup
// listed on consecutive days inside the window resolves toward the event
// nearest the slip's ingestion time. Remaining ties break toward the earlier
// start.
func (m *Matcher) bestEvent(leg models.ParsedLeg, events []models.EventRecord, ingestedAt time.Time) (models.EventRecord, float64) {
	var best models.EventRecord
	bestScore := 0.0

	for _, event := range events {
		score := legEventScore(leg, event)
		if score > 0 {
			score += m.kickoffBonus(event.StartTime, ingestedAt)
			if score > 1 {
				score = 1
			}
		}
		if score > bestScore || (score == bestScore && score > 0 && event.StartTime.Before(best.StartTime)) {
			best = event
			bestScore = score
		}
	}
	return best, bestScore
}

// kickoffBonus decays linearly from maxKickoffBonus at the ingestion instant
// to zero at the far edge of the match window.
func (m *Matcher) kickoffBonus(start, ingestedAt time.Time) float64 {
	gap := start.Sub(ingestedAt)
	if gap < 0 {
		gap = -gap
	}
	horizon := m.cfg.WindowAfter
	if m.cfg.WindowBefore > horizon {
		horizon = m.cfg.WindowBefore
	}
	if horizon <= 0 || gap >= horizon {
		return 0
	}
	return maxKickoffBonus * (1 - float64(gap)/float64(horizon))
}

// legEventScore measures how well a leg's participants fit an event. Matching
// is fuzzy throughout: leg names went through OCR, event names did not.
func legEventScore(leg models.ParsedLeg, event models.EventRecord) float64 {
	if len(event.Participants) == 0 {
		return 0
	}

	switch {
	case leg.BetType == models.BetTypeTotal:
		// the total's single participant is a matchup anchor
		anchor := leg.PickedParticipant()
		joined := strings.Join(event.Participants, " @ ")
		return bestOf(
			fuzzy.TokenOverlap(anchor, joined),
			fuzzy.PartialSimilarity(anchor, joined),
		)

	case leg.BetType == models.BetTypeProp:
		// props name a player, not a team; score against the raw block where
		// the matchup usually survives OCR
		best := 0.0
		for _, p := range event.Participants {
			if s := fuzzy.PartialSimilarity(p, leg.RawBlock); s > best {
				best = s
			}
		}
		return best

	default:
		// head to head: average the per-participant scores so a one-sided
		// match on a common nickname does not win alone
		total, counted := 0.0, 0
		for _, name := range leg.Participants {
			best := 0.0
			for _, p := range event.Participants {
				if s := bestOf(fuzzy.Similarity(name, p), fuzzy.TokenOverlap(name, p)); s > best {
					best = s
				}
			}
			total += best
			counted++
		}
		if counted == 0 {
			return 0
		}
		return total / float64(counted)
	}
}

func bestOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
