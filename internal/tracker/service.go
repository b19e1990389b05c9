// Package tracker owns the tracked bet lifecycle: registration, the recurring
// match-and-settle refresh pass, and removal.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	applog "github.com/yourusername/slip-tracker/internal/logger"
	"github.com/yourusername/slip-tracker/internal/matcher"
	"github.com/yourusername/slip-tracker/internal/metrics"
	"github.com/yourusername/slip-tracker/internal/models"
	"github.com/yourusername/slip-tracker/internal/repository"
)

// Service coordinates slips, bindings and the event feed.
type Service struct {
	slips   repository.SlipRepository
	bets    repository.TrackedBetRepository
	matcher *matcher.Matcher
	feed    matcher.EventDirectory
	locks   *matcher.BetLocks
	logger  *logrus.Logger
	audit   *applog.AuditLogger

	// event query window offsets around a slip's ingestion time
	windowBefore time.Duration
	windowAfter  time.Duration
	stakeSource  string

	now func() time.Time
}

// Config carries the tracker's tunables.
type Config struct {
	// WindowBefore/WindowAfter mirror the matcher's event query window and
	// bound the day sweep when re-reading a bound event.
	WindowBefore time.Duration
	WindowAfter  time.Duration
	// StakeSource selects the settling stake when the slip's stated total and
	// its summed leg stakes disagree. Empty defaults to the slip-level figure.
	StakeSource string
}

// NewService creates a tracker service.
func NewService(
	slips repository.SlipRepository,
	bets repository.TrackedBetRepository,
	m *matcher.Matcher,
	feed matcher.EventDirectory,
	cfg Config,
	log *logrus.Logger,
) *Service {
	if cfg.WindowBefore <= 0 {
		cfg.WindowBefore = matcher.DefaultConfig().WindowBefore
	}
	if cfg.WindowAfter <= 0 {
		cfg.WindowAfter = matcher.DefaultConfig().WindowAfter
	}
	if cfg.StakeSource == "" {
		cfg.StakeSource = models.StakeSourceSlip
	}
	return &Service{
		slips:        slips,
		bets:         bets,
		matcher:      m,
		feed:         feed,
		locks:        matcher.NewBetLocks(),
		logger:       log,
		audit:        applog.NewAuditLogger(log),
		windowBefore: cfg.WindowBefore,
		windowAfter:  cfg.WindowAfter,
		stakeSource:  cfg.StakeSource,
		now:          time.Now,
	}
}

// Track persists a parsed slip and registers it for settlement tracking. Every
// leg starts with an unmatched binding; the refresh pass does the rest.
func (s *Service) Track(ctx context.Context, slip *models.ParsedSlip) (*models.TrackedBet, error) {
	if err := s.slips.Create(ctx, slip); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	bet := &models.TrackedBet{
		ID:        uuid.New(),
		SlipID:    slip.SlipID,
		Slip:      *slip,
		Bindings:  make([]models.LegEventBinding, 0, len(slip.Legs)),
		Stake:     slip.EffectiveStake(s.stakeSource),
		Status:    models.SettlementPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range slip.Legs {
		bet.Bindings = append(bet.Bindings, models.LegEventBinding{
			LegID:       slip.Legs[i].LegID,
			MatchStatus: models.MatchStatusUnmatched,
			Result:      models.LegResultPending,
		})
	}

	if err := s.bets.Create(ctx, bet); err != nil {
		return nil, err
	}

	s.audit.LogSlipIngested(
		slip.SlipID.String(),
		string(slip.SourceFormat),
		len(slip.Legs),
		slip.TotalStake.StringFixed(2),
		slip.IngestedAt,
	)
	return bet, nil
}

// GetTrackedBet returns the tracked bet by identifier.
func (s *Service) GetTrackedBet(ctx context.Context, id uuid.UUID) (*models.TrackedBet, error) {
	return s.bets.GetByID(ctx, id)
}

// GetTrackedBetBySlip returns the tracked bet for a slip.
func (s *Service) GetTrackedBetBySlip(ctx context.Context, slipID uuid.UUID) (*models.TrackedBet, error) {
	return s.bets.GetBySlipID(ctx, slipID)
}

// ListTrackedBets returns tracked bets newest first.
func (s *Service) ListTrackedBets(ctx context.Context, limit int) ([]*models.TrackedBet, error) {
	return s.bets.List(ctx, limit)
}

// RemoveTrackedBet deletes a tracked bet and its slip.
func (s *Service) RemoveTrackedBet(ctx context.Context, id uuid.UUID) error {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bets.Delete(ctx, id); err != nil {
		return err
	}
	// slip rows cascade in postgres; the memory repository needs the explicit
	// delete, and a missing slip is not an error either way
	if err := s.slips.Delete(ctx, bet.SlipID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return nil
}

// RefreshAll runs one match-and-settle pass over every active tracked bet.
// Per-bet failures are logged and skipped so one broken bet cannot stall the
// rest of the pass.
func (s *Service) RefreshAll(ctx context.Context) error {
	start := s.now()
	defer func() {
		metrics.RefreshPassDuration.Observe(s.now().Sub(start).Seconds())
	}()

	active, err := s.bets.GetActive(ctx)
	if err != nil {
		return err
	}
	metrics.TrackedBetsActive.Set(float64(len(active)))

	unmatched := 0
	for _, bet := range active {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.refreshBet(ctx, bet); err != nil {
			s.logger.WithError(err).WithField("bet_id", bet.ID).Warn("Refresh failed for tracked bet")
		}
		for i := range bet.Bindings {
			if bet.Bindings[i].MatchStatus == models.MatchStatusUnmatched {
				unmatched++
			}
		}
	}
	metrics.UnmatchedBindings.Set(float64(unmatched))
	return nil
}

// refreshBet advances one tracked bet: bind unmatched legs, settle matched
// ones, roll the leg results up into the bet status.
func (s *Service) refreshBet(ctx context.Context, bet *models.TrackedBet) error {
	unlock := s.locks.Lock(bet.ID)
	defer unlock()

	if bet.Status.IsTerminal() {
		return models.ErrTerminalState
	}

	changed := false
	for i := range bet.Bindings {
		binding := &bet.Bindings[i]
		leg := bet.Slip.LegByID(binding.LegID)
		if leg == nil {
			continue
		}

		if binding.MatchStatus == models.MatchStatusUnmatched {
			if s.bindLeg(ctx, bet, leg, binding) {
				changed = true
			}
		}
		// a leg bound this pass settles this pass too
		if binding.MatchStatus == models.MatchStatusMatched && binding.Result == models.LegResultPending {
			if s.settleLeg(ctx, bet, leg, binding) {
				changed = true
			}
		}
	}

	newStatus := s.deriveStatus(bet)
	if newStatus != bet.Status {
		s.audit.LogBetStateChange(bet.ID.String(), string(bet.Status), string(newStatus))
		bet.Status = newStatus
		if newStatus.IsTerminal() {
			settled := s.now().UTC()
			bet.SettledAt = &settled
			metrics.RecordSettlement(string(newStatus))
		}
		changed = true
	}

	if !changed {
		return nil
	}
	bet.UpdatedAt = s.now().UTC()
	return s.bets.Update(ctx, bet)
}

// bindLeg runs one match attempt, reporting whether the binding changed.
func (s *Service) bindLeg(ctx context.Context, bet *models.TrackedBet, leg *models.ParsedLeg, binding *models.LegEventBinding) bool {
	next, err := s.matcher.Bind(ctx, *leg, bet.Slip.IngestedAt, binding)
	switch {
	case errors.Is(err, models.ErrMatchExhausted):
		s.audit.LogBindingExpired(bet.ID.String(), leg.LegID, next.Attempts)
	case err != nil:
		// feed hiccup: attempt not consumed, retried next cycle
		s.logger.WithError(err).WithField("leg_id", leg.LegID).Debug("Match attempt deferred")
	case next.MatchStatus == models.MatchStatusMatched:
		s.audit.LogEventBound(bet.ID.String(), leg.LegID, next.EventID, next.Confidence)
	}

	if next == *binding {
		return false
	}
	*binding = next
	return true
}

// settleLeg re-reads the bound event and applies the settlement rules,
// reporting whether the binding changed.
func (s *Service) settleLeg(ctx context.Context, bet *models.TrackedBet, leg *models.ParsedLeg, binding *models.LegEventBinding) bool {
	event, err := s.findEvent(ctx, leg.League, binding.EventID, bet.Slip.IngestedAt)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// the feed dropped a previously listed event, treat as abandoned
			binding.Result = models.LegResultVoid
			binding.LastCheckedAt = s.now().UTC()
			s.audit.LogLegSettled(bet.ID.String(), leg.LegID, binding.EventID, string(binding.Result))
			return true
		}
		s.logger.WithError(err).WithField("leg_id", leg.LegID).Debug("Settlement check deferred")
		return false
	}

	changed := false
	var stat float64
	var statFound bool
	if leg.BetType == models.BetTypeProp {
		stat, statFound, err = s.feed.PlayerStat(ctx, leg.League, event.EventID, leg.PickedParticipant(), leg.Stat)
		if err != nil {
			s.logger.WithError(err).WithField("leg_id", leg.LegID).Debug("Player stat fetch deferred")
			return false
		}
		// surface the live statistic while the event runs
		if statFound && (binding.CurrentValue == nil || *binding.CurrentValue != stat) {
			value := stat
			binding.CurrentValue = &value
			changed = true
		}
	}

	binding.LastCheckedAt = s.now().UTC()

	result := matcher.SettleLeg(*leg, event, stat, statFound)
	if result != binding.Result {
		binding.Result = result
		s.audit.LogLegSettled(bet.ID.String(), leg.LegID, event.EventID, string(result))
		return true
	}
	return changed
}

// findEvent sweeps the match window day by day for the bound event. Scoreboard
// reads are cached so revisiting adjacent days is cheap.
func (s *Service) findEvent(ctx context.Context, league models.League, eventID string, ingestedAt time.Time) (models.EventRecord, error) {
	from := ingestedAt.Add(-s.windowBefore).UTC().Truncate(24 * time.Hour)
	to := ingestedAt.Add(s.windowAfter).UTC()

	var lastErr error = models.ErrNotFound
	for day := from; !day.After(to); day = day.Add(24 * time.Hour) {
		event, err := s.feed.EventByID(ctx, league, eventID, day)
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.EventRecord{}, err
		}
		lastErr = err
	}
	return models.EventRecord{}, lastErr
}

// deriveStatus rolls leg results up into the bet status. Expired bindings can
// never settle, so a bet whose only unresolved legs are expired goes
// UNMATCHABLE instead of idling LIVE forever. A bet with no binding activity
// at all stays PENDING.
func (s *Service) deriveStatus(bet *models.TrackedBet) models.SettlementStatus {
	expired, matched := 0, 0
	pendingNonExpired := 0
	for i := range bet.Bindings {
		b := &bet.Bindings[i]
		switch b.MatchStatus {
		case models.MatchStatusExpired:
			expired++
		case models.MatchStatusMatched:
			matched++
		}
		if b.Result == models.LegResultPending && b.MatchStatus != models.MatchStatusExpired {
			pendingNonExpired++
		}
	}

	if expired > 0 && pendingNonExpired == 0 {
		// nothing left that could still resolve; a lost leg still loses
		for i := range bet.Bindings {
			if bet.Bindings[i].Result == models.LegResultLost {
				return models.SettlementLost
			}
		}
		return models.SettlementUnmatchable
	}

	status := matcher.RollUpSlip(bet.Bindings)
	if status == models.SettlementLive && matched == 0 {
		return models.SettlementPending
	}
	return status
}
