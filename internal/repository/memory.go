package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/slip-tracker/internal/models"
)

// MemorySlipRepository is an in-memory SlipRepository for tests and the
// one-shot CLI, which has no database behind it.
type MemorySlipRepository struct {
	mu    sync.RWMutex
	slips map[uuid.UUID]models.ParsedSlip
}

// NewMemorySlipRepository creates an empty in-memory slip repository.
func NewMemorySlipRepository() *MemorySlipRepository {
	return &MemorySlipRepository{slips: make(map[uuid.UUID]models.ParsedSlip)}
}

func (r *MemorySlipRepository) Create(ctx context.Context, slip *models.ParsedSlip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slips[slip.SlipID] = *slip
	return nil
}

func (r *MemorySlipRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ParsedSlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slip, ok := r.slips[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := slip
	return &out, nil
}

func (r *MemorySlipRepository) GetRecent(ctx context.Context, limit int) ([]*models.ParsedSlip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.ParsedSlip, 0, len(r.slips))
	for id := range r.slips {
		slip := r.slips[id]
		all = append(all, &slip)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IngestedAt.After(all[j].IngestedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemorySlipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slips[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.slips, id)
	return nil
}

// MemoryTrackedBetRepository is an in-memory TrackedBetRepository.
type MemoryTrackedBetRepository struct {
	mu   sync.RWMutex
	bets map[uuid.UUID]models.TrackedBet
}

// NewMemoryTrackedBetRepository creates an empty in-memory tracked bet
// repository.
func NewMemoryTrackedBetRepository() *MemoryTrackedBetRepository {
	return &MemoryTrackedBetRepository{bets: make(map[uuid.UUID]models.TrackedBet)}
}

func (r *MemoryTrackedBetRepository) Create(ctx context.Context, bet *models.TrackedBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bets[bet.ID] = cloneBet(bet)
	return nil
}

func (r *MemoryTrackedBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bet, ok := r.bets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := cloneBet(&bet)
	return &out, nil
}

func (r *MemoryTrackedBetRepository) GetBySlipID(ctx context.Context, slipID uuid.UUID) (*models.TrackedBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.bets {
		if r.bets[id].SlipID == slipID {
			bet := cloneBet(ptr(r.bets[id]))
			return &bet, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryTrackedBetRepository) GetActive(ctx context.Context) ([]*models.TrackedBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active []*models.TrackedBet
	for id := range r.bets {
		if r.bets[id].Status.IsTerminal() {
			continue
		}
		bet := cloneBet(ptr(r.bets[id]))
		active = append(active, &bet)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.Before(active[j].CreatedAt) })
	return active, nil
}

func (r *MemoryTrackedBetRepository) List(ctx context.Context, limit int) ([]*models.TrackedBet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.TrackedBet, 0, len(r.bets))
	for id := range r.bets {
		bet := cloneBet(ptr(r.bets[id]))
		all = append(all, &bet)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryTrackedBetRepository) Update(ctx context.Context, bet *models.TrackedBet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bets[bet.ID]; !ok {
		return models.ErrNotFound
	}
	r.bets[bet.ID] = cloneBet(bet)
	return nil
}

func (r *MemoryTrackedBetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bets[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.bets, id)
	return nil
}

// cloneBet copies the binding slice so callers cannot mutate stored state.
func cloneBet(bet *models.TrackedBet) models.TrackedBet {
	out := *bet
	out.Bindings = make([]models.LegEventBinding, len(bet.Bindings))
	copy(out.Bindings, bet.Bindings)
	out.Slip.Legs = make([]models.ParsedLeg, len(bet.Slip.Legs))
	copy(out.Slip.Legs, bet.Slip.Legs)
	return out
}

func ptr(b models.TrackedBet) *models.TrackedBet { return &b }
