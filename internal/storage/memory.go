package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// MemoryRepository keeps copies of simulations and backtest results in maps.
type MemoryRepository struct {
	mu          sync.RWMutex
	simulations map[string]types.Simulation
	backtests   map[string]types.BacktestResult
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		simulations: make(map[string]types.Simulation),
		backtests:   make(map[string]types.BacktestResult),
	}
}

func copySimulation(sim types.Simulation) types.Simulation {
	if sim.Trades != nil {
		sim.Trades = append([]types.Trade{}, sim.Trades...)
	}

	if sim.EndedAt != nil {
		endedAt := *sim.EndedAt
		sim.EndedAt = &endedAt
	}

	return sim
}

func (r *MemoryRepository) SaveSimulation(_ context.Context, sim types.Simulation) error {
	if sim.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "simulation id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.simulations[sim.ID] = copySimulation(sim)

	return nil
}

func (r *MemoryRepository) GetSimulation(_ context.Context, id string) (types.Simulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sim, ok := r.simulations[id]
	if !ok {
		return types.Simulation{}, errors.Newf(errors.ErrCodeSimulationNotFound, "simulation %s not found", id)
	}

	return copySimulation(sim), nil
}

func (r *MemoryRepository) ListSimulations(_ context.Context) ([]types.Simulation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sims := make([]types.Simulation, 0, len(r.simulations))
	for _, sim := range r.simulations {
		sims = append(sims, copySimulation(sim))
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].StartedAt.Equal(sims[j].StartedAt) {
			return sims[i].ID < sims[j].ID
		}

		return sims[i].StartedAt.After(sims[j].StartedAt)
	})

	return sims, nil
}

func (r *MemoryRepository) DeleteSimulation(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.simulations[id]; !ok {
		return errors.Newf(errors.ErrCodeSimulationNotFound, "simulation %s not found", id)
	}

	delete(r.simulations, id)

	return nil
}

func (r *MemoryRepository) SaveBacktestResult(_ context.Context, result types.BacktestResult) error {
	if result.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "backtest id is required")
	}

	result.Trades = nil

	r.mu.Lock()
	defer r.mu.Unlock()

	r.backtests[result.ID] = result

	return nil
}

func (r *MemoryRepository) ListBacktestResults(_ context.Context, limit int) ([]types.BacktestResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]types.BacktestResult, 0, len(r.backtests))
	for _, result := range r.backtests {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].ID < results[j].ID
		}

		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (r *MemoryRepository) Ping(_ context.Context) error {
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
