// Package storage persists simulation snapshots and backtest results.
//
// Two repositories are provided: MemoryRepository for running without a database and
// PostgresRepository when database.url is configured. Both return
// errors.ErrCodeSimulationNotFound for unknown ids.
package storage

import (
	"context"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// Repository stores simulations and backtest results.
type Repository interface {
	// SaveSimulation inserts or replaces a simulation snapshot.
	SaveSimulation(ctx context.Context, sim types.Simulation) error
	GetSimulation(ctx context.Context, id string) (types.Simulation, error)
	// ListSimulations returns every simulation, newest first.
	ListSimulations(ctx context.Context) ([]types.Simulation, error)
	DeleteSimulation(ctx context.Context, id string) error
	// SaveBacktestResult stores the summary of a backtest. Trades are not stored.
	SaveBacktestResult(ctx context.Context, result types.BacktestResult) error
	// ListBacktestResults returns up to limit results, newest first. A limit of zero or less returns all.
	ListBacktestResults(ctx context.Context, limit int) ([]types.BacktestResult, error)
	Ping(ctx context.Context) error
	Close() error
}
