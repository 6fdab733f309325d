package storage

import (
	"context"
	"embed"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresRepository stores simulations and backtest results as JSONB documents.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database, pings it and applies the migrations.
func NewPostgresRepository(ctx context.Context, dsn string, maxConns int32) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse database url", err)
	}

	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create database pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to ping database", err)
	}

	repo := &PostgresRepository{pool: pool}
	if err := repo.migrate(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return repo, nil
}

// migrate applies the embedded migrations in file name order. Every statement is idempotent.
func (r *PostgresRepository) migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to read migrations", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.ReadFile("migrations/" + name)
		if err != nil {
			return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to read migration %s", name)
		}

		if _, err := r.pool.Exec(ctx, string(sql)); err != nil {
			return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to apply migration %s", name)
		}
	}

	return nil
}

func (r *PostgresRepository) SaveSimulation(ctx context.Context, sim types.Simulation) error {
	if sim.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "simulation id is required")
	}

	data, err := json.Marshal(sim)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to marshal simulation", err)
	}

	updatedAt := sim.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		INSERT INTO simulations (id, status, strategy, symbol, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		sim.ID,
		string(sim.Status),
		string(sim.Strategy),
		sim.Symbol,
		data,
		sim.StartedAt,
		updatedAt,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to save simulation", err)
	}

	return nil
}

func (r *PostgresRepository) GetSimulation(ctx context.Context, id string) (types.Simulation, error) {
	var data []byte

	err := r.pool.QueryRow(ctx, `SELECT data FROM simulations WHERE id = $1`, id).Scan(&data)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return types.Simulation{}, errors.Newf(errors.ErrCodeSimulationNotFound, "simulation %s not found", id)
	}

	if err != nil {
		return types.Simulation{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get simulation", err)
	}

	var sim types.Simulation
	if err := json.Unmarshal(data, &sim); err != nil {
		return types.Simulation{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode simulation", err)
	}

	return sim, nil
}

func (r *PostgresRepository) ListSimulations(ctx context.Context) ([]types.Simulation, error) {
	rows, err := r.pool.Query(ctx, `SELECT data FROM simulations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list simulations", err)
	}
	defer rows.Close()

	sims := []types.Simulation{}

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan simulation", err)
		}

		var sim types.Simulation
		if err := json.Unmarshal(data, &sim); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode simulation", err)
		}

		sims = append(sims, sim)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating simulations", err)
	}

	return sims, nil
}

func (r *PostgresRepository) DeleteSimulation(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM simulations WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to delete simulation", err)
	}

	if result.RowsAffected() == 0 {
		return errors.Newf(errors.ErrCodeSimulationNotFound, "simulation %s not found", id)
	}

	return nil
}

func (r *PostgresRepository) SaveBacktestResult(ctx context.Context, result types.BacktestResult) error {
	if result.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "backtest id is required")
	}

	result.Trades = nil

	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to marshal backtest result", err)
	}

	query := `
		INSERT INTO backtest_results (id, strategy, symbol, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`

	if _, err := r.pool.Exec(ctx, query, result.ID, string(result.Strategy), result.Symbol, data, result.CreatedAt); err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to save backtest result", err)
	}

	return nil
}

func (r *PostgresRepository) ListBacktestResults(ctx context.Context, limit int) ([]types.BacktestResult, error) {
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	rows, err := r.pool.Query(ctx, `SELECT data FROM backtest_results ORDER BY created_at DESC, id LIMIT $1`, limitArg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list backtest results", err)
	}
	defer rows.Close()

	results := []types.BacktestResult{}

	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan backtest result", err)
		}

		var result types.BacktestResult
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode backtest result", err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating backtest results", err)
	}

	return results, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "database ping failed", err)
	}

	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()

	return nil
}
