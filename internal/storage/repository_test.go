package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/stretchr/testify/suite"
)

// RepositoryTestSuite runs the same behaviour checks against every Repository.
type RepositoryTestSuite struct {
	suite.Suite
	newRepo func() Repository
	repo    Repository
}

func TestMemoryRepositorySuite(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{newRepo: func() Repository { return NewMemoryRepository() }})
}

func TestPostgresRepositorySuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	suite.Run(t, &RepositoryTestSuite{newRepo: func() Repository {
		repo, err := NewPostgresRepository(context.Background(), dsn, 2)
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}

		_, _ = repo.pool.Exec(context.Background(), `TRUNCATE simulations, backtest_results`)

		return repo
	}})
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.repo = suite.newRepo()
}

func (suite *RepositoryTestSuite) TearDownTest() {
	suite.NoError(suite.repo.Close())
}

func newSimulation(startedAt time.Time) types.Simulation {
	return types.Simulation{
		ID:             uuid.NewString(),
		Strategy:       types.StrategyArbitrage,
		Symbol:         "BTC/KRW",
		Exchange:       "binance",
		InitialBalance: 1000000,
		CurrentBalance: 1000000,
		StartedAt:      startedAt.UTC(),
		EndsAt:         startedAt.Add(24 * time.Hour).UTC(),
		UpdatedAt:      startedAt.UTC(),
		Status:         types.SimulationStatusRunning,
		DataSource:     types.DataSourceReal,
		Trades:         []types.Trade{},
	}
}

func (suite *RepositoryTestSuite) TestSaveAndGetSimulation() {
	ctx := context.Background()
	sim := newSimulation(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	suite.Require().NoError(suite.repo.SaveSimulation(ctx, sim))

	got, err := suite.repo.GetSimulation(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Equal(sim.ID, got.ID)
	suite.Equal(sim.Symbol, got.Symbol)
	suite.Equal(types.SimulationStatusRunning, got.Status)
	suite.True(sim.StartedAt.Equal(got.StartedAt))
}

func (suite *RepositoryTestSuite) TestSaveSimulationUpserts() {
	ctx := context.Background()
	sim := newSimulation(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, sim))

	endedAt := sim.StartedAt.Add(time.Hour)
	sim.Status = types.SimulationStatusStopped
	sim.CurrentBalance = 1100000
	sim.EndedAt = &endedAt
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, sim))

	got, err := suite.repo.GetSimulation(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusStopped, got.Status)
	suite.Equal(1100000.0, got.CurrentBalance)
	suite.Require().NotNil(got.EndedAt)
	suite.True(endedAt.Equal(*got.EndedAt))

	sims, err := suite.repo.ListSimulations(ctx)
	suite.Require().NoError(err)
	suite.Len(sims, 1)
}

func (suite *RepositoryTestSuite) TestReturnedCopiesAreIndependent() {
	ctx := context.Background()
	sim := newSimulation(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sim.Trades = []types.Trade{{ExecutedQty: 1}}
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, sim))

	sim.Trades[0].ExecutedQty = 5

	got, err := suite.repo.GetSimulation(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Require().Len(got.Trades, 1)
	suite.Equal(1.0, got.Trades[0].ExecutedQty)
}

func (suite *RepositoryTestSuite) TestListSimulationsNewestFirst() {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := newSimulation(base)
	newer := newSimulation(base.Add(time.Hour))

	suite.Require().NoError(suite.repo.SaveSimulation(ctx, older))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, newer))

	sims, err := suite.repo.ListSimulations(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(sims, 2)
	suite.Equal(newer.ID, sims[0].ID)
	suite.Equal(older.ID, sims[1].ID)
}

func (suite *RepositoryTestSuite) TestNotFound() {
	ctx := context.Background()

	_, err := suite.repo.GetSimulation(ctx, "missing")
	suite.Equal(errors.ErrCodeSimulationNotFound, errors.GetCode(err))

	err = suite.repo.DeleteSimulation(ctx, "missing")
	suite.Equal(errors.ErrCodeSimulationNotFound, errors.GetCode(err))
}

func (suite *RepositoryTestSuite) TestDeleteSimulation() {
	ctx := context.Background()
	sim := newSimulation(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, sim))
	suite.Require().NoError(suite.repo.DeleteSimulation(ctx, sim.ID))

	_, err := suite.repo.GetSimulation(ctx, sim.ID)
	suite.True(errors.HasCode(err, errors.ErrCodeSimulationNotFound))
}

func (suite *RepositoryTestSuite) TestSaveRequiresID() {
	err := suite.repo.SaveSimulation(context.Background(), types.Simulation{})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	err = suite.repo.SaveBacktestResult(context.Background(), types.BacktestResult{})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *RepositoryTestSuite) TestBacktestResults() {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		suite.Require().NoError(suite.repo.SaveBacktestResult(ctx, types.BacktestResult{
			ID:           uuid.NewString(),
			Strategy:     types.StrategyShortTrading,
			Symbol:       "ETH/KRW",
			FinalBalance: float64(i),
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
			Trades:       []types.Trade{{ExecutedQty: 1}},
		}))
	}

	all, err := suite.repo.ListBacktestResults(ctx, 0)
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.Equal(2.0, all[0].FinalBalance)
	suite.Nil(all[0].Trades)

	limited, err := suite.repo.ListBacktestResults(ctx, 2)
	suite.Require().NoError(err)
	suite.Len(limited, 2)
}

func (suite *RepositoryTestSuite) TestPing() {
	suite.NoError(suite.repo.Ping(context.Background()))
}
