package simulation

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/mocks"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type countingRecorder struct {
	mu        sync.Mutex
	started   int
	active    int
	trades    int
	backtests int
}

func (r *countingRecorder) SimulationStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *countingRecorder) SetActiveSimulations(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (r *countingRecorder) AddSimulationTrades(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades += n
}

func (r *countingRecorder) BacktestCompleted(string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backtests++
}

type ManagerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	market      *mocks.MockMarketDataClient
	repo        *storage.MemoryRepository
	broadcaster *events.Broadcaster
	recorder    *countingRecorder
	clock       *fakeClock
	cfg         config.SimulationConfig
	manager     *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func testSimulationConfig() config.SimulationConfig {
	return config.SimulationConfig{
		DefaultInitialBalance: 1000000,
		DefaultDurationHours:  24,
		TickInterval:          10 * time.Millisecond,
		MaxConcurrent:         2,
		TradeHistoryLimit:     100,
		TradeHistoryKeep:      50,
		FallbackPrice:         50000000,
		WarmupCandles:         0,
		MaxConsecutiveErrors:  3,
		Retention:             24 * time.Hour,
		CleanupSchedule:       "@every 1h",
		Broker:                "zero_commission",
		DecimalPrecision:      8,
	}
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.market = mocks.NewMockMarketDataClient(suite.ctrl)
	suite.market.EXPECT().DefaultExchange().Return("binance").AnyTimes()
	suite.repo = storage.NewMemoryRepository()
	suite.broadcaster = events.NewBroadcaster(256, nil)
	suite.recorder = &countingRecorder{}
	suite.clock = &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	suite.cfg = testSimulationConfig()
	suite.manager = suite.newManager(suite.cfg)
}

func (suite *ManagerTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	suite.NoError(suite.manager.Shutdown(ctx))
	suite.NoError(suite.broadcaster.Close())
	suite.ctrl.Finish()
}

func (suite *ManagerTestSuite) newManager(cfg config.SimulationConfig) *Manager {
	return NewManager(cfg, suite.market, suite.repo, suite.broadcaster, nil,
		WithRecorder(suite.recorder),
		WithClock(suite.clock.Now),
	)
}

func (suite *ManagerTestSuite) steadyPrice(price float64) {
	suite.market.EXPECT().GetTicker(gomock.Any(), "binance", "BTC/KRW").
		Return(types.Ticker{Symbol: "BTC/KRW", Exchange: "binance", Price: price, Source: types.DataSourceReal}, nil).
		AnyTimes()
}

func (suite *ManagerTestSuite) storedStatus(id string) types.SimulationStatus {
	sim, err := suite.repo.GetSimulation(context.Background(), id)
	if err != nil {
		return ""
	}

	return sim.Status
}

func (suite *ManagerTestSuite) startRequest() types.StartSimulationRequest {
	return types.StartSimulationRequest{Strategy: "arbitrage", Symbol: "BTC/KRW"}
}

func (suite *ManagerTestSuite) TestStartValidation() {
	ctx := context.Background()

	_, err := suite.manager.Start(ctx, types.StartSimulationRequest{Symbol: "BTC/KRW"})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = suite.manager.Start(ctx, types.StartSimulationRequest{Strategy: "arbitrage"})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = suite.manager.Start(ctx, types.StartSimulationRequest{Strategy: "arbitrage", Symbol: "BTC/KRW", InitialBalance: -1})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))

	_, err = suite.manager.Start(ctx, types.StartSimulationRequest{Strategy: "scalping", Symbol: "BTC/KRW"})
	suite.Equal(errors.ErrCodeUnsupportedStrategy, errors.GetCode(err))

	_, err = suite.manager.Start(ctx, types.StartSimulationRequest{Strategy: "arbitrage", Symbol: "BTC/KRW/X"})
	suite.Equal(errors.ErrCodeInvalidSymbol, errors.GetCode(err))

	suite.Equal(0, suite.manager.ActiveCount())
}

func (suite *ManagerTestSuite) TestStartAppliesDefaults() {
	suite.steadyPrice(50000000)
	sub := suite.broadcaster.Subscribe("")

	sim, err := suite.manager.Start(context.Background(), suite.startRequest())
	suite.Require().NoError(err)

	suite.Equal(types.StrategyArbitrage, sim.Strategy)
	suite.Equal("binance", sim.Exchange)
	suite.Equal(1000000.0, sim.InitialBalance)
	suite.Equal(24.0, sim.DurationHours)
	suite.Equal(50000000.0, sim.StartPrice)
	suite.Equal(types.DataSourceReal, sim.DataSource)
	suite.Equal(sim.StartedAt.Add(24*time.Hour), sim.EndsAt)
	suite.Equal(types.SimulationStatusRunning, suite.storedStatus(sim.ID))
	suite.Equal(1, suite.manager.ActiveCount())

	event := <-sub.Events()
	suite.Equal(events.EventSimulationStarted, event.Type)
	suite.Equal(sim.ID, event.SimulationID)
}

func (suite *ManagerTestSuite) TestStartFallsBackWhenPriceIsUnavailable() {
	suite.market.EXPECT().GetTicker(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Ticker{}, errors.New(errors.ErrCodeExchangeUnavailable, "down")).
		AnyTimes()

	sim, err := suite.manager.Start(context.Background(), suite.startRequest())
	suite.Require().NoError(err)

	suite.Equal(50000000.0, sim.StartPrice)
	suite.Equal(types.DataSourceSimulated, sim.DataSource)
}

func (suite *ManagerTestSuite) TestConsecutiveMarketFailuresEndTheRun() {
	suite.market.EXPECT().GetTicker(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Ticker{}, errors.New(errors.ErrCodeExchangeUnavailable, "down")).
		AnyTimes()

	sim, err := suite.manager.Start(context.Background(), suite.startRequest())
	suite.Require().NoError(err)

	suite.Eventually(func() bool {
		return suite.storedStatus(sim.ID) == types.SimulationStatusError
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := suite.repo.GetSimulation(context.Background(), sim.ID)
	suite.Require().NoError(err)
	suite.Contains(stored.Error, "down")
	suite.NotNil(stored.EndedAt)
	suite.Eventually(func() bool { return suite.manager.ActiveCount() == 0 }, time.Second, 10*time.Millisecond)
}

func (suite *ManagerTestSuite) TestWarmUpLoadsRecentCandles() {
	cfg := testSimulationConfig()
	cfg.WarmupCandles = 30
	suite.manager = suite.newManager(cfg)

	suite.steadyPrice(100)
	suite.market.EXPECT().GetOHLCV(gomock.Any(), "binance", "BTC/KRW", types.Timeframe1m, time.Time{}, time.Time{}, 30).
		Return(mocks.Linear("BTC/KRW", types.Timeframe1m, suite.clock.Now().Add(-30*time.Minute), 30, 100, 0), nil)

	sim, err := suite.manager.Start(context.Background(), suite.startRequest())
	suite.Require().NoError(err)

	r, ok := suite.manager.getRun(sim.ID)
	suite.Require().True(ok)
	suite.GreaterOrEqual(r.history.Count("BTC/KRW"), 30)
}

func (suite *ManagerTestSuite) TestTicksTradeAndTrackTheAccount() {
	gomock.InOrder(
		suite.market.EXPECT().GetTicker(gomock.Any(), "binance", "BTC/KRW").
			Return(types.Ticker{Price: 100, Source: types.DataSourceReal}, nil),
		suite.market.EXPECT().GetTicker(gomock.Any(), "binance", "BTC/KRW").
			Return(types.Ticker{Price: 102, Source: types.DataSourceReal}, nil).
			AnyTimes(),
	)

	sub := suite.broadcaster.Subscribe("")

	req := types.StartSimulationRequest{Strategy: "short_trading", Symbol: "BTC/KRW"}
	sim, err := suite.manager.Start(context.Background(), req)
	suite.Require().NoError(err)

	suite.Eventually(func() bool {
		report, err := suite.manager.Status(context.Background(), sim.ID)

		return err == nil && report.TotalTrades == 1
	}, 2*time.Second, 10*time.Millisecond)

	report, err := suite.manager.Status(context.Background(), sim.ID)
	suite.Require().NoError(err)
	suite.Equal(102.0, report.LastPrice)
	suite.Greater(report.PositionQuantity, 0.0)
	suite.Less(report.Cash, report.InitialBalance)
	suite.Len(report.RecentTrades, 1)

	seenTrade := false
	timeout := time.After(2 * time.Second)

	for !seenTrade {
		select {
		case event := <-sub.Events():
			seenTrade = event.Type == events.EventSimulationTrade
		case <-timeout:
			suite.FailNow("no trade event published")
		}
	}
}

func (suite *ManagerTestSuite) TestStop() {
	suite.steadyPrice(100)
	ctx := context.Background()

	sim, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Require().NoError(err)

	stopped, err := suite.manager.Stop(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusStopped, stopped.Status)
	suite.NotNil(stopped.EndedAt)
	suite.Equal(0, suite.manager.ActiveCount())
	suite.Equal(types.SimulationStatusStopped, suite.storedStatus(sim.ID))

	_, err = suite.manager.Stop(ctx, sim.ID)
	suite.Equal(errors.ErrCodeSimulationNotRunning, errors.GetCode(err))

	_, err = suite.manager.Stop(ctx, "missing")
	suite.Equal(errors.ErrCodeSimulationNotFound, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestStopAfterRunCompletedOnItsOwn() {
	suite.steadyPrice(100)
	ctx := context.Background()

	sim, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Require().NoError(err)

	r, ok := suite.manager.getRun(sim.ID)
	suite.Require().True(ok)

	// the deadline ends the run while it is still registered
	r.requestStop(types.SimulationStatusCompleted, "")
	<-r.done
	suite.manager.mu.Lock()
	suite.manager.runs[sim.ID] = r
	suite.manager.mu.Unlock()

	_, err = suite.manager.Stop(ctx, sim.ID)
	suite.Equal(errors.ErrCodeSimulationNotRunning, errors.GetCode(err))
	suite.Equal(types.SimulationStatusCompleted, suite.storedStatus(sim.ID))

	suite.manager.remove(sim.ID)
}

func (suite *ManagerTestSuite) TestConcurrencyLimit() {
	suite.steadyPrice(100)
	ctx := context.Background()

	for range 2 {
		_, err := suite.manager.Start(ctx, suite.startRequest())
		suite.Require().NoError(err)
	}

	_, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Equal(errors.ErrCodeSimulationLimitReached, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestStatusCompletesExpiredRun() {
	suite.steadyPrice(100)
	ctx := context.Background()

	req := suite.startRequest()
	req.DurationHours = 1

	sim, err := suite.manager.Start(ctx, req)
	suite.Require().NoError(err)

	report, err := suite.manager.Status(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusRunning, report.Status)

	suite.clock.Advance(2 * time.Hour)

	report, err = suite.manager.Status(ctx, sim.ID)
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusCompleted, report.Status)
	suite.Equal(0.0, report.RemainingHours)
	suite.Equal(types.SimulationStatusCompleted, suite.storedStatus(sim.ID))
}

func (suite *ManagerTestSuite) TestRunCompletesWhenDurationElapses() {
	suite.steadyPrice(100)
	sub := suite.broadcaster.Subscribe("")

	req := suite.startRequest()
	req.DurationHours = 0.00001

	sim, err := suite.manager.Start(context.Background(), req)
	suite.Require().NoError(err)

	suite.Eventually(func() bool {
		return suite.storedStatus(sim.ID) == types.SimulationStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	completed := false
	timeout := time.After(2 * time.Second)

	for !completed {
		select {
		case event := <-sub.Events():
			completed = event.Type == events.EventSimulationCompleted
		case <-timeout:
			suite.FailNow("no completion event published")
		}
	}
}

func (suite *ManagerTestSuite) TestStatusOfStoredSimulation() {
	ctx := context.Background()
	endedAt := suite.clock.Now().Add(-time.Hour)

	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{
		ID:        "old",
		StartedAt: endedAt.Add(-time.Hour),
		EndsAt:    endedAt,
		EndedAt:   &endedAt,
		Status:    types.SimulationStatusStopped,
	}))

	report, err := suite.manager.Status(ctx, "old")
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusStopped, report.Status)
	suite.InDelta(1.0, report.ElapsedHours, 0.0001)

	_, err = suite.manager.Status(ctx, "missing")
	suite.Equal(errors.ErrCodeSimulationNotFound, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestListNewestFirst() {
	suite.steadyPrice(100)
	ctx := context.Background()

	older, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Require().NoError(err)

	suite.clock.Advance(time.Minute)

	newer, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Require().NoError(err)

	sims, err := suite.manager.List(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(sims, 2)
	suite.Equal(newer.ID, sims[0].ID)
	suite.Equal(older.ID, sims[1].ID)
}

func (suite *ManagerTestSuite) TestRecoverStopsOrphans() {
	ctx := context.Background()
	now := suite.clock.Now()

	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{ID: "orphan", StartedAt: now, EndsAt: now.Add(time.Hour), Status: types.SimulationStatusRunning}))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{ID: "done", StartedAt: now, EndsAt: now.Add(time.Hour), Status: types.SimulationStatusCompleted}))

	recovered, err := suite.manager.Recover(ctx)
	suite.Require().NoError(err)
	suite.Equal(1, recovered)

	orphan, err := suite.repo.GetSimulation(ctx, "orphan")
	suite.Require().NoError(err)
	suite.Equal(types.SimulationStatusStopped, orphan.Status)
	suite.Equal(interruptedMessage, orphan.Error)
	suite.NotNil(orphan.EndedAt)
}

func (suite *ManagerTestSuite) TestCleanupRemovesExpiredSimulations() {
	ctx := context.Background()
	now := suite.clock.Now()
	longAgo := now.Add(-48 * time.Hour)
	recently := now.Add(-time.Hour)

	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{ID: "expired", StartedAt: longAgo, EndedAt: &longAgo, Status: types.SimulationStatusCompleted}))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{ID: "recent", StartedAt: recently, EndedAt: &recently, Status: types.SimulationStatusStopped}))
	suite.Require().NoError(suite.repo.SaveSimulation(ctx, types.Simulation{ID: "running", StartedAt: longAgo, Status: types.SimulationStatusRunning}))

	deleted, err := suite.manager.Cleanup(ctx)
	suite.Require().NoError(err)
	suite.Equal(1, deleted)

	_, err = suite.repo.GetSimulation(ctx, "expired")
	suite.Equal(errors.ErrCodeSimulationNotFound, errors.GetCode(err))

	sims, err := suite.repo.ListSimulations(ctx)
	suite.Require().NoError(err)
	suite.Len(sims, 2)
}

func (suite *ManagerTestSuite) TestCleanupJobSchedule() {
	suite.NoError(suite.manager.StartCleanupJob())

	cfg := testSimulationConfig()
	cfg.CleanupSchedule = "every now and then"
	broken := suite.newManager(cfg)

	err := broken.StartCleanupJob()
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
	suite.NoError(broken.Shutdown(context.Background()))
}

func (suite *ManagerTestSuite) TestShutdownStopsRuns() {
	suite.steadyPrice(100)
	ctx := context.Background()

	sim, err := suite.manager.Start(ctx, suite.startRequest())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.manager.Shutdown(ctx))
	suite.Equal(types.SimulationStatusStopped, suite.storedStatus(sim.ID))
	suite.Equal(0, suite.manager.ActiveCount())

	_, err = suite.manager.Start(ctx, suite.startRequest())
	suite.Equal(errors.ErrCodeSimulationError, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestBacktest() {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(60 * 24 * time.Hour)
	sub := suite.broadcaster.Subscribe("")

	series := mocks.NewDataGenerator(7).Generate(mocks.GeneratorConfig{
		Symbol:       "BTC/KRW",
		Exchange:     "binance",
		Timeframe:    types.Timeframe1d,
		StartTime:    start,
		Count:        60,
		InitialPrice: 50000000,
		Volatility:   0.03,
		VolumeBase:   100,
	})
	series.Source = types.DataSourceReal

	suite.market.EXPECT().GetOHLCV(gomock.Any(), "binance", "BTC/KRW", types.Timeframe1d, start, end, 0).Return(series, nil)

	processed := 0
	onProcess := engine.OnProcessDataCallback(func(current, total int) error {
		processed = current

		return nil
	})

	result, err := suite.manager.Backtest(ctx, types.BacktestRequest{
		Strategy:  "arbitrage",
		Symbol:    "BTC/KRW",
		StartDate: start,
		EndDate:   end,
	}, engine.LifecycleCallbacks{OnProcessData: &onProcess})
	suite.Require().NoError(err)

	suite.Equal(60, processed)
	suite.Equal(60, result.Candles)
	suite.Equal(types.StrategyArbitrage, result.Strategy)
	suite.Equal(types.Timeframe1d, result.Timeframe)
	suite.Equal(1000000.0, result.InitialBalance)
	suite.Equal(types.DataSourceReal, result.DataSource)
	suite.Len(result.Trades, result.TotalTrades)

	stored, err := suite.manager.Backtests(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(stored, 1)
	suite.Equal(result.ID, stored[0].ID)
	suite.Nil(stored[0].Trades)

	event := <-sub.Events()
	suite.Equal(events.EventBacktestCompleted, event.Type)

	suite.recorder.mu.Lock()
	suite.Equal(1, suite.recorder.backtests)
	suite.recorder.mu.Unlock()
}

func (suite *ManagerTestSuite) TestBacktestValidation() {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.manager.Backtest(ctx, types.BacktestRequest{Strategy: "arbitrage", Symbol: "BTC/KRW", StartDate: start, EndDate: start}, engine.LifecycleCallbacks{})
	suite.Equal(errors.ErrCodeInvalidDateRange, errors.GetCode(err))

	_, err = suite.manager.Backtest(ctx, types.BacktestRequest{Strategy: "arbitrage", Symbol: "BTC/KRW", Timeframe: "7m", StartDate: start, EndDate: start.Add(time.Hour)}, engine.LifecycleCallbacks{})
	suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))

	_, err = suite.manager.Backtest(ctx, types.BacktestRequest{Strategy: "arbitrage", Symbol: "BTC/KRW"}, engine.LifecycleCallbacks{})
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestBacktestMarketFailure() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.market.EXPECT().GetOHLCV(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.OHLCVSeries{}, errors.Wrap(errors.ErrCodeExchangeUnavailable, "binance down", stderrors.New("timeout")))

	_, err := suite.manager.Backtest(context.Background(), types.BacktestRequest{
		Strategy:  "meme_trading",
		Symbol:    "DOGE/KRW",
		StartDate: start,
		EndDate:   start.Add(24 * time.Hour),
	}, engine.LifecycleCallbacks{})
	suite.Equal(errors.ErrCodeExchangeUnavailable, errors.GetCode(err))
}

func (suite *ManagerTestSuite) TestRepositoryFailuresPropagate() {
	ctx := context.Background()
	repo := mocks.NewMockRepository(suite.ctrl)
	unavailable := errors.New(errors.ErrCodeDataSourceUnavailable, "database is down")
	repo.EXPECT().ListSimulations(gomock.Any()).Return(nil, unavailable).Times(3)

	manager := NewManager(suite.cfg, suite.market, repo, suite.broadcaster, nil, WithClock(suite.clock.Now))
	defer func() {
		suite.NoError(manager.Shutdown(ctx))
	}()

	_, err := manager.List(ctx)
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))

	_, err = manager.Recover(ctx)
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))

	_, err = manager.Cleanup(ctx)
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))
}
