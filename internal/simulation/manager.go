// Package simulation runs paper trading simulations against live prices and
// strategy backtests against historical candles.
package simulation

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	enginev1 "github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// finalizeTimeout bounds persisting and publishing the final snapshot of a run,
// which happens after the run context is already cancelled.
const finalizeTimeout = 10 * time.Second

// Manager owns the registry of running simulations.
type Manager struct {
	cfg       config.SimulationConfig
	market    marketdata.MarketDataClient
	repo      storage.Repository
	publisher events.Publisher
	recorder  Recorder
	log       *logger.Logger
	now       func() time.Time
	validate  *validator.Validate

	mu       sync.RWMutex
	runs     map[string]*run
	closed   bool
	rootCtx  context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	cronJobs *cron.Cron
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(m *Manager) {
		if recorder != nil {
			m.recorder = recorder
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a manager. A nil publisher drops events.
func NewManager(cfg config.SimulationConfig, market marketdata.MarketDataClient, repo storage.Repository, publisher events.Publisher, log *logger.Logger, opts ...Option) *Manager {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	rootCtx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		cfg:       cfg,
		market:    market,
		repo:      repo,
		publisher: publisher,
		recorder:  noopRecorder{},
		log:       log.Named("simulation"),
		now:       time.Now,
		validate:  validator.New(),
		runs:      make(map[string]*run),
		rootCtx:   rootCtx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// ActiveCount returns the number of running simulations.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.runs)
}

// Start validates the request, prices the symbol, warms up the strategy history
// and launches the simulation loop.
func (m *Manager) Start(ctx context.Context, req types.StartSimulationRequest) (types.Simulation, error) {
	if err := m.validate.Struct(req); err != nil {
		return types.Simulation{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid simulation request", err)
	}

	if req.InitialBalance == 0 {
		req.InitialBalance = m.cfg.DefaultInitialBalance
	}

	if req.DurationHours == 0 {
		req.DurationHours = m.cfg.DefaultDurationHours
	}

	if req.InitialBalance <= 0 || req.DurationHours <= 0 {
		return types.Simulation{}, errors.New(errors.ErrCodeInvalidParameter, "initial balance and duration must be positive")
	}

	symbol, err := provider.ParseSymbol(req.Symbol)
	if err != nil {
		return types.Simulation{}, err
	}

	strat, err := strategy.NewStrategyFromName(req.Strategy, req.Params)
	if err != nil {
		return types.Simulation{}, err
	}

	exchange := req.Exchange
	if exchange == "" {
		exchange = m.market.DefaultExchange()
	}

	if err := m.checkCapacity(); err != nil {
		return types.Simulation{}, err
	}

	startPrice, source := m.currentPrice(ctx, exchange, symbol.String())
	history := datasource.NewInMemoryDataSource(m.historySize())
	m.warmUp(ctx, history, exchange, symbol.String())

	now := m.now().UTC()
	duration := time.Duration(req.DurationHours * float64(time.Hour))
	sim := types.Simulation{
		ID:             uuid.NewString(),
		Strategy:       strat.Name(),
		Symbol:         symbol.String(),
		Exchange:       exchange,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
		Cash:           req.InitialBalance,
		StartPrice:     startPrice,
		LastPrice:      startPrice,
		DurationHours:  req.DurationHours,
		StartedAt:      now,
		EndsAt:         now.Add(duration),
		UpdatedAt:      now,
		Status:         types.SimulationStatusRunning,
		DataSource:     source,
		Trades:         []types.Trade{},
	}

	broker := enginev1.NewBacktestTrading(
		enginev1.NewBacktestState(),
		req.InitialBalance,
		commission_fee.GetCommissionFeeHandler(commission_fee.Broker(m.cfg.Broker)),
		m.cfg.DecimalPrecision,
	)
	broker.SetLogger(m.log)

	if leveraged, ok := strat.(strategy.LeveragedStrategy); ok {
		broker.SetLeverage(leveraged.Leverage())
	}

	r := newRun(m, sim, strat, broker, history)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()

		return types.Simulation{}, errors.New(errors.ErrCodeSimulationError, "simulation manager is shut down")
	}

	if len(m.runs) >= m.cfg.MaxConcurrent {
		m.mu.Unlock()

		return types.Simulation{}, errors.Newf(errors.ErrCodeSimulationLimitReached, "at most %d simulations can run at once", m.cfg.MaxConcurrent)
	}

	runCtx, cancel := context.WithCancel(m.rootCtx)
	r.cancel = cancel
	m.runs[sim.ID] = r
	active := len(m.runs)
	m.wg.Add(1)
	m.mu.Unlock()

	m.saveSimulation(ctx, sim)
	m.publish(ctx, events.NewEvent(events.EventSimulationStarted, sim.ID, sim))
	m.recorder.SimulationStarted(string(sim.Strategy))
	m.recorder.SetActiveSimulations(active)

	m.log.Info("Simulation started",
		zap.String("id", sim.ID),
		zap.String("strategy", string(sim.Strategy)),
		zap.String("symbol", sim.Symbol),
		zap.String("exchange", sim.Exchange),
		zap.Float64("initial_balance", sim.InitialBalance),
		zap.Float64("start_price", startPrice),
		zap.String("data_source", string(source)),
	)

	go func() {
		defer m.wg.Done()
		r.loop(runCtx)
	}()

	return sim, nil
}

func (m *Manager) checkCapacity() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return errors.New(errors.ErrCodeSimulationError, "simulation manager is shut down")
	}

	if len(m.runs) >= m.cfg.MaxConcurrent {
		return errors.Newf(errors.ErrCodeSimulationLimitReached, "at most %d simulations can run at once", m.cfg.MaxConcurrent)
	}

	return nil
}

// currentPrice returns the ticker price, or the configured fallback price when the
// market cannot be reached.
func (m *Manager) currentPrice(ctx context.Context, exchange, symbol string) (float64, types.DataSource) {
	ticker, err := m.market.GetTicker(ctx, exchange, symbol)
	if err == nil && ticker.Price > 0 {
		return ticker.Price, ticker.Source
	}

	m.log.Warn("Using fallback price",
		zap.String("exchange", exchange),
		zap.String("symbol", symbol),
		zap.Float64("fallback_price", m.cfg.FallbackPrice),
		zap.Error(err),
	)

	return m.cfg.FallbackPrice, types.DataSourceSimulated
}

// warmUp loads recent one minute candles so indicators have history from the first tick.
func (m *Manager) warmUp(ctx context.Context, history *datasource.InMemoryDataSource, exchange, symbol string) {
	if m.cfg.WarmupCandles <= 0 {
		return
	}

	series, err := m.market.GetOHLCV(ctx, exchange, symbol, types.Timeframe1m, time.Time{}, time.Time{}, m.cfg.WarmupCandles)
	if err != nil {
		m.log.Warn("Failed to warm up history",
			zap.String("exchange", exchange),
			zap.String("symbol", symbol),
			zap.Error(err),
		)

		return
	}

	for _, candle := range series.Data {
		candle.Symbol = symbol
		history.Append(candle)
	}
}

func (m *Manager) historySize() int {
	return int(math.Max(float64(m.cfg.WarmupCandles), 0)) + 1000
}

// Status returns the report of a simulation. A running simulation past its end
// time is completed first.
func (m *Manager) Status(ctx context.Context, id string) (types.SimulationReport, error) {
	now := m.now()

	if r, ok := m.getRun(id); ok {
		sim := r.snapshot()
		if !now.Before(sim.EndsAt) {
			sim = m.finishRun(ctx, r, types.SimulationStatusCompleted, "")
		}

		return types.NewSimulationReport(sim, now), nil
	}

	sim, err := m.repo.GetSimulation(ctx, id)
	if err != nil {
		return types.SimulationReport{}, err
	}

	// a running snapshot without a live run belongs to a previous process
	if sim.Status == types.SimulationStatusRunning && !now.Before(sim.EndsAt) {
		sim = m.closeOrphan(ctx, sim, types.SimulationStatusCompleted, "")
	}

	return types.NewSimulationReport(sim, now), nil
}

// Stop ends a running simulation and returns its final snapshot.
func (m *Manager) Stop(ctx context.Context, id string) (types.Simulation, error) {
	if r, ok := m.getRun(id); ok {
		sim := m.finishRun(ctx, r, types.SimulationStatusStopped, "")

		// the run may have completed or failed on its own before the stop request landed
		if sim.Status != types.SimulationStatusStopped && sim.Status != types.SimulationStatusRunning {
			return types.Simulation{}, errors.Newf(errors.ErrCodeSimulationNotRunning, "simulation %s is %s", id, sim.Status)
		}

		return sim, nil
	}

	sim, err := m.repo.GetSimulation(ctx, id)
	if err != nil {
		return types.Simulation{}, err
	}

	if sim.Status != types.SimulationStatusRunning {
		return types.Simulation{}, errors.Newf(errors.ErrCodeSimulationNotRunning, "simulation %s is %s", id, sim.Status)
	}

	return m.closeOrphan(ctx, sim, types.SimulationStatusStopped, ""), nil
}

// List returns every simulation, newest first. Live runs override their stored snapshot.
func (m *Manager) List(ctx context.Context) ([]types.Simulation, error) {
	stored, err := m.repo.ListSimulations(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]int, len(stored))
	for i, sim := range stored {
		byID[sim.ID] = i
	}

	m.mu.RLock()
	live := make([]*run, 0, len(m.runs))
	for _, r := range m.runs {
		live = append(live, r)
	}
	m.mu.RUnlock()

	for _, r := range live {
		sim := r.snapshot()
		if i, ok := byID[sim.ID]; ok {
			stored[i] = sim
		} else {
			stored = append(stored, sim)
		}
	}

	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].StartedAt.Equal(stored[j].StartedAt) {
			return stored[i].ID < stored[j].ID
		}

		return stored[i].StartedAt.After(stored[j].StartedAt)
	})

	return stored, nil
}

func (m *Manager) getRun(id string) (*run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[id]

	return r, ok
}

// finishRun asks the run loop to end with status and waits for it to exit.
func (m *Manager) finishRun(ctx context.Context, r *run, status types.SimulationStatus, message string) types.Simulation {
	r.requestStop(status, message)

	select {
	case <-r.done:
	case <-ctx.Done():
	}

	return r.snapshot()
}

// closeOrphan finishes a stored running snapshot that has no live run.
func (m *Manager) closeOrphan(ctx context.Context, sim types.Simulation, status types.SimulationStatus, message string) types.Simulation {
	now := m.now().UTC()
	sim.Status = status
	sim.EndedAt = &now
	sim.UpdatedAt = now

	if message != "" {
		sim.Error = message
	}

	m.saveSimulation(ctx, sim)

	return sim
}

// remove drops a finished run from the registry.
func (m *Manager) remove(id string) {
	m.mu.Lock()
	delete(m.runs, id)
	active := len(m.runs)
	m.mu.Unlock()

	m.recorder.SetActiveSimulations(active)
}

func (m *Manager) saveSimulation(ctx context.Context, sim types.Simulation) {
	if err := m.repo.SaveSimulation(ctx, sim); err != nil {
		m.log.Warn("Failed to persist simulation",
			zap.String("id", sim.ID),
			zap.String("status", string(sim.Status)),
			zap.Error(err),
		)
	}
}

func (m *Manager) publish(ctx context.Context, event events.Event) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.log.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("simulation_id", event.SimulationID),
			zap.Error(err),
		)
	}
}

// Shutdown stops every run and waits for the loops to exit or ctx to end.
// Runs end as stopped.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()

		return nil
	}

	m.closed = true
	for _, r := range m.runs {
		r.requestStop(types.SimulationStatusStopped, "")
	}
	cronJobs := m.cronJobs
	m.mu.Unlock()

	if cronJobs != nil {
		<-cronJobs.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	defer m.cancel()

	select {
	case <-done:
		m.log.Info("Simulation manager stopped")

		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrCodeSimulationError, "timed out waiting for simulations to stop", ctx.Err())
	}
}
