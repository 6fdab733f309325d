package simulation

import (
	"context"
	"math"
	"sync"
	"time"

	enginev1 "github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/indicator"
	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"go.uber.org/zap"
)

// run is one live simulation: a strategy trading through a paper broker on ticker prices.
type run struct {
	manager  *Manager
	strategy strategy.Strategy
	broker   *enginev1.BacktestTrading
	history  *datasource.InMemoryDataSource
	registry indicator.IndicatorRegistry

	mu        sync.Mutex
	sim       types.Simulation
	newTrades []types.Trade

	stopOnce   sync.Once
	stopStatus types.SimulationStatus
	stopError  string
	cancel     context.CancelFunc
	done       chan struct{}
}

func newRun(m *Manager, sim types.Simulation, strat strategy.Strategy, broker *enginev1.BacktestTrading, history *datasource.InMemoryDataSource) *run {
	r := &run{
		manager:    m,
		strategy:   strat,
		broker:     broker,
		history:    history,
		registry:   indicator.NewDefaultIndicatorRegistry(),
		sim:        sim,
		stopStatus: types.SimulationStatusStopped,
		done:       make(chan struct{}),
	}

	broker.OnTrade(func(trade types.Trade) {
		r.newTrades = append(r.newTrades, trade)
	})

	return r
}

func (r *run) snapshot() types.Simulation {
	r.mu.Lock()
	defer r.mu.Unlock()

	sim := r.sim
	sim.Trades = append([]types.Trade{}, r.sim.Trades...)

	if r.sim.EndedAt != nil {
		endedAt := *r.sim.EndedAt
		sim.EndedAt = &endedAt
	}

	return sim
}

// requestStop records why the run ends and cancels it. Only the first request counts.
func (r *run) requestStop(status types.SimulationStatus, message string) {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopStatus = status
		r.stopError = message
		r.mu.Unlock()

		if r.cancel != nil {
			r.cancel()
		}
	})
}

// loop ticks until the run is cancelled, its duration elapses or the market
// fails too many times in a row.
func (r *run) loop(ctx context.Context) {
	defer close(r.done)

	m := r.manager
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	r.mu.Lock()
	remaining := r.sim.EndsAt.Sub(m.now())
	r.mu.Unlock()

	deadline := time.NewTimer(max(remaining, 0))
	defer deadline.Stop()

	consecutiveErrors := 0

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			status, message := r.stopStatus, r.stopError
			r.mu.Unlock()
			r.finish(status, message)

			return
		case <-deadline.C:
			r.finish(types.SimulationStatusCompleted, "")

			return
		case <-ticker.C:
			err := r.tick(ctx)
			if err == nil {
				consecutiveErrors = 0

				continue
			}

			if ctx.Err() != nil {
				continue
			}

			consecutiveErrors++
			m.log.Warn("Simulation tick failed",
				zap.String("id", r.sim.ID),
				zap.Int("consecutive_errors", consecutiveErrors),
				zap.Error(err),
			)

			if consecutiveErrors >= m.cfg.MaxConsecutiveErrors {
				r.finish(types.SimulationStatusError, err.Error())

				return
			}
		}
	}
}

// tick forms a candle from the previous and the current price and feeds it to the
// broker and the strategy.
func (r *run) tick(ctx context.Context) error {
	m := r.manager

	r.mu.Lock()
	exchange, symbol := r.sim.Exchange, r.sim.Symbol
	r.mu.Unlock()

	ticker, err := m.market.GetTicker(ctx, exchange, symbol)
	if err != nil {
		return err
	}

	r.mu.Lock()

	previous := r.sim.LastPrice
	if previous <= 0 {
		previous = ticker.Price
	}

	candle := types.MarketData{
		Symbol: symbol,
		Time:   m.now().UTC(),
		Open:   previous,
		High:   math.Max(previous, ticker.Price),
		Low:    math.Min(previous, ticker.Price),
		Close:  ticker.Price,
	}

	r.history.Append(candle)
	r.broker.UpdateCurrentMarketData(candle)

	strategyContext := strategy.StrategyContext{
		DataSource:        r.history,
		IndicatorRegistry: r.registry,
		TradingSystem:     r.broker,
		Logger:            m.log,
	}

	if err := r.strategy.ProcessData(strategyContext, candle); err != nil {
		m.log.Warn("Strategy failed to process data",
			zap.String("id", r.sim.ID),
			zap.String("strategy", string(r.sim.Strategy)),
			zap.Error(err),
		)
	}

	trades := r.newTrades
	r.newTrades = nil

	position, _ := r.broker.GetPosition(symbol)
	r.sim.LastPrice = ticker.Price
	r.sim.CurrentBalance = r.broker.Equity()
	r.sim.Cash = r.broker.Balance()
	r.sim.PositionQuantity = position.Quantity
	r.sim.UpdatedAt = candle.Time
	r.sim.DataSource = ticker.Source
	r.sim.AppendTrades(trades, m.cfg.TradeHistoryLimit, m.cfg.TradeHistoryKeep)
	r.mu.Unlock()

	sim := r.snapshot()
	m.saveSimulation(ctx, sim)

	for _, trade := range trades {
		m.publish(ctx, events.NewEvent(events.EventSimulationTrade, sim.ID, trade))
	}

	m.publish(ctx, events.NewEvent(events.EventSimulationUpdated, sim.ID, sim))
	m.recorder.AddSimulationTrades(len(trades))

	return nil
}

// finish stamps the final status, persists and announces it, and leaves the registry.
func (r *run) finish(status types.SimulationStatus, message string) {
	m := r.manager
	now := m.now().UTC()

	r.mu.Lock()
	r.sim.Status = status
	r.sim.EndedAt = &now
	r.sim.UpdatedAt = now
	if message != "" {
		r.sim.Error = message
	}
	r.mu.Unlock()

	sim := r.snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	m.saveSimulation(ctx, sim)
	m.publish(ctx, events.NewEvent(finishEventType(status), sim.ID, sim))
	m.remove(sim.ID)

	m.log.Info("Simulation finished",
		zap.String("id", sim.ID),
		zap.String("status", string(status)),
		zap.Float64("final_balance", sim.CurrentBalance),
		zap.Float64("profit_rate", sim.ProfitRate()),
		zap.Int("total_trades", sim.TotalTrades),
	)
}

func finishEventType(status types.SimulationStatus) events.EventType {
	switch status {
	case types.SimulationStatusCompleted:
		return events.EventSimulationCompleted
	case types.SimulationStatusError:
		return events.EventSimulationFailed
	default:
		return events.EventSimulationStopped
	}
}
