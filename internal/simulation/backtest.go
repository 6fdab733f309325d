package simulation

import (
	"context"

	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// Backtest replays a strategy over the candles of the requested window and stores
// the summary. The returned result carries the trades; the stored one does not.
func (m *Manager) Backtest(ctx context.Context, req types.BacktestRequest, callbacks engine.LifecycleCallbacks) (types.BacktestResult, error) {
	if err := m.validate.Struct(req); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid backtest request", err)
	}

	if !req.StartDate.Before(req.EndDate) {
		return types.BacktestResult{}, errors.New(errors.ErrCodeInvalidDateRange, "start date must be before end date")
	}

	timeframe, err := types.ParseTimeframe(req.Timeframe, types.Timeframe1d)
	if err != nil {
		return types.BacktestResult{}, err
	}

	symbol, err := provider.ParseSymbol(req.Symbol)
	if err != nil {
		return types.BacktestResult{}, err
	}

	strat, err := strategy.NewStrategyFromName(req.Strategy, req.Params)
	if err != nil {
		return types.BacktestResult{}, err
	}

	balance := req.InitialBalance
	if balance == 0 {
		balance = m.cfg.DefaultInitialBalance
	}

	exchange := req.Exchange
	if exchange == "" {
		exchange = m.market.DefaultExchange()
	}

	series, err := m.market.GetOHLCV(ctx, exchange, symbol.String(), timeframe, req.StartDate, req.EndDate, 0)
	if err != nil {
		return types.BacktestResult{}, err
	}

	engineConfig := enginev1.EmptyConfig()
	engineConfig.Broker = commission_fee.Broker(m.cfg.Broker)
	engineConfig.DecimalPrecision = m.cfg.DecimalPrecision
	engineConfig.InitialCapital = balance

	backtestEngine := enginev1.NewBacktestEngineV1(engineConfig, m.log)

	result, err := backtestEngine.Run(ctx, engine.BacktestInput{
		Strategy:       strat,
		Symbol:         symbol.String(),
		Exchange:       exchange,
		Timeframe:      timeframe,
		Data:           series.Data,
		InitialBalance: balance,
		Source:         series.Source,
	}, callbacks)
	if err != nil {
		return types.BacktestResult{}, err
	}

	summary := result
	summary.Trades = nil

	if err := m.repo.SaveBacktestResult(ctx, summary); err != nil {
		m.log.Warn("Failed to persist backtest result", zap.String("id", result.ID), zap.Error(err))
	}

	m.publish(ctx, events.NewEvent(events.EventBacktestCompleted, "", summary))
	m.recorder.BacktestCompleted(string(result.Strategy), string(result.DataSource))

	return result, nil
}

// Backtests returns the stored backtest summaries, newest first. A limit of zero returns all.
func (m *Manager) Backtests(ctx context.Context, limit int) ([]types.BacktestResult, error) {
	return m.repo.ListBacktestResults(ctx, limit)
}
