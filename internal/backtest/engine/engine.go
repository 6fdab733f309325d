package engine

import (
	"context"

	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called once the input is validated, before the first candle.
type OnBacktestStartCallback func(strategyName types.StrategyType, symbol string, totalDataPoints int) error

// OnBacktestEndCallback is called when the backtest completes (always called via defer).
// result is nil when the backtest failed.
type OnBacktestEndCallback func(result *types.BacktestResult, err error)

// OnProcessDataCallback is called for each data point processed.
type OnProcessDataCallback func(current int, total int) error

// OnTradeCallback is called for every fill of the paper broker.
type OnTradeCallback func(trade types.Trade)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnProcessData   *OnProcessDataCallback
	OnTrade         *OnTradeCallback
}

// BacktestInput is one strategy replayed over one candle series.
type BacktestInput struct {
	// Strategy must already be initialized with its parameters.
	Strategy       strategy.Strategy
	Symbol         string
	Exchange       string
	Timeframe      types.Timeframe
	Data           []types.MarketData
	InitialBalance float64
	// Source tells whether Data came from an exchange or the synthetic generator.
	Source types.DataSource
}

type Engine interface {
	// Run replays the input candles through the strategy and a paper broker.
	// The context can be used to cancel the backtest operation.
	// Use LifecycleCallbacks to receive notifications at different phases of the backtest.
	Run(ctx context.Context, input BacktestInput, callbacks LifecycleCallbacks) (types.BacktestResult, error)
}
