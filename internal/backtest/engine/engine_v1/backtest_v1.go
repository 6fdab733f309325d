package engine

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/indicator"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

type BacktestEngineV1 struct {
	config BacktestEngineV1Config
	log    *logger.Logger
}

func NewBacktestEngineV1(config BacktestEngineV1Config, log *logger.Logger) engine.Engine {
	return &BacktestEngineV1{
		config: config,
		log:    log,
	}
}

// Run replays the candles of input in time order. For every candle the history and the
// broker are updated before the strategy sees it. Strategy errors are logged and the
// candle is skipped.
func (b *BacktestEngineV1) Run(ctx context.Context, input engine.BacktestInput, callbacks engine.LifecycleCallbacks) (result types.BacktestResult, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			if err != nil {
				(*callbacks.OnBacktestEnd)(nil, err)

				return
			}

			(*callbacks.OnBacktestEnd)(&result, nil)
		}()
	}

	data, initialBalance, err := b.preRunCheck(input)
	if err != nil {
		return types.BacktestResult{}, err
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(input.Strategy.Name(), input.Symbol, len(data)); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "backtest start callback failed", err)
		}
	}

	state := NewBacktestState()
	broker := NewBacktestTrading(state, initialBalance, commission_fee.GetCommissionFeeHandler(b.config.Broker), b.config.DecimalPrecision)
	broker.SetLogger(b.log)

	if leveraged, ok := input.Strategy.(strategy.LeveragedStrategy); ok {
		broker.SetLeverage(leveraged.Leverage())
	}

	if callbacks.OnTrade != nil {
		broker.OnTrade(*callbacks.OnTrade)
	}

	history := datasource.NewInMemoryDataSource(b.config.MarketDataCacheSize)
	strategyContext := strategy.StrategyContext{
		DataSource:        history,
		IndicatorRegistry: indicator.NewDefaultIndicatorRegistry(),
		TradingSystem:     broker,
		Logger:            b.log,
	}

	equity := make([]float64, 0, len(data))

	for i, candle := range data {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled", err)
		}

		history.Append(candle)
		broker.UpdateCurrentMarketData(candle)

		if err := input.Strategy.ProcessData(strategyContext, candle); err != nil && b.log != nil {
			b.log.Warn("Strategy failed to process data",
				zap.String("strategy", string(input.Strategy.Name())),
				zap.Time("time", candle.Time),
				zap.Error(err),
			)
		}

		equity = append(equity, broker.Equity())

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(i+1, len(data)); err != nil {
				return types.BacktestResult{}, errors.Wrap(errors.ErrCodeCallbackFailed, "process data callback failed", err)
			}
		}
	}

	result = b.buildResult(input, data, initialBalance, state, equity)

	if b.log != nil {
		b.log.Info("Backtest finished",
			zap.String("strategy", string(result.Strategy)),
			zap.String("symbol", result.Symbol),
			zap.Int("candles", result.Candles),
			zap.Int("trades", result.TotalTrades),
			zap.Float64("return_rate", result.ReturnRate),
		)
	}

	return result, nil
}

// preRunCheck validates the input and returns the candles to replay, in time order and
// inside the configured window, together with the starting balance.
func (b *BacktestEngineV1) preRunCheck(input engine.BacktestInput) ([]types.MarketData, float64, error) {
	if input.Strategy == nil {
		return nil, 0, errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy loaded")
	}

	initialBalance := input.InitialBalance
	if initialBalance == 0 {
		initialBalance = b.config.InitialCapital
	}

	if initialBalance <= 0 {
		return nil, 0, errors.Newf(errors.ErrCodeBacktestConfigError, "initial balance must be positive: %f", initialBalance)
	}

	data := make([]types.MarketData, 0, len(input.Data))

	for _, candle := range input.Data {
		if !b.config.inWindow(candle.Time) {
			continue
		}

		if candle.Symbol == "" {
			candle.Symbol = input.Symbol
		}

		data = append(data, candle)
	}

	if len(data) == 0 {
		return nil, 0, errors.Newf(errors.ErrCodeBacktestNoData, "no market data for %s", input.Symbol)
	}

	slices.SortStableFunc(data, func(x, y types.MarketData) int {
		return x.Time.Compare(y.Time)
	})

	return data, initialBalance, nil
}

func (b *BacktestEngineV1) buildResult(input engine.BacktestInput, data []types.MarketData, initialBalance float64, state *BacktestState, equity []float64) types.BacktestResult {
	trades := state.GetAllTrades()
	winning, losing := tradeOutcomes(trades)
	returns := equityReturns(equity)
	periodsPerYear := input.Timeframe.PeriodsPerYear()

	finalBalance := equity[len(equity)-1]
	start := data[0].Time
	end := data[len(data)-1].Time

	sells := 0
	for _, trade := range trades {
		if trade.Order.Side == types.PurchaseTypeSell {
			sells++
		}
	}

	winRate := 0.0
	if sells > 0 {
		winRate = float64(winning) / float64(sells) * 100
	}

	source := input.Source
	if source == "" {
		source = types.DataSourceReal
	}

	return types.BacktestResult{
		ID:               uuid.New().String(),
		Strategy:         input.Strategy.Name(),
		Symbol:           input.Symbol,
		Exchange:         input.Exchange,
		Timeframe:        input.Timeframe,
		StartDate:        start,
		EndDate:          end,
		DurationDays:     int(end.Sub(start) / (24 * time.Hour)),
		Candles:          len(data),
		InitialBalance:   initialBalance,
		FinalBalance:     finalBalance,
		ProfitLoss:       finalBalance - initialBalance,
		ReturnRate:       (finalBalance - initialBalance) / initialBalance * 100,
		TotalTrades:      len(trades),
		WinningTrades:    winning,
		LosingTrades:     losing,
		WinRate:          winRate,
		MaxDrawdown:      maxDrawdown(equity),
		SharpeRatio:      sharpeRatio(returns, periodsPerYear),
		Volatility:       annualizedVolatility(returns, periodsPerYear),
		BuyAndHoldReturn: buyAndHoldReturn(data),
		TotalFees:        state.TotalFees(),
		DataSource:       source,
		CreatedAt:        time.Now().UTC(),
		Trades:           trades,
	}
}
