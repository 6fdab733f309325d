package strategy

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/indicator"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

func marketOrder(name types.StrategyType, symbol string, side types.PurchaseType, quantity float64, message string) types.ExecuteOrder {
	return types.ExecuteOrder{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Side:         side,
		OrderType:    types.OrderTypeMarket,
		Reason:       types.Reason{Reason: types.OrderReasonStrategy, Message: message},
		StrategyName: string(name),
		Quantity:     quantity,
		PositionType: types.PositionTypeLong,
		TakeProfit:   optional.None[types.ExecuteOrderTakeProfitOrStopLoss](),
		StopLoss:     optional.None[types.ExecuteOrderTakeProfitOrStopLoss](),
	}
}

func exitLeg(symbol string, price float64) optional.Option[types.ExecuteOrderTakeProfitOrStopLoss] {
	return optional.Some(types.ExecuteOrderTakeProfitOrStopLoss{
		Symbol: symbol,
		Side:   types.PurchaseTypeSell,
		Price:  price,
	})
}

// buyQuantity sizes a buy as fraction of what the account can afford.
// The candle high is used as the price so the market fill is always covered.
func buyQuantity(ctx StrategyContext, data types.MarketData, fraction float64) (float64, error) {
	price := data.High
	if price <= 0 {
		price = data.Close
	}

	maxQty, err := ctx.TradingSystem.GetMaxBuyQuantity(data.Symbol, price)
	if err != nil {
		return 0, err
	}

	return maxQty * fraction, nil
}

// closePosition sells the whole open quantity of symbol.
func closePosition(ctx StrategyContext, name types.StrategyType, position types.Position, message string) error {
	if !position.IsOpen() {
		return nil
	}

	logDecision(ctx, name, position.Symbol, "exit", message)

	return ctx.TradingSystem.PlaceOrder(marketOrder(name, position.Symbol, types.PurchaseTypeSell, position.Quantity, message))
}

func indicatorContext(ctx StrategyContext) indicator.IndicatorContext {
	return indicator.IndicatorContext{
		DataSource:        ctx.DataSource,
		IndicatorRegistry: ctx.IndicatorRegistry,
	}
}

// rsiValue returns the RSI at data, with ok false while there is not enough history.
func rsiValue(ctx StrategyContext, data types.MarketData) (value float64, ok bool, err error) {
	rsi, err := ctx.IndicatorRegistry.GetIndicator(types.IndicatorTypeRSI)
	if err != nil {
		return 0, false, err
	}

	value, err = rsi.RawValue(data.Symbol, data.Time, indicatorContext(ctx))
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return value, true, nil
}

func logDecision(ctx StrategyContext, name types.StrategyType, symbol string, action string, message string) {
	if ctx.Logger == nil {
		return
	}

	ctx.Logger.Debug("strategy decision",
		zap.String("strategy", string(name)),
		zap.String("symbol", symbol),
		zap.String("action", action),
		zap.String("message", message),
	)
}
