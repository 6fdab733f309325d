package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const brokerSymbol = "BTC/KRW"

type BacktestTradingTestSuite struct {
	suite.Suite
	broker *BacktestTrading
	trades []types.Trade
	start  time.Time
	tick   int
}

func TestBacktestTradingSuite(t *testing.T) {
	suite.Run(t, new(BacktestTradingTestSuite))
}

func (suite *BacktestTradingTestSuite) SetupTest() {
	suite.broker = NewBacktestTrading(NewBacktestState(), 10000, commission_fee.NewZeroCommissionFee(), 8)
	suite.trades = nil
	suite.broker.OnTrade(func(trade types.Trade) {
		suite.trades = append(suite.trades, trade)
	})
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.tick = 0
}

func (suite *BacktestTradingTestSuite) candle(open, high, low, close float64) types.MarketData {
	candle := types.MarketData{
		Symbol: brokerSymbol,
		Time:   suite.start.Add(time.Duration(suite.tick) * time.Hour),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1,
	}
	suite.tick++
	suite.broker.UpdateCurrentMarketData(candle)

	return candle
}

func order(side types.PurchaseType, orderType types.OrderType, quantity, price float64) types.ExecuteOrder {
	return types.ExecuteOrder{
		Symbol:       brokerSymbol,
		Side:         side,
		OrderType:    orderType,
		Reason:       types.Reason{Reason: types.OrderReasonStrategy, Message: "test"},
		Price:        price,
		StrategyName: "test",
		Quantity:     quantity,
		PositionType: types.PositionTypeLong,
		TakeProfit:   optional.None[types.ExecuteOrderTakeProfitOrStopLoss](),
		StopLoss:     optional.None[types.ExecuteOrderTakeProfitOrStopLoss](),
	}
}

func (suite *BacktestTradingTestSuite) position() types.Position {
	position, err := suite.broker.GetPosition(brokerSymbol)
	suite.Require().NoError(err)

	return position
}

func (suite *BacktestTradingTestSuite) TestMarketBuyFillsAtMidPrice() {
	candle := suite.candle(100, 110, 90, 105)

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 10, 0)))

	suite.Require().Len(suite.trades, 1)
	suite.Equal(100.0, suite.trades[0].ExecutedPrice)
	suite.Equal(candle.Time, suite.trades[0].ExecutedAt)
	suite.Equal(9000.0, suite.broker.Balance())
	suite.Equal(10.0, suite.position().Quantity)
	suite.Equal(10050.0, suite.broker.Equity())
}

func (suite *BacktestTradingTestSuite) TestOrderWithoutMarketData() {
	err := suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0))

	suite.Equal(errors.ErrCodeMarketDataMissing, errors.GetCode(err))
}

func (suite *BacktestTradingTestSuite) TestInvalidOrderRejected() {
	suite.candle(100, 110, 90, 105)

	invalid := order(types.PurchaseTypeBuy, types.OrderTypeMarket, 0, 0)
	suite.Equal(errors.ErrCodeInvalidExecuteOrder, errors.GetCode(suite.broker.PlaceOrder(invalid)))

	limit := order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 0)
	suite.Equal(errors.ErrCodeInvalidExecuteOrder, errors.GetCode(suite.broker.PlaceOrder(limit)))
}

func (suite *BacktestTradingTestSuite) TestQuantityRoundedDown() {
	suite.broker = NewBacktestTrading(NewBacktestState(), 10000, commission_fee.NewZeroCommissionFee(), 2)
	suite.candle(100, 100, 100, 100)

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1.239, 0)))
	suite.Equal(1.23, suite.position().Quantity)

	err := suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 0.001, 0))
	suite.Equal(errors.ErrCodeOrderFailed, errors.GetCode(err))
}

func (suite *BacktestTradingTestSuite) TestMarketBuyBeyondBuyingPower() {
	suite.candle(100, 100, 100, 100)

	err := suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 101, 0))

	suite.Equal(errors.ErrCodeInsufficientBuyingPower, errors.GetCode(err))
	suite.Empty(suite.trades)
	suite.Equal(10000.0, suite.broker.Balance())
}

func (suite *BacktestTradingTestSuite) TestSellClampedToHoldings() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 5, 0)))

	suite.candle(120, 120, 120, 120)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeMarket, 50, 0)))

	suite.Require().Len(suite.trades, 2)
	suite.Equal(5.0, suite.trades[1].ExecutedQty)
	suite.InDelta(100.0, suite.trades[1].PnL, 1e-9)
	suite.Equal(10100.0, suite.broker.Balance())
	suite.False(suite.position().IsOpen())
}

func (suite *BacktestTradingTestSuite) TestSellWithoutHoldings() {
	suite.candle(100, 100, 100, 100)

	err := suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeMarket, 1, 0))

	suite.Equal(errors.ErrCodeInsufficientSellingPower, errors.GetCode(err))
}

func (suite *BacktestTradingTestSuite) TestLimitBuyImmediateFill() {
	suite.candle(100, 110, 90, 100)

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 105)))

	suite.Require().Len(suite.trades, 1)
	suite.Equal(100.0, suite.trades[0].ExecutedPrice)
}

func (suite *BacktestTradingTestSuite) TestLimitBuyPendingThenFilled() {
	suite.candle(100, 110, 95, 100)

	limit := order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 90)
	limit.ID = "limit-1"
	suite.Require().NoError(suite.broker.PlaceOrder(limit))
	suite.Empty(suite.trades)

	status, err := suite.broker.GetOrderStatus("limit-1")
	suite.NoError(err)
	suite.Equal(types.OrderStatusPending, status)

	open, err := suite.broker.GetOpenOrders()
	suite.NoError(err)
	suite.Len(open, 1)

	suite.candle(95, 96, 80, 85)

	suite.Require().Len(suite.trades, 1)
	suite.Equal(88.0, suite.trades[0].ExecutedPrice)

	status, err = suite.broker.GetOrderStatus("limit-1")
	suite.NoError(err)
	suite.Equal(types.OrderStatusFilled, status)
}

func (suite *BacktestTradingTestSuite) TestLimitBuyBeyondBuyingPower() {
	suite.candle(100, 110, 95, 100)

	err := suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeLimit, 200, 90))

	suite.Equal(errors.ErrCodeInsufficientBuyingPower, errors.GetCode(err))
}

func (suite *BacktestTradingTestSuite) TestLimitSellFillsAtLimit() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0)))

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeLimit, 1, 110)))
	suite.Len(suite.trades, 1)

	suite.candle(105, 115, 104, 112)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(110.0, suite.trades[1].ExecutedPrice)
}

func (suite *BacktestTradingTestSuite) TestStopSellGapFillsAtOpen() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0)))
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeStop, 1, 95)))

	suite.candle(90, 92, 85, 88)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(90.0, suite.trades[1].ExecutedPrice)
}

func (suite *BacktestTradingTestSuite) TestStopSellFillsAtStop() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0)))
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeStop, 1, 95)))

	suite.candle(99, 101, 94, 96)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(95.0, suite.trades[1].ExecutedPrice)
}

func (suite *BacktestTradingTestSuite) withLegs(tp, sl float64) types.ExecuteOrder {
	entry := order(types.PurchaseTypeBuy, types.OrderTypeMarket, 10, 0)
	entry.TakeProfit = optional.Some(types.ExecuteOrderTakeProfitOrStopLoss{Symbol: brokerSymbol, Side: types.PurchaseTypeSell, Price: tp})
	entry.StopLoss = optional.Some(types.ExecuteOrderTakeProfitOrStopLoss{Symbol: brokerSymbol, Side: types.PurchaseTypeSell, Price: sl})

	return entry
}

func (suite *BacktestTradingTestSuite) TestTakeProfitCancelsStopLoss() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(suite.withLegs(110, 90)))

	open, err := suite.broker.GetOpenOrders()
	suite.Require().NoError(err)
	suite.Require().Len(open, 2)

	stopID := open[0].ID
	suite.Equal(types.OrderTypeStop, open[0].OrderType)
	suite.Equal(types.OrderTypeLimit, open[1].OrderType)
	suite.Equal(open[0].ParentID, open[1].ParentID)

	suite.candle(105, 112, 104, 111)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(110.0, suite.trades[1].ExecutedPrice)
	suite.Equal(types.OrderReasonTakeProfit, suite.trades[1].Order.Reason.Reason)

	open, err = suite.broker.GetOpenOrders()
	suite.NoError(err)
	suite.Empty(open)

	status, err := suite.broker.GetOrderStatus(stopID)
	suite.NoError(err)
	suite.Equal(types.OrderStatusCancelled, status)

	suite.candle(100, 100, 80, 85)
	suite.Len(suite.trades, 2)
}

func (suite *BacktestTradingTestSuite) TestStopLossWinsWhenBothLegsTouch() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(suite.withLegs(110, 90)))

	suite.candle(100, 115, 85, 100)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(types.OrderReasonStopLoss, suite.trades[1].Order.Reason.Reason)
	suite.Equal(90.0, suite.trades[1].ExecutedPrice)
	suite.False(suite.position().IsOpen())
}

func (suite *BacktestTradingTestSuite) TestLegsNotTriggeredOnEntryCandle() {
	suite.candle(100, 120, 80, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(suite.withLegs(110, 90)))

	suite.Len(suite.trades, 1)
	suite.True(suite.position().IsOpen())
}

func (suite *BacktestTradingTestSuite) TestCancelOrder() {
	suite.candle(100, 110, 95, 100)

	limit := order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 90)
	limit.ID = "limit-1"
	suite.Require().NoError(suite.broker.PlaceOrder(limit))

	suite.NoError(suite.broker.CancelOrder("limit-1"))
	suite.Equal(errors.ErrCodeOrderNotFound, errors.GetCode(suite.broker.CancelOrder("limit-1")))

	status, err := suite.broker.GetOrderStatus("limit-1")
	suite.NoError(err)
	suite.Equal(types.OrderStatusCancelled, status)

	_, err = suite.broker.GetOrderStatus("unknown")
	suite.Equal(errors.ErrCodeOrderNotFound, errors.GetCode(err))

	suite.candle(85, 86, 80, 82)
	suite.Empty(suite.trades)
}

func (suite *BacktestTradingTestSuite) TestCancelAllOrders() {
	suite.candle(100, 110, 95, 100)
	suite.Require().NoError(suite.broker.PlaceMultipleOrders([]types.ExecuteOrder{
		order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 90),
		order(types.PurchaseTypeBuy, types.OrderTypeLimit, 1, 80),
	}))

	suite.NoError(suite.broker.CancelAllOrders())

	open, err := suite.broker.GetOpenOrders()
	suite.NoError(err)
	suite.Empty(open)
}

func (suite *BacktestTradingTestSuite) TestCommissionApplied() {
	suite.broker = NewBacktestTrading(NewBacktestState(), 10000, commission_fee.NewBinanceCommissionFee(), 8)
	suite.candle(100, 100, 100, 100)

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 10, 0)))

	suite.InDelta(8999.0, suite.broker.Balance(), 1e-9)

	info, err := suite.broker.GetAccountInfo()
	suite.NoError(err)
	suite.InDelta(1.0, info.TotalFees, 1e-9)
	suite.InDelta(-1.0, info.UnrealizedPnL, 1e-9)
}

func (suite *BacktestTradingTestSuite) TestMaxBuyQuantity() {
	suite.broker = NewBacktestTrading(NewBacktestState(), 10000, commission_fee.NewBinanceCommissionFee(), 8)
	suite.candle(100, 100, 100, 100)

	quantity, err := suite.broker.GetMaxBuyQuantity(brokerSymbol, 100)
	suite.Require().NoError(err)
	suite.Less(quantity, 100.0)
	suite.Greater(quantity, 99.8)

	suite.NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, quantity, 0)))

	_, err = suite.broker.GetMaxBuyQuantity(brokerSymbol, 0)
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *BacktestTradingTestSuite) TestLeverageBuyingPower() {
	suite.broker.SetLeverage(2)
	suite.candle(100, 100, 100, 100)

	info, err := suite.broker.GetAccountInfo()
	suite.NoError(err)
	suite.Equal(20000.0, info.BuyingPower)

	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 150, 0)))

	info, err = suite.broker.GetAccountInfo()
	suite.NoError(err)
	suite.Equal(-5000.0, info.Balance)
	suite.Equal(5000.0, info.MarginUsed)
	suite.Equal(10000.0, info.Equity)
	suite.Equal(5000.0, info.BuyingPower)

	suite.broker.SetLeverage(0.5)
	info, err = suite.broker.GetAccountInfo()
	suite.NoError(err)
	suite.Equal(-5000.0, info.BuyingPower)
}

func (suite *BacktestTradingTestSuite) TestLiquidationWhenEquityExhausted() {
	suite.broker.SetLeverage(3)
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 300, 0)))

	suite.candle(70, 70, 60, 65)

	suite.Require().Len(suite.trades, 2)
	suite.Equal(types.OrderReasonLiquidation, suite.trades[1].Order.Reason.Reason)
	suite.Equal(65.0, suite.trades[1].ExecutedPrice)
	suite.False(suite.position().IsOpen())

	quantity, err := suite.broker.GetMaxBuyQuantity(brokerSymbol, 65)
	suite.NoError(err)
	suite.Equal(0.0, quantity)
}

func (suite *BacktestTradingTestSuite) TestGetTradesFilter() {
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0)))
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeBuy, types.OrderTypeMarket, 1, 0)))
	suite.candle(100, 100, 100, 100)
	suite.Require().NoError(suite.broker.PlaceOrder(order(types.PurchaseTypeSell, types.OrderTypeMarket, 2, 0)))

	all, err := suite.broker.GetTrades(types.TradeFilter{})
	suite.NoError(err)
	suite.Len(all, 3)

	last, err := suite.broker.GetTrades(types.TradeFilter{Limit: 1})
	suite.NoError(err)
	suite.Require().Len(last, 1)
	suite.Equal(types.PurchaseTypeSell, last[0].Order.Side)

	later, err := suite.broker.GetTrades(types.TradeFilter{StartTime: suite.start.Add(time.Hour)})
	suite.NoError(err)
	suite.Len(later, 2)

	other, err := suite.broker.GetTrades(types.TradeFilter{Symbol: "ETH/KRW"})
	suite.NoError(err)
	suite.Empty(other)

	maxSell, err := suite.broker.GetMaxSellQuantity(brokerSymbol)
	suite.NoError(err)
	suite.Equal(0.0, maxSell)
}
