package engine

import (
	"math"
	"slices"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/internal/utils"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

// BacktestTrading is a paper broker that fills orders against the current candle.
// It is used both for backtests and for live simulations.
type BacktestTrading struct {
	state           *BacktestState
	balance         float64
	leverage        float64
	marketData      types.MarketData
	lastPrices      map[string]float64
	pendingOrders   []types.ExecuteOrder
	cancelledOrders map[string]struct{}
	// closedEntries holds the entries whose exit legs already filled one leg
	closedEntries    map[string]struct{}
	commission       commission_fee.CommissionFee
	decimalPrecision int
	log              *logger.Logger
	onTrade          func(types.Trade)
}

func NewBacktestTrading(state *BacktestState, initialBalance float64, commission commission_fee.CommissionFee, decimalPrecision int) *BacktestTrading {
	return &BacktestTrading{
		state:            state,
		balance:          initialBalance,
		leverage:         1,
		marketData:       types.MarketData{},
		lastPrices:       make(map[string]float64),
		pendingOrders:    []types.ExecuteOrder{},
		cancelledOrders:  make(map[string]struct{}),
		closedEntries:    make(map[string]struct{}),
		commission:       commission,
		decimalPrecision: decimalPrecision,
	}
}

// SetLeverage sets the buying power multiple of the equity. Values below 1 are treated as 1.
func (b *BacktestTrading) SetLeverage(leverage float64) {
	b.leverage = math.Max(leverage, 1)
}

// SetLogger routes fill logs to the trading child of log. A nil log disables them.
func (b *BacktestTrading) SetLogger(log *logger.Logger) {
	if log == nil || log.Logger == nil {
		b.log = nil

		return
	}

	b.log = log.Trading()
}

// OnTrade registers a function called after every fill.
func (b *BacktestTrading) OnTrade(fn func(types.Trade)) {
	b.onTrade = fn
}

// UpdateCurrentMarketData moves the broker to the next candle.
// Pending orders that the candle reaches are filled, then the account is liquidated
// if its equity is gone.
func (b *BacktestTrading) UpdateCurrentMarketData(marketData types.MarketData) {
	b.marketData = marketData
	b.lastPrices[marketData.Symbol] = marketData.Close

	b.processPendingOrders()
	b.checkLiquidation()
}

// CancelAllOrders implements trading.TradingSystem.
func (b *BacktestTrading) CancelAllOrders() error {
	for _, order := range b.pendingOrders {
		b.cancelledOrders[order.ID] = struct{}{}
	}

	b.pendingOrders = []types.ExecuteOrder{}

	return nil
}

// CancelOrder implements trading.TradingSystem.
func (b *BacktestTrading) CancelOrder(orderID string) error {
	for i, order := range b.pendingOrders {
		if order.ID == orderID {
			b.pendingOrders = slices.Delete(b.pendingOrders, i, i+1)
			b.cancelledOrders[orderID] = struct{}{}

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeOrderNotFound, "no pending order %s", orderID)
}

// GetOrderStatus implements trading.TradingSystem.
func (b *BacktestTrading) GetOrderStatus(orderID string) (types.OrderStatus, error) {
	if b.state.GetOrderById(orderID).IsSome() {
		return types.OrderStatusFilled, nil
	}

	for _, pendingOrder := range b.pendingOrders {
		if pendingOrder.ID == orderID {
			return types.OrderStatusPending, nil
		}
	}

	if _, ok := b.cancelledOrders[orderID]; ok {
		return types.OrderStatusCancelled, nil
	}

	return types.OrderStatusFailed, errors.Newf(errors.ErrCodeOrderNotFound, "order %s not found", orderID)
}

// GetPosition implements trading.TradingSystem.
func (b *BacktestTrading) GetPosition(symbol string) (types.Position, error) {
	return b.state.GetPosition(symbol), nil
}

// GetPositions implements trading.TradingSystem.
func (b *BacktestTrading) GetPositions() ([]types.Position, error) {
	return b.state.GetAllPositions(), nil
}

// GetAccountInfo implements trading.TradingSystem.
func (b *BacktestTrading) GetAccountInfo() (types.AccountInfo, error) {
	unrealized := 0.0
	for _, position := range b.state.GetAllPositions() {
		unrealized += position.UnrealizedPnL(b.lastPrices[position.Symbol])
	}

	return types.AccountInfo{
		Balance:       b.balance,
		Equity:        b.Equity(),
		BuyingPower:   b.buyingPower(),
		RealizedPnL:   b.state.RealizedPnL(),
		UnrealizedPnL: unrealized,
		TotalFees:     b.state.TotalFees(),
		MarginUsed:    math.Max(0, -b.balance),
	}, nil
}

// GetOpenOrders implements trading.TradingSystem.
func (b *BacktestTrading) GetOpenOrders() ([]types.ExecuteOrder, error) {
	return slices.Clone(b.pendingOrders), nil
}

// GetTrades implements trading.TradingSystem.
func (b *BacktestTrading) GetTrades(filter types.TradeFilter) ([]types.Trade, error) {
	trades := []types.Trade{}

	for _, trade := range b.state.GetAllTrades() {
		if filter.Matches(trade) {
			trades = append(trades, trade)
		}
	}

	if filter.Limit > 0 && len(trades) > filter.Limit {
		trades = trades[len(trades)-filter.Limit:]
	}

	return trades, nil
}

// GetMaxBuyQuantity implements trading.TradingSystem.
func (b *BacktestTrading) GetMaxBuyQuantity(symbol string, price float64) (float64, error) {
	if price <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "price must be positive: %f", price)
	}

	maxQty := utils.CalculateMaxQuantity(b.buyingPower(), price, b.commission)

	return utils.RoundToDecimalPrecision(maxQty, b.decimalPrecision), nil
}

// GetMaxSellQuantity implements trading.TradingSystem.
func (b *BacktestTrading) GetMaxSellQuantity(symbol string) (float64, error) {
	return b.getSellingPower(symbol), nil
}

// PlaceMultipleOrders implements trading.TradingSystem.
func (b *BacktestTrading) PlaceMultipleOrders(orders []types.ExecuteOrder) error {
	for _, order := range orders {
		err := b.PlaceOrder(order)
		if err != nil {
			return err
		}
	}

	return nil
}

// PlaceOrder implements trading.TradingSystem.
// Market orders:
//   - Always use the average price of the candle.
//   - Fail if the cost exceeds buying power for buy orders.
//   - If selling quantity > current holdings, sell the holdings.
//
// Limit orders:
//   - Buys fill once the low reaches the limit, at the lower of limit and average price.
//   - Sells fill once the high reaches the limit, at the limit price.
//
// Stop orders:
//   - Sells trigger once the low reaches the stop and fill at the stop or the open if it gapped below.
//   - Buys trigger once the high reaches the stop and fill at the stop or the open if it gapped above.
//
// Take profit and stop loss legs are armed once a buy fills and cancel each other.
func (b *BacktestTrading) PlaceOrder(order types.ExecuteOrder) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	if err := order.Validate(); err != nil {
		return err
	}

	if b.marketData.Symbol != order.Symbol || b.marketData.Time.IsZero() {
		return errors.Newf(errors.ErrCodeMarketDataMissing, "no market data for %s", order.Symbol)
	}

	// Round the quantity to respect configured decimal precision
	order.Quantity = utils.RoundToDecimalPrecision(order.Quantity, b.decimalPrecision)
	if order.Quantity <= 0 {
		return errors.New(errors.ErrCodeOrderFailed, "order quantity is too small or zero after rounding to configured precision")
	}

	if order.Side == types.PurchaseTypeSell {
		sellingPower := b.getSellingPower(order.Symbol)
		if sellingPower <= 0 {
			return errors.Newf(errors.ErrCodeInsufficientSellingPower, "no %s holdings to sell", order.Symbol)
		}

		order.Quantity = math.Min(order.Quantity, sellingPower)
	}

	switch order.OrderType {
	case types.OrderTypeMarket:
		_, err := b.executeOrder(order, b.marketData.MidPrice())

		return err
	case types.OrderTypeLimit:
		if order.Side == types.PurchaseTypeBuy {
			cost := order.Quantity*order.Price + b.commission.Calculate(order.Quantity, order.Price)
			if cost > b.buyingPower() {
				return errors.Newf(errors.ErrCodeInsufficientBuyingPower,
					"limit buy order cost (%.2f) exceeds buying power (%.2f)", cost, b.buyingPower())
			}
		}
	}

	if price, ok := b.triggerPrice(order); ok {
		_, err := b.executeOrder(order, price)

		return err
	}

	b.pendingOrders = append(b.pendingOrders, order)

	return nil
}

// Equity is the cash balance plus the open positions marked at their last close.
func (b *BacktestTrading) Equity() float64 {
	equity := b.balance
	for _, position := range b.state.GetAllPositions() {
		equity += position.MarketValue(b.lastPrices[position.Symbol])
	}

	return equity
}

// Balance is the cash balance. It is negative while borrowed buying power is in use.
func (b *BacktestTrading) Balance() float64 {
	return b.balance
}

// LastPrice returns the last close seen for symbol.
func (b *BacktestTrading) LastPrice(symbol string) float64 {
	return b.lastPrices[symbol]
}

func (b *BacktestTrading) buyingPower() float64 {
	return b.balance + (b.leverage-1)*math.Max(b.Equity(), 0)
}

func (b *BacktestTrading) getSellingPower(symbol string) float64 {
	position := b.state.GetPosition(symbol)

	return utils.RoundToDecimalPrecision(position.Quantity, b.decimalPrecision)
}

// triggerPrice reports whether the current candle reaches a limit or stop order and at what price it fills.
func (b *BacktestTrading) triggerPrice(order types.ExecuteOrder) (float64, bool) {
	candle := b.marketData
	if candle.Symbol != order.Symbol {
		return 0, false
	}

	switch {
	case order.OrderType == types.OrderTypeLimit && order.Side == types.PurchaseTypeBuy:
		if candle.Low <= order.Price {
			return math.Min(order.Price, candle.MidPrice()), true
		}
	case order.OrderType == types.OrderTypeLimit && order.Side == types.PurchaseTypeSell:
		if candle.High >= order.Price {
			return order.Price, true
		}
	case order.OrderType == types.OrderTypeStop && order.Side == types.PurchaseTypeSell:
		if candle.Low <= order.Price {
			return math.Min(order.Price, candle.Open), true
		}
	case order.OrderType == types.OrderTypeStop && order.Side == types.PurchaseTypeBuy:
		if candle.High >= order.Price {
			return math.Max(order.Price, candle.Open), true
		}
	}

	return 0, false
}

// processPendingOrders fills the pending orders the current candle reaches.
func (b *BacktestTrading) processPendingOrders() {
	if len(b.pendingOrders) == 0 {
		return
	}

	pending := b.pendingOrders
	b.pendingOrders = []types.ExecuteOrder{}

	for _, order := range pending {
		// an earlier fill in this pass may have closed the sibling leg
		if _, closed := b.closedEntries[order.ParentID]; closed && order.ParentID != "" {
			b.cancelledOrders[order.ID] = struct{}{}

			continue
		}

		price, ok := b.triggerPrice(order)
		if !ok {
			b.pendingOrders = append(b.pendingOrders, order)

			continue
		}

		if order.Side == types.PurchaseTypeSell {
			order.Quantity = math.Min(order.Quantity, b.getSellingPower(order.Symbol))
			if order.Quantity <= 0 {
				b.cancelledOrders[order.ID] = struct{}{}

				continue
			}
		}

		if _, err := b.executeOrder(order, price); err != nil {
			b.logWarn("pending order rejected", order, err)
		}
	}
}

// checkLiquidation closes every position at the candle average once equity is exhausted.
func (b *BacktestTrading) checkLiquidation() {
	if b.Equity() > 0 {
		return
	}

	for _, position := range b.state.GetAllPositions() {
		if !position.IsOpen() || position.Symbol != b.marketData.Symbol {
			continue
		}

		_ = b.CancelAllOrders()

		order := types.ExecuteOrder{
			ID:           uuid.New().String(),
			Symbol:       position.Symbol,
			Side:         types.PurchaseTypeSell,
			OrderType:    types.OrderTypeMarket,
			Reason:       types.Reason{Reason: types.OrderReasonLiquidation, Message: "equity exhausted"},
			StrategyName: position.StrategyName,
			Quantity:     b.getSellingPower(position.Symbol),
			PositionType: types.PositionTypeLong,
		}

		if _, err := b.executeOrder(order, b.marketData.MidPrice()); err != nil {
			b.logWarn("liquidation failed", order, err)
		}
	}
}

// executeOrder fills order at price, books it and arms its exit legs.
func (b *BacktestTrading) executeOrder(order types.ExecuteOrder, price float64) (types.Trade, error) {
	if price <= 0 {
		return types.Trade{}, errors.Newf(errors.ErrCodeOrderFailed, "execution price is invalid: %f", price)
	}

	commission := b.commission.Calculate(order.Quantity, price)

	if order.Side == types.PurchaseTypeBuy {
		totalCost := order.Quantity*price + commission
		if buyingPower := b.buyingPower(); totalCost > buyingPower {
			return types.Trade{}, errors.Newf(errors.ErrCodeInsufficientBuyingPower,
				"order cost (%.2f) exceeds buying power (%.2f)", totalCost, buyingPower)
		}

		b.balance -= totalCost
	} else {
		b.balance += order.Quantity*price - commission
	}

	executedOrder := types.Order{
		OrderID:      order.ID,
		Symbol:       order.Symbol,
		Side:         order.Side,
		OrderType:    order.OrderType,
		Quantity:     order.Quantity,
		Price:        price,
		Timestamp:    b.marketData.Time,
		IsCompleted:  true,
		Status:       types.OrderStatusFilled,
		Reason:       order.Reason,
		StrategyName: order.StrategyName,
		Fee:          commission,
		PositionType: order.PositionType,
	}

	results, err := b.state.Update([]types.Order{executedOrder})
	if err != nil {
		return types.Trade{}, err
	}

	trade := results[0].Trade

	if order.ParentID != "" {
		b.cancelSiblings(order)
	}

	if order.Side == types.PurchaseTypeBuy {
		b.armExitLegs(order)
	}

	if b.log != nil {
		b.log.Debug("order filled",
			zap.String("symbol", order.Symbol),
			zap.String("side", string(order.Side)),
			zap.String("type", string(order.OrderType)),
			zap.String("reason", order.Reason.Reason),
			zap.Float64("quantity", trade.ExecutedQty),
			zap.Float64("price", price),
			zap.Float64("fee", commission),
			zap.Float64("pnl", trade.PnL),
		)
	}

	if b.onTrade != nil {
		b.onTrade(trade)
	}

	return trade, nil
}

// armExitLegs turns the take profit and stop loss of a filled buy into pending sells.
func (b *BacktestTrading) armExitLegs(entry types.ExecuteOrder) {
	legs := []struct {
		leg       optional.Option[types.ExecuteOrderTakeProfitOrStopLoss]
		orderType types.OrderType
		reason    string
	}{
		// the stop loss is armed first so it wins when one candle reaches both legs
		{entry.StopLoss, types.OrderTypeStop, types.OrderReasonStopLoss},
		{entry.TakeProfit, types.OrderTypeLimit, types.OrderReasonTakeProfit},
	}

	for _, l := range legs {
		if l.leg.IsNone() {
			continue
		}

		leg := l.leg.Unwrap()
		b.pendingOrders = append(b.pendingOrders, types.ExecuteOrder{
			ID:           uuid.New().String(),
			Symbol:       leg.Symbol,
			Side:         leg.Side,
			OrderType:    l.orderType,
			Reason:       types.Reason{Reason: l.reason, Message: entry.Reason.Message},
			Price:        leg.Price,
			StrategyName: entry.StrategyName,
			Quantity:     entry.Quantity,
			PositionType: entry.PositionType,
			ParentID:     entry.ID,
		})
	}
}

// cancelSiblings cancels the other exit legs of the entry a filled leg belongs to.
func (b *BacktestTrading) cancelSiblings(filled types.ExecuteOrder) {
	b.closedEntries[filled.ParentID] = struct{}{}
	remaining := b.pendingOrders[:0]

	for _, order := range b.pendingOrders {
		if order.ParentID == filled.ParentID && order.ID != filled.ID {
			b.cancelledOrders[order.ID] = struct{}{}

			continue
		}

		remaining = append(remaining, order)
	}

	b.pendingOrders = remaining
}

func (b *BacktestTrading) logWarn(message string, order types.ExecuteOrder, err error) {
	if b.log == nil {
		return
	}

	b.log.Warn(message,
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("reason", order.Reason.Reason),
		zap.Error(err),
	)
}
