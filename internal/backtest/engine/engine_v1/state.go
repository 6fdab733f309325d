package engine

import (
	"slices"
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/shopspring/decimal"
)

// positionState is the running book of one symbol. Amounts are kept as decimals
// so that many small fills do not accumulate float error.
type positionState struct {
	quantity    decimal.Decimal
	costBasis   decimal.Decimal
	realizedPnL decimal.Decimal
	totalFees   decimal.Decimal
	openedAt    types.Order
}

// UpdateResult is the outcome of recording one filled order.
type UpdateResult struct {
	Order         types.Order
	Trade         types.Trade
	IsNewPosition bool
}

// BacktestState records filled orders and derives positions and trades from them.
type BacktestState struct {
	positions map[string]*positionState
	orders    []types.Order
	trades    []types.Trade
}

func NewBacktestState() *BacktestState {
	state := &BacktestState{}
	state.Initialize()

	return state
}

// Initialize clears all orders, trades and positions.
func (b *BacktestState) Initialize() {
	b.positions = make(map[string]*positionState)
	b.orders = []types.Order{}
	b.trades = []types.Trade{}
}

// Update records filled orders. Sells realize PnL against the average entry price,
// entry fees included, and the sell fee is deducted from that PnL.
func (b *BacktestState) Update(orders []types.Order) ([]UpdateResult, error) {
	results := make([]UpdateResult, 0, len(orders))

	for _, order := range orders {
		position, ok := b.positions[order.Symbol]
		if !ok {
			position = &positionState{}
			b.positions[order.Symbol] = position
		}

		quantity := decimal.NewFromFloat(order.Quantity)
		price := decimal.NewFromFloat(order.Price)
		fee := decimal.NewFromFloat(order.Fee)
		isNewPosition := false
		pnl := decimal.Zero

		switch order.Side {
		case types.PurchaseTypeBuy:
			isNewPosition = position.quantity.IsZero()
			if isNewPosition {
				position.openedAt = order
			}

			position.quantity = position.quantity.Add(quantity)
			position.costBasis = position.costBasis.Add(quantity.Mul(price)).Add(fee)
		case types.PurchaseTypeSell:
			if quantity.GreaterThan(position.quantity) {
				quantity = position.quantity
			}

			var removedCost decimal.Decimal
			if position.quantity.IsPositive() {
				removedCost = position.costBasis.Mul(quantity).Div(position.quantity)
			}

			pnl = quantity.Mul(price).Sub(fee).Sub(removedCost)
			position.quantity = position.quantity.Sub(quantity)
			position.costBasis = position.costBasis.Sub(removedCost)
			position.realizedPnL = position.realizedPnL.Add(pnl)

			if !position.quantity.IsPositive() {
				position.quantity = decimal.Zero
				position.costBasis = decimal.Zero
			}

			order.Quantity = quantity.InexactFloat64()
		}

		position.totalFees = position.totalFees.Add(fee)

		trade := types.Trade{
			Order:         order,
			ExecutedAt:    order.Timestamp,
			ExecutedQty:   order.Quantity,
			ExecutedPrice: order.Price,
			Fee:           order.Fee,
			PnL:           pnl.InexactFloat64(),
		}

		b.orders = append(b.orders, order)
		b.trades = append(b.trades, trade)

		results = append(results, UpdateResult{
			Order:         order,
			Trade:         trade,
			IsNewPosition: isNewPosition,
		})
	}

	return results, nil
}

// GetPosition returns the position of symbol. A symbol never traded has an empty position.
func (b *BacktestState) GetPosition(symbol string) types.Position {
	position, ok := b.positions[symbol]
	if !ok {
		return types.Position{Symbol: symbol}
	}

	result := types.Position{
		Symbol:      symbol,
		Quantity:    position.quantity.InexactFloat64(),
		CostBasis:   position.costBasis.InexactFloat64(),
		RealizedPnL: position.realizedPnL.InexactFloat64(),
		TotalFees:   position.totalFees.InexactFloat64(),
	}

	if position.quantity.IsPositive() {
		result.OpenTimestamp = position.openedAt.Timestamp
		result.StrategyName = position.openedAt.StrategyName
	}

	return result
}

// GetAllPositions returns every symbol traded so far, sorted by symbol.
func (b *BacktestState) GetAllPositions() []types.Position {
	symbols := make([]string, 0, len(b.positions))
	for symbol := range b.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	positions := make([]types.Position, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, b.GetPosition(symbol))
	}

	return positions
}

// GetAllTrades returns a copy of the trades in execution order.
func (b *BacktestState) GetAllTrades() []types.Trade {
	return slices.Clone(b.trades)
}

func (b *BacktestState) GetOrderById(orderID string) optional.Option[types.Order] {
	for _, order := range b.orders {
		if order.OrderID == orderID {
			return optional.Some(order)
		}
	}

	return optional.None[types.Order]()
}

// RealizedPnL sums the realized PnL of every symbol.
func (b *BacktestState) RealizedPnL() float64 {
	total := decimal.Zero
	for _, position := range b.positions {
		total = total.Add(position.realizedPnL)
	}

	return total.InexactFloat64()
}

// TotalFees sums the fees of every fill.
func (b *BacktestState) TotalFees() float64 {
	total := decimal.Zero
	for _, position := range b.positions {
		total = total.Add(position.totalFees)
	}

	return total.InexactFloat64()
}
