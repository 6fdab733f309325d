package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Trade struct {
	Order         Order     `json:"order" csv:"order"`
	ExecutedAt    time.Time `json:"executed_at" csv:"executed_at"`
	ExecutedQty   float64   `json:"executed_qty" csv:"executed_qty"`
	ExecutedPrice float64   `json:"executed_price" csv:"executed_price"`
	// Fee is the fee for this trade
	Fee float64 `json:"fee" csv:"fee"`
	// PnL is the realized profit and loss of a sell, net of the sell fee.
	// Buying 2 BTC at 100 with a total fee of 2 gives an average entry of 101.
	// Selling 1 BTC at 110 with a fee of 1 realizes (110-101)*1 - 1 = 8.
	// Buys always carry a PnL of 0.
	PnL float64 `json:"pnl" csv:"pnl"`
}

// Position represents the current long holdings of an asset.
type Position struct {
	Symbol   string  `json:"symbol" csv:"symbol"`
	Quantity float64 `json:"quantity" csv:"quantity"`
	// CostBasis is what the open quantity cost, entry fees included.
	CostBasis float64 `json:"cost_basis" csv:"cost_basis"`
	// RealizedPnL accumulates the PnL of every sell against this position.
	RealizedPnL   float64   `json:"realized_pnl" csv:"realized_pnl"`
	TotalFees     float64   `json:"total_fees" csv:"total_fees"`
	OpenTimestamp time.Time `json:"open_timestamp" csv:"open_timestamp"`
	StrategyName  string    `json:"strategy_name" csv:"strategy_name"`
}

// AverageEntryPrice calculates the average entry price including fees.
func (p Position) AverageEntryPrice() float64 {
	if p.Quantity <= 0 {
		return 0
	}

	avg, _ := decimal.NewFromFloat(p.CostBasis).Div(decimal.NewFromFloat(p.Quantity)).Float64()

	return avg
}

// MarketValue is the value of the open quantity at price.
func (p Position) MarketValue(price float64) float64 {
	value, _ := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return value
}

// UnrealizedPnL is the gain of the open quantity at price against its cost basis.
func (p Position) UnrealizedPnL(price float64) float64 {
	if p.Quantity <= 0 {
		return 0
	}

	pnl, _ := decimal.NewFromFloat(p.Quantity).
		Mul(decimal.NewFromFloat(price)).
		Sub(decimal.NewFromFloat(p.CostBasis)).
		Float64()

	return pnl
}

// IsOpen reports whether the position holds any quantity.
func (p Position) IsOpen() bool {
	return p.Quantity > 0
}
