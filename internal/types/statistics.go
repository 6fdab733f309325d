package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BacktestRequest asks for a strategy to be replayed over historical candles.
type BacktestRequest struct {
	Strategy       string    `json:"strategy" yaml:"strategy" validate:"required"`
	Symbol         string    `json:"symbol" yaml:"symbol" validate:"required"`
	Exchange       string    `json:"exchange" yaml:"exchange"`
	Timeframe      string    `json:"timeframe" yaml:"timeframe"`
	StartDate      time.Time `json:"start_date" yaml:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" yaml:"end_date" validate:"required"`
	InitialBalance float64   `json:"initial_balance" yaml:"initial_balance" validate:"gte=0"`
	// Params is a JSON object merged onto the strategy defaults.
	Params string `json:"params" yaml:"params"`
}

type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID        string       `json:"id" yaml:"id"`
	Strategy  StrategyType `json:"strategy" yaml:"strategy"`
	Symbol    string       `json:"symbol" yaml:"symbol"`
	Exchange  string       `json:"exchange" yaml:"exchange"`
	Timeframe Timeframe    `json:"timeframe" yaml:"timeframe"`
	StartDate time.Time    `json:"start_date" yaml:"start_date"`
	EndDate   time.Time    `json:"end_date" yaml:"end_date"`
	// DurationDays is the number of whole days between the start and end date.
	DurationDays int `json:"duration_days" yaml:"duration_days"`
	// Candles is the number of candles replayed.
	Candles        int     `json:"candles" yaml:"candles"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	// FinalBalance is the equity marked to the last close.
	FinalBalance float64 `json:"final_balance" yaml:"final_balance"`
	ProfitLoss   float64 `json:"profit_loss" yaml:"profit_loss"`
	// ReturnRate is the profit or loss in percent of the initial balance.
	ReturnRate float64 `json:"return_rate" yaml:"return_rate"`
	// TotalTrades counts every fill, buys included.
	TotalTrades   int `json:"total_trades" yaml:"total_trades"`
	WinningTrades int `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int `json:"losing_trades" yaml:"losing_trades"`
	// WinRate is winning sells over closed sells, in percent.
	WinRate float64 `json:"win_rate" yaml:"win_rate"`
	// MaxDrawdown is the deepest peak to trough fall of equity, in percent.
	MaxDrawdown float64 `json:"max_drawdown" yaml:"max_drawdown"`
	// SharpeRatio is annualized with a zero risk free rate.
	SharpeRatio float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	// Volatility is the annualized standard deviation of per candle returns, in percent.
	Volatility float64 `json:"volatility" yaml:"volatility"`
	// BuyAndHoldReturn is the return of holding from the first open to the last close, in percent.
	BuyAndHoldReturn float64    `json:"buy_and_hold_return" yaml:"buy_and_hold_return"`
	TotalFees        float64    `json:"total_fees" yaml:"total_fees"`
	DataSource       DataSource `json:"data_source" yaml:"data_source"`
	CreatedAt        time.Time  `json:"created_at" yaml:"created_at"`
	// Trades are the fills of the run. They are not persisted with the summary.
	Trades []Trade `json:"trades,omitempty" yaml:"-"`
}

func WriteBacktestResults(path string, results []BacktestResult) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest results to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest results to file: %w", err)
	}

	return nil
}
