package engine

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// equityReturns returns the relative change between consecutive equity values.
// Steps starting from a non positive equity carry no return and are skipped.
func equityReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] <= 0 {
			continue
		}

		returns = append(returns, equity[i]/equity[i-1]-1)
	}

	return returns
}

// maxDrawdown is the deepest fall from a running peak of equity, in percent.
func maxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	deepest := 0.0

	for _, value := range equity {
		if value > peak {
			peak = value
		}

		if peak <= 0 {
			continue
		}

		if drawdown := (peak - value) / peak * 100; drawdown > deepest {
			deepest = drawdown
		}
	}

	return deepest
}

// annualizedVolatility is the sample standard deviation of returns scaled to a year, in percent.
func annualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}

	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0
	}

	return stdev * math.Sqrt(periodsPerYear) * 100
}

// sharpeRatio is the annualized mean over standard deviation of returns with no risk free rate.
// A flat return series has a ratio of 0.
func sharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return 0
	}

	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}

	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil || stdev == 0 {
		return 0
	}

	return mean / stdev * math.Sqrt(periodsPerYear)
}

// buyAndHoldReturn is the return of buying at the first open and selling at the last close, in percent.
func buyAndHoldReturn(data []types.MarketData) float64 {
	if len(data) == 0 || data[0].Open <= 0 {
		return 0
	}

	return (data[len(data)-1].Close - data[0].Open) / data[0].Open * 100
}

// tradeOutcomes counts the sells that realized a gain and a loss.
func tradeOutcomes(trades []types.Trade) (winning int, losing int) {
	for _, trade := range trades {
		if trade.Order.Side != types.PurchaseTypeSell {
			continue
		}

		switch {
		case trade.PnL > 0:
			winning++
		case trade.PnL < 0:
			losing++
		}
	}

	return winning, losing
}
