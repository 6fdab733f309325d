package indicator

import (
	"math"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// SMA returns the mean of values, or 0 for an empty slice.
func SMA(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// CalculateRSI computes the Relative Strength Index of closes with Wilder's smoothing.
// A flat series has an RSI of 50 and a series without losses an RSI of 100.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(closes) < period+1 {
		return 0, errors.NewInsufficientDataErrorf(period+1, len(closes), "",
			"insufficient data for RSI: need %d closes, got %d", period+1, len(closes))
	}

	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)

	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := SMA(gains[:period])
	avgLoss := SMA(losses[:period])

	// Subsequent averages using Wilder's smoothing method
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgGain == 0 && avgLoss == 0 {
		return 50, nil
	}

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs)), nil
}

// CalculateBollingerBands computes the bands over the last period closes using the population deviation.
func CalculateBollingerBands(closes []float64, period int, stdDev float64) (upper, middle, lower float64, err error) {
	if period <= 0 {
		return 0, 0, 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(closes) < period {
		return 0, 0, 0, errors.NewInsufficientDataErrorf(period, len(closes), "",
			"insufficient data for Bollinger Bands: need %d closes, got %d", period, len(closes))
	}

	window := closes[len(closes)-period:]
	middle = SMA(window)

	var squaredDiffSum float64
	for _, c := range window {
		diff := c - middle
		squaredDiffSum += diff * diff
	}

	deviation := math.Sqrt(squaredDiffSum / float64(period))

	return middle + stdDev*deviation, middle, middle - stdDev*deviation, nil
}

func closesOf(data []types.MarketData) []float64 {
	closes := make([]float64, len(data))
	for i, d := range data {
		closes[i] = d.Close
	}

	return closes
}
