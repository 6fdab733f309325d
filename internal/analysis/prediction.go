package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rxtech-lab/trading-simulator/internal/indicator"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

const (
	minPredictionCloses = 10
	shortSMAPeriod      = 5
	longSMAPeriod       = 10
	rsiPeriod           = 14
	bollingerPeriod     = 20
	bollingerDeviations = 2.0

	maWeight                = 0.7
	extremeWeight           = 0.6
	neutralWeight           = 0.5
	directionCutoff         = 0.55
	projectionDecay         = 0.02
	minProjectionConfidence = 0.1
)

// Bollinger positions reported in TechnicalIndicators.
const (
	BandUpper  = "upper"
	BandMiddle = "middle"
	BandLower  = "lower"
)

// PredictDirection votes SMA, RSI and Bollinger signals over closes into a direction.
// Fewer than 10 closes give a neutral prediction with confidence 0.5.
func PredictDirection(symbol string, closes []float64, now time.Time) types.Prediction {
	prediction := types.Prediction{
		Symbol:     symbol,
		Direction:  types.DirectionNeutral,
		Confidence: neutralWeight,
		Timestamp:  now,
	}

	if len(closes) > 0 {
		prediction.CurrentPrice = closes[len(closes)-1]
	}

	if len(closes) < minPredictionCloses {
		prediction.Reasoning = fmt.Sprintf("insufficient data: need %d closes, got %d", minPredictionCloses, len(closes))
		return prediction
	}

	current := prediction.CurrentPrice
	smaShort := indicator.SMA(closes[len(closes)-shortSMAPeriod:])
	smaLong := indicator.SMA(closes[len(closes)-longSMAPeriod:])

	rsi, err := indicator.CalculateRSI(closes, rsiPeriod)
	if err != nil {
		rsi = 50
	}

	signals := make([]types.PredictionSignal, 0, 3)

	if smaShort > smaLong {
		signals = append(signals, signal(types.IndicatorTypeMA, types.DirectionUp, maWeight))
	} else {
		signals = append(signals, signal(types.IndicatorTypeMA, types.DirectionDown, maWeight))
	}

	switch {
	case rsi > 70:
		signals = append(signals, signal(types.IndicatorTypeRSI, types.DirectionDown, extremeWeight))
	case rsi < 30:
		signals = append(signals, signal(types.IndicatorTypeRSI, types.DirectionUp, extremeWeight))
	default:
		signals = append(signals, signal(types.IndicatorTypeRSI, types.DirectionNeutral, neutralWeight))
	}

	indicators := types.TechnicalIndicators{
		RSI:               rsi,
		SMAShort:          smaShort,
		SMALong:           smaLong,
		BollingerPosition: BandMiddle,
	}

	upper, middle, lower, err := indicator.CalculateBollingerBands(closes, bollingerPeriod, bollingerDeviations)
	switch {
	case err != nil:
		signals = append(signals, signal(types.IndicatorTypeBollingerBands, types.DirectionNeutral, neutralWeight))
	case current > upper:
		indicators.BollingerPosition = BandUpper
		signals = append(signals, signal(types.IndicatorTypeBollingerBands, types.DirectionDown, extremeWeight))
	case current < lower:
		indicators.BollingerPosition = BandLower
		signals = append(signals, signal(types.IndicatorTypeBollingerBands, types.DirectionUp, extremeWeight))
	default:
		signals = append(signals, signal(types.IndicatorTypeBollingerBands, types.DirectionNeutral, neutralWeight))
	}

	if err == nil {
		indicators.BollingerUpper = upper
		indicators.BollingerMiddle = middle
		indicators.BollingerLower = lower
	}

	prediction.Direction, prediction.Confidence = combineSignals(signals)
	prediction.Indicators = indicators
	prediction.Signals = signals
	prediction.Reasoning = fmt.Sprintf("technical analysis: short SMA %.0f, long SMA %.0f, RSI %.1f, bollinger %s",
		smaShort, smaLong, rsi, indicators.BollingerPosition)

	return prediction
}

func signal(name types.IndicatorType, direction types.PriceDirection, weight float64) types.PredictionSignal {
	return types.PredictionSignal{Indicator: name, Direction: direction, Weight: weight}
}

// combineSignals picks the side with the higher mean weight once it clears the cutoff.
func combineSignals(signals []types.PredictionSignal) (types.PriceDirection, float64) {
	var up, down []float64

	for _, s := range signals {
		switch s.Direction {
		case types.DirectionUp:
			up = append(up, s.Weight)
		case types.DirectionDown:
			down = append(down, s.Weight)
		}
	}

	upMean := meanOrZero(up)
	downMean := meanOrZero(down)

	switch {
	case upMean > downMean && upMean > directionCutoff:
		return types.DirectionUp, upMean
	case downMean > upMean && downMean > directionCutoff:
		return types.DirectionDown, downMean
	default:
		return types.DirectionNeutral, neutralWeight
	}
}

// Project extends current by the mean return of closes for the given number of steps.
// Confidence decays with each step.
func Project(closes []float64, hours int, confidence float64) []types.PricePoint {
	if hours <= 0 || len(closes) < 2 {
		return nil
	}

	meanReturn := meanOrZero(Returns(closes))
	current := closes[len(closes)-1]

	points := make([]types.PricePoint, 0, hours)
	for h := 1; h <= hours; h++ {
		points = append(points, types.PricePoint{
			Hour:       h,
			Price:      current * math.Pow(1+meanReturn, float64(h)),
			Confidence: math.Max(minProjectionConfidence, confidence*(1-projectionDecay*float64(h))),
		})
	}

	return points
}

// Returns gives the simple returns between consecutive closes, skipping non-positive bases.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}

	return returns
}

func meanOrZero(values []float64) float64 {
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}

	return mean
}
