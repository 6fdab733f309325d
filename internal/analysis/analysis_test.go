package analysis

import (
	"testing"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func linearCloses(count int, first, step float64) []float64 {
	closes := make([]float64, count)
	for i := range closes {
		closes[i] = first + step*float64(i)
	}

	return closes
}

func TestTextScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{name: "empty text", text: "   ", want: 0.5},
		{name: "no keywords", text: "the market opened today", want: 0.5},
		{name: "korean positive", text: "BTC 가격이 상승하고 있습니다", want: 0.75},
		{name: "korean negative", text: "가격 폭락", want: 0},
		{name: "english positive is clamped", text: "Bullish rally ahead", want: 1},
		{name: "english negative", text: "prices drop on weak demand today", want: 0.5 - 2.0/6.0},
		{name: "english needs whole words", text: "supply update", want: 0.5},
		{name: "punctuation is ignored", text: "bearish!", want: 0},
		{name: "mixed cancels out", text: "gain then loss", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TextScore(tt.text), 1e-9)
		})
	}
}

func TestAnalyzeSentimentDefaults(t *testing.T) {
	result := AnalyzeSentiment("BTC", nil, testNow)

	require.Len(t, result.ScoreBreakdown, 3)
	assert.Equal(t, "BTC", result.Symbol)
	assert.Equal(t, types.SentimentPositive, result.Sentiment)
	assert.InDelta(t, (0.75+0.5+1.0/3.0+0.5)/3, result.Confidence, 1e-9)
	assert.Equal(t, testNow, result.Timestamp)
	assert.Contains(t, result.Analysis, "positive")
}

func TestAnalyzeSentimentLabels(t *testing.T) {
	negative := AnalyzeSentiment("ETH", []string{"ETH 하락", "손실 위험"}, testNow)
	assert.Equal(t, types.SentimentNegative, negative.Sentiment)

	neutral := AnalyzeSentiment("ETH", []string{"nothing to report here"}, testNow)
	assert.Equal(t, types.SentimentNeutral, neutral.Sentiment)
	assert.InDelta(t, 0.5, neutral.Confidence, 1e-9)
}

func TestSentimentLabelFor(t *testing.T) {
	assert.Equal(t, types.SentimentPositive, SentimentLabelFor(0.61))
	assert.Equal(t, types.SentimentNeutral, SentimentLabelFor(0.6))
	assert.Equal(t, types.SentimentNeutral, SentimentLabelFor(0.4))
	assert.Equal(t, types.SentimentNegative, SentimentLabelFor(0.39))
}

func TestPredictDirectionInsufficientData(t *testing.T) {
	prediction := PredictDirection("BTC", linearCloses(9, 100, 1), testNow)

	assert.Equal(t, types.DirectionNeutral, prediction.Direction)
	assert.Equal(t, 0.5, prediction.Confidence)
	assert.Equal(t, 108.0, prediction.CurrentPrice)
	assert.Empty(t, prediction.Signals)
	assert.Contains(t, prediction.Reasoning, "insufficient data")
}

func TestPredictDirectionRisingSeries(t *testing.T) {
	prediction := PredictDirection("BTC", linearCloses(30, 100, 1), testNow)

	require.Len(t, prediction.Signals, 3)
	assert.Equal(t, types.DirectionUp, prediction.Signals[0].Direction)
	assert.Equal(t, 0.7, prediction.Signals[0].Weight)
	// no losses at all pushes RSI to 100
	assert.Equal(t, 100.0, prediction.Indicators.RSI)
	assert.Equal(t, types.DirectionDown, prediction.Signals[1].Direction)
	assert.Equal(t, BandMiddle, prediction.Indicators.BollingerPosition)
	assert.Equal(t, types.DirectionNeutral, prediction.Signals[2].Direction)

	assert.Equal(t, types.DirectionUp, prediction.Direction)
	assert.InDelta(t, 0.7, prediction.Confidence, 1e-9)
	assert.InDelta(t, 127.0, prediction.Indicators.SMAShort, 1e-9)
	assert.InDelta(t, 124.5, prediction.Indicators.SMALong, 1e-9)
	assert.InDelta(t, 119.5, prediction.Indicators.BollingerMiddle, 1e-9)
}

func TestPredictDirectionFallingSeries(t *testing.T) {
	prediction := PredictDirection("BTC", linearCloses(30, 200, -1), testNow)

	assert.Equal(t, 0.0, prediction.Indicators.RSI)
	assert.Equal(t, types.DirectionDown, prediction.Direction)
	assert.InDelta(t, 0.7, prediction.Confidence, 1e-9)
}

func TestPredictDirectionShortHistorySkipsBands(t *testing.T) {
	prediction := PredictDirection("BTC", linearCloses(12, 100, 1), testNow)

	require.Len(t, prediction.Signals, 3)
	assert.Equal(t, 50.0, prediction.Indicators.RSI)
	assert.Equal(t, types.DirectionNeutral, prediction.Signals[2].Direction)
	assert.Zero(t, prediction.Indicators.BollingerUpper)
	assert.Equal(t, types.DirectionUp, prediction.Direction)
}

func TestPredictDirectionAboveUpperBand(t *testing.T) {
	closes := linearCloses(29, 100, 0)
	closes = append(closes, 130)

	prediction := PredictDirection("BTC", closes, testNow)

	assert.Equal(t, BandUpper, prediction.Indicators.BollingerPosition)
	assert.Equal(t, types.DirectionDown, prediction.Signals[2].Direction)
	assert.Equal(t, 0.6, prediction.Signals[2].Weight)
}

func TestCombineSignals(t *testing.T) {
	tests := []struct {
		name       string
		signals    []types.PredictionSignal
		direction  types.PriceDirection
		confidence float64
	}{
		{
			name: "higher mean beats more votes",
			signals: []types.PredictionSignal{
				{Direction: types.DirectionUp, Weight: 0.7},
				{Direction: types.DirectionDown, Weight: 0.6},
				{Direction: types.DirectionDown, Weight: 0.6},
			},
			direction:  types.DirectionUp,
			confidence: 0.7,
		},
		{
			name: "down wins on mean weight",
			signals: []types.PredictionSignal{
				{Direction: types.DirectionDown, Weight: 0.7},
				{Direction: types.DirectionUp, Weight: 0.6},
				{Direction: types.DirectionNeutral, Weight: 0.5},
			},
			direction:  types.DirectionDown,
			confidence: 0.7,
		},
		{
			name: "tie is neutral",
			signals: []types.PredictionSignal{
				{Direction: types.DirectionDown, Weight: 0.6},
				{Direction: types.DirectionUp, Weight: 0.6},
			},
			direction:  types.DirectionNeutral,
			confidence: 0.5,
		},
		{
			name: "below cutoff is neutral",
			signals: []types.PredictionSignal{
				{Direction: types.DirectionUp, Weight: 0.5},
			},
			direction:  types.DirectionNeutral,
			confidence: 0.5,
		},
		{
			name:       "no votes",
			direction:  types.DirectionNeutral,
			confidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			direction, confidence := combineSignals(tt.signals)
			assert.Equal(t, tt.direction, direction)
			assert.InDelta(t, tt.confidence, confidence, 1e-9)
		})
	}
}

func TestProject(t *testing.T) {
	points := Project([]float64{100, 110, 121}, 3, 0.7)

	require.Len(t, points, 3)
	assert.Equal(t, 1, points[0].Hour)
	assert.InDelta(t, 133.1, points[0].Price, 1e-9)
	assert.InDelta(t, 146.41, points[1].Price, 1e-9)
	assert.InDelta(t, 0.7*0.98, points[0].Confidence, 1e-9)
	assert.Greater(t, points[0].Confidence, points[2].Confidence)

	long := Project([]float64{100, 101}, 60, 0.5)
	require.Len(t, long, 60)
	assert.Equal(t, 0.1, long[59].Confidence)

	assert.Nil(t, Project([]float64{100}, 5, 0.5))
	assert.Nil(t, Project([]float64{100, 101}, 0, 0.5))
}

func TestReturns(t *testing.T) {
	assert.Nil(t, Returns([]float64{1}))
	assert.InDeltaSlice(t, []float64{0.1, -0.5}, Returns([]float64{10, 11, 5.5}), 1e-9)
	assert.InDeltaSlice(t, []float64{1}, Returns([]float64{0, 1, 2}), 1e-9)
}

func TestRecommend(t *testing.T) {
	positive := types.SentimentResult{Sentiment: types.SentimentPositive}
	negative := types.SentimentResult{Sentiment: types.SentimentNegative}
	neutral := types.SentimentResult{Sentiment: types.SentimentNeutral}
	up := types.Prediction{Direction: types.DirectionUp}
	down := types.Prediction{Direction: types.DirectionDown}
	flat := types.Prediction{Direction: types.DirectionNeutral}

	tests := []struct {
		name       string
		sentiment  types.SentimentResult
		prediction types.Prediction
		action     types.TradeAction
		confidence float64
		score      float64
		reasoning  string
	}{
		{name: "both bullish", sentiment: positive, prediction: up, action: types.ActionBuy, confidence: 0.9, score: 0.7, reasoning: "positive market sentiment + upward price prediction"},
		{name: "prediction alone buys", sentiment: neutral, prediction: up, action: types.ActionBuy, confidence: 0.9, score: 0.4, reasoning: "upward price prediction"},
		{name: "sentiment alone waits", sentiment: positive, prediction: flat, action: types.ActionWait, confidence: 0.5, score: 0.3, reasoning: "positive market sentiment"},
		{name: "conflict waits", sentiment: positive, prediction: down, action: types.ActionWait, confidence: 0.5, score: -0.1, reasoning: "positive market sentiment + downward price prediction"},
		{name: "both bearish", sentiment: negative, prediction: down, action: types.ActionSell, confidence: 0.9, score: -0.7, reasoning: "negative market sentiment + downward price prediction"},
		{name: "nothing to go on", sentiment: neutral, prediction: flat, action: types.ActionWait, confidence: 0.5, score: 0, reasoning: "neutral conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Recommend("BTC", tt.sentiment, tt.prediction, testNow)
			assert.Equal(t, tt.action, rec.Action)
			assert.InDelta(t, tt.confidence, rec.Confidence, 1e-9)
			assert.InDelta(t, tt.score, rec.Score, 1e-9)
			assert.Equal(t, tt.reasoning, rec.Reasoning)
			assert.Equal(t, "BTC", rec.Symbol)
		})
	}
}

func TestRiskLevelFor(t *testing.T) {
	assert.Equal(t, types.RiskHigh, RiskLevelFor(5.1))
	assert.Equal(t, types.RiskMedium, RiskLevelFor(5))
	assert.Equal(t, types.RiskMedium, RiskLevelFor(2.5))
	assert.Equal(t, types.RiskLow, RiskLevelFor(2))
}
