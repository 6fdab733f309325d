package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

const (
	sentimentContribution = 0.3
	directionContribution = 0.4
	actionThreshold       = 0.3
	maxActionConfidence   = 0.9
)

// Recommend combines a sentiment and a prediction into a buy, sell or wait action.
func Recommend(symbol string, sentiment types.SentimentResult, prediction types.Prediction, now time.Time) types.StrategyRecommendation {
	score := 0.0

	var reasons []string

	switch sentiment.Sentiment {
	case types.SentimentPositive:
		score += sentimentContribution
		reasons = append(reasons, "positive market sentiment")
	case types.SentimentNegative:
		score -= sentimentContribution
		reasons = append(reasons, "negative market sentiment")
	}

	switch prediction.Direction {
	case types.DirectionUp:
		score += directionContribution
		reasons = append(reasons, "upward price prediction")
	case types.DirectionDown:
		score -= directionContribution
		reasons = append(reasons, "downward price prediction")
	}

	recommendation := types.StrategyRecommendation{
		Symbol:     symbol,
		Action:     types.ActionWait,
		Confidence: neutralWeight,
		Score:      score,
		Reasoning:  "neutral conditions",
		Timestamp:  now,
	}

	if len(reasons) > 0 {
		recommendation.Reasoning = strings.Join(reasons, " + ")
	}

	switch {
	case score > actionThreshold:
		recommendation.Action = types.ActionBuy
		recommendation.Confidence = math.Min(maxActionConfidence, 0.5+math.Abs(score))
	case score < -actionThreshold:
		recommendation.Action = types.ActionSell
		recommendation.Confidence = math.Min(maxActionConfidence, 0.5+math.Abs(score))
	}

	return recommendation
}

// RiskLevelFor classifies a volatility given as a percentage.
func RiskLevelFor(volatility float64) types.RiskLevel {
	switch {
	case volatility > 5:
		return types.RiskHigh
	case volatility > 2:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}
