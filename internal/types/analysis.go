package types

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

type PriceDirection string

const (
	DirectionUp      PriceDirection = "up"
	DirectionDown    PriceDirection = "down"
	DirectionNeutral PriceDirection = "neutral"
)

type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
	ActionWait TradeAction = "wait"
)

type SentimentResult struct {
	Symbol     string         `json:"symbol"`
	Sentiment  SentimentLabel `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Analysis   string         `json:"analysis"`
	// ScoreBreakdown holds the score of each analyzed text.
	ScoreBreakdown []float64 `json:"score_breakdown"`
	Timestamp      time.Time `json:"timestamp"`
}

// PredictionSignal is one indicator vote towards a direction.
type PredictionSignal struct {
	Indicator IndicatorType  `json:"indicator"`
	Direction PriceDirection `json:"direction"`
	Weight    float64        `json:"weight"`
}

type TechnicalIndicators struct {
	RSI               float64 `json:"rsi"`
	SMAShort          float64 `json:"sma_short"`
	SMALong           float64 `json:"sma_long"`
	BollingerUpper    float64 `json:"bollinger_upper"`
	BollingerMiddle   float64 `json:"bollinger_middle"`
	BollingerLower    float64 `json:"bollinger_lower"`
	BollingerPosition string  `json:"bollinger_position"`
}

type PricePoint struct {
	Hour       int     `json:"hour"`
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
}

type Prediction struct {
	Symbol       string              `json:"symbol"`
	CurrentPrice float64             `json:"current_price"`
	Direction    PriceDirection      `json:"direction"`
	Confidence   float64             `json:"confidence"`
	Reasoning    string              `json:"reasoning"`
	Indicators   TechnicalIndicators `json:"technical_indicators"`
	Signals      []PredictionSignal  `json:"signals"`
	Projection   []PricePoint        `json:"projection,omitempty"`
	Source       DataSource          `json:"source"`
	Timestamp    time.Time           `json:"timestamp"`
}

type StrategyRecommendation struct {
	Symbol     string      `json:"symbol"`
	Action     TradeAction `json:"action"`
	Confidence float64     `json:"confidence"`
	Score      float64     `json:"score"`
	Reasoning  string      `json:"reasoning"`
	Timestamp  time.Time   `json:"timestamp"`
}

type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

type MarketSummary struct {
	CurrentPrice float64        `json:"current_price"`
	Volatility   float64        `json:"volatility"`
	Trend        PriceDirection `json:"trend"`
	VolumeAvg    float64        `json:"volume_avg"`
	Source       DataSource     `json:"source"`
}

type MarketAnalysis struct {
	Symbol         string                 `json:"symbol"`
	AnalysisTime   time.Time              `json:"analysis_time"`
	Market         MarketSummary          `json:"market_data"`
	Sentiment      SentimentResult        `json:"sentiment"`
	Prediction     Prediction             `json:"prediction"`
	Recommendation StrategyRecommendation `json:"strategy"`
	RiskLevel      RiskLevel              `json:"risk_level"`
}

type ModelStatus struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	LastUpdated time.Time `json:"last_updated"`
}
