// Package analysis produces rule-based market sentiment, price direction predictions and
// trading recommendations from market data served by the market data client.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
	"go.uber.org/zap"
)

const (
	// HistoryCandles is the number of hourly candles each analysis looks back on.
	HistoryCandles = 100
	// MaxHours bounds the projection horizon.
	MaxHours = 168
	// DefaultHours is the projection horizon used when none is given.
	DefaultHours = 24

	trendThreshold = 0.01
)

// Model keys reported by ModelStatus.
const (
	ModelSentiment      = "sentiment_analysis"
	ModelPrediction     = "price_prediction"
	ModelStrategy       = "strategy_generator"
	modelStatusActive   = "active"
	defaultAnalysisTTL  = 5 * time.Minute
	analysisCacheMaxLen = 256
)

type cachedAnalysis struct {
	analysis types.MarketAnalysis
	expires  time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used for timestamps and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service runs the analyzers against market data.
type Service struct {
	market  marketdata.MarketDataClient
	ttl     time.Duration
	log     *logger.Logger
	now     func() time.Time
	started time.Time

	mu    sync.Mutex
	cache map[string]cachedAnalysis
}

// NewService creates an analysis service. A zero cache TTL falls back to five minutes and a
// negative one disables caching.
func NewService(market marketdata.MarketDataClient, cfg config.AnalysisConfig, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = defaultAnalysisTTL
	}

	s := &Service{
		market: market,
		ttl:    ttl,
		log:    log.Named("analysis"),
		now:    time.Now,
		cache:  make(map[string]cachedAnalysis),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.started = s.now()

	return s
}

// Sentiment scores the given texts for symbol, or the default market sentences when texts is empty.
func (s *Service) Sentiment(symbol string, texts []string) (types.SentimentResult, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return types.SentimentResult{}, err
	}

	return AnalyzeSentiment(symbol, nonEmpty(texts), s.now()), nil
}

// Prediction predicts the price direction of symbol from recent hourly candles and projects
// the price for the given number of hours.
func (s *Service) Prediction(ctx context.Context, symbol, exchange string, hours int) (types.Prediction, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return types.Prediction{}, err
	}

	hours, err = normalizeHours(hours)
	if err != nil {
		return types.Prediction{}, err
	}

	series, err := s.history(ctx, symbol, exchange)
	if err != nil {
		return types.Prediction{}, err
	}

	return s.predict(symbol, series, hours), nil
}

// Recommend generates a trading action for symbol from the sentiment of texts and the price prediction.
func (s *Service) Recommend(ctx context.Context, symbol, exchange string, texts []string) (types.StrategyRecommendation, error) {
	sentiment, err := s.Sentiment(symbol, texts)
	if err != nil {
		return types.StrategyRecommendation{}, err
	}

	prediction, err := s.Prediction(ctx, sentiment.Symbol, exchange, DefaultHours)
	if err != nil {
		return types.StrategyRecommendation{}, err
	}

	return Recommend(sentiment.Symbol, sentiment, prediction, s.now()), nil
}

// Analyze runs every analyzer for symbol. Results are cached per symbol, exchange and horizon.
func (s *Service) Analyze(ctx context.Context, symbol, exchange string, hours int) (types.MarketAnalysis, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return types.MarketAnalysis{}, err
	}

	hours, err = normalizeHours(hours)
	if err != nil {
		return types.MarketAnalysis{}, err
	}

	key := fmt.Sprintf("%s|%s|%d", symbol, strings.ToLower(exchange), hours)
	if cached := s.lookup(key); cached.IsSome() {
		return cached.Unwrap(), nil
	}

	series, err := s.history(ctx, symbol, exchange)
	if err != nil {
		return types.MarketAnalysis{}, err
	}

	now := s.now()
	summary := Summarize(series)
	sentiment := AnalyzeSentiment(symbol, nil, now)
	prediction := s.predict(symbol, series, hours)

	analysis := types.MarketAnalysis{
		Symbol:         symbol,
		AnalysisTime:   now,
		Market:         summary,
		Sentiment:      sentiment,
		Prediction:     prediction,
		Recommendation: Recommend(symbol, sentiment, prediction, now),
		RiskLevel:      RiskLevelFor(summary.Volatility),
	}

	s.store(key, analysis)

	s.log.Debug("market analysis completed",
		zap.String("symbol", symbol),
		zap.String("direction", string(prediction.Direction)),
		zap.String("action", string(analysis.Recommendation.Action)),
		zap.String("risk", string(analysis.RiskLevel)),
	)

	return analysis, nil
}

// ModelStatus lists the analyzers.
func (s *Service) ModelStatus() []types.ModelStatus {
	return []types.ModelStatus{
		{
			Key:         ModelSentiment,
			Name:        "Market Sentiment Analyzer",
			Status:      modelStatusActive,
			Description: "keyword based sentiment scoring of market texts",
			LastUpdated: s.started,
		},
		{
			Key:         ModelPrediction,
			Name:        "Technical Analysis Predictor",
			Status:      modelStatusActive,
			Description: "SMA, RSI and Bollinger Bands signal voting",
			LastUpdated: s.started,
		},
		{
			Key:         ModelStrategy,
			Name:        "AI Trading Strategy Generator",
			Status:      modelStatusActive,
			Description: "combines sentiment and prediction into a trading action",
			LastUpdated: s.started,
		},
	}
}

func (s *Service) predict(symbol string, series types.OHLCVSeries, hours int) types.Prediction {
	closes := series.Closes()
	prediction := PredictDirection(symbol, closes, s.now())
	prediction.Source = series.Source
	prediction.Projection = Project(closes, hours, prediction.Confidence)

	return prediction
}

func (s *Service) history(ctx context.Context, symbol, exchange string) (types.OHLCVSeries, error) {
	end := s.now()
	start := end.Add(-HistoryCandles * types.Timeframe1h.Duration())

	series, err := s.market.GetOHLCV(ctx, exchange, symbol, types.Timeframe1h, start, end, HistoryCandles)
	if err != nil {
		return types.OHLCVSeries{}, err
	}

	if len(series.Data) == 0 {
		return types.OHLCVSeries{}, errors.Newf(errors.ErrCodeNoDataFound, "no market data for %s", symbol)
	}

	return series, nil
}

func (s *Service) lookup(key string) optional.Option[types.MarketAnalysis] {
	if s.ttl < 0 {
		return optional.None[types.MarketAnalysis]()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return optional.None[types.MarketAnalysis]()
	}

	if !s.now().Before(entry.expires) {
		delete(s.cache, key)
		return optional.None[types.MarketAnalysis]()
	}

	return optional.Some(entry.analysis)
}

func (s *Service) store(key string, analysis types.MarketAnalysis) {
	if s.ttl < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if len(s.cache) >= analysisCacheMaxLen {
		for k, entry := range s.cache {
			if !now.Before(entry.expires) {
				delete(s.cache, k)
			}
		}
	}

	if len(s.cache) >= analysisCacheMaxLen {
		return
	}

	s.cache[key] = cachedAnalysis{analysis: analysis, expires: now.Add(s.ttl)}
}

// Summarize derives the market summary of a series. Volatility is the sample standard deviation
// of candle returns in percent and the trend compares the last close with the first.
func Summarize(series types.OHLCVSeries) types.MarketSummary {
	summary := types.MarketSummary{
		Trend:  types.DirectionNeutral,
		Source: series.Source,
	}

	closes := series.Closes()
	if len(closes) == 0 {
		return summary
	}

	summary.CurrentPrice = closes[len(closes)-1]

	if deviation, err := stats.StandardDeviationSample(Returns(closes)); err == nil {
		summary.Volatility = deviation * 100
	}

	if first := closes[0]; first > 0 {
		change := (summary.CurrentPrice - first) / first
		switch {
		case change > trendThreshold:
			summary.Trend = types.DirectionUp
		case change < -trendThreshold:
			summary.Trend = types.DirectionDown
		}
	}

	volumes := make([]float64, len(series.Data))
	for i, d := range series.Data {
		volumes[i] = d.Volume
	}

	summary.VolumeAvg = meanOrZero(volumes)

	return summary
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", errors.New(errors.ErrCodeInvalidSymbol, "symbol is required")
	}

	return symbol, nil
}

func normalizeHours(hours int) (int, error) {
	if hours == 0 {
		return DefaultHours, nil
	}

	if hours < 0 || hours > MaxHours {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "hours must be between 1 and %d, got %d", MaxHours, hours)
	}

	return hours, nil
}

func nonEmpty(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}

	return out
}
