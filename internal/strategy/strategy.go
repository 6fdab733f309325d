package strategy

import (
	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/indicator"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/trading"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// StrategyContext is what a strategy sees while processing a candle.
type StrategyContext struct {
	// DataSource provides the candle history, the current candle included
	DataSource datasource.DataSource
	// IndicatorRegistry is the registry of all indicators
	IndicatorRegistry indicator.IndicatorRegistry
	// TradingSystem is used to place orders
	TradingSystem trading.TradingSystem
	// Logger receives strategy decisions. May be nil.
	Logger *logger.Logger
}

type Strategy interface {
	Name() types.StrategyType
	Description() string
	// DefaultVolatility is the typical per period volatility the strategy is built for.
	DefaultVolatility() float64
	// Initialize merges the JSON params onto the strategy defaults and validates them.
	// An empty string keeps the defaults.
	Initialize(params string) error
	// ProcessData is called once per candle after the broker has been updated with it.
	ProcessData(ctx StrategyContext, data types.MarketData) error
	// ConfigSchema returns the JSON schema of the strategy parameters.
	ConfigSchema() (string, error)
}

// LeveragedStrategy is implemented by strategies that trade on margin.
type LeveragedStrategy interface {
	Leverage() float64
}

// NewStrategy creates a strategy with default parameters.
func NewStrategy(strategyType types.StrategyType) (Strategy, error) {
	switch strategyType {
	case types.StrategyArbitrage:
		return NewArbitrageStrategy(), nil
	case types.StrategyShortTrading:
		return NewShortTradingStrategy(), nil
	case types.StrategyLeverageTrading:
		return NewLeverageTradingStrategy(), nil
	case types.StrategyMemeTrading:
		return NewMemeTradingStrategy(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", strategyType)
	}
}

// NewStrategyFromName parses the name, creates the strategy and initializes it with params.
func NewStrategyFromName(name string, params string) (Strategy, error) {
	strategyType, err := types.ParseStrategyType(name)
	if err != nil {
		return nil, err
	}

	s, err := NewStrategy(strategyType)
	if err != nil {
		return nil, err
	}

	if err := s.Initialize(params); err != nil {
		return nil, err
	}

	return s, nil
}

// AllStrategies returns a fresh instance of every built-in strategy.
func AllStrategies() []Strategy {
	strategies := make([]Strategy, 0, len(types.AllStrategyTypes))
	for _, t := range types.AllStrategyTypes {
		s, _ := NewStrategy(t)
		strategies = append(strategies, s)
	}

	return strategies
}

// Describe returns the description of every built-in strategy.
func Describe() ([]types.StrategyInfo, error) {
	infos := make([]types.StrategyInfo, 0, len(types.AllStrategyTypes))
	for _, s := range AllStrategies() {
		schema, err := s.ConfigSchema()
		if err != nil {
			return nil, err
		}

		infos = append(infos, types.StrategyInfo{
			Name:              s.Name(),
			Description:       s.Description(),
			DefaultVolatility: s.DefaultVolatility(),
			ConfigSchema:      schema,
		})
	}

	return infos, nil
}
