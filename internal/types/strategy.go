package types

import (
	"strings"

	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// StrategyType names one of the built-in trading strategies.
type StrategyType string

const (
	StrategyArbitrage       StrategyType = "arbitrage"
	StrategyShortTrading    StrategyType = "short_trading"
	StrategyLeverageTrading StrategyType = "leverage_trading"
	StrategyMemeTrading     StrategyType = "meme_trading"
)

// AllStrategyTypes lists the built-in strategies in display order.
var AllStrategyTypes = []StrategyType{
	StrategyArbitrage,
	StrategyShortTrading,
	StrategyLeverageTrading,
	StrategyMemeTrading,
}

// ParseStrategyType accepts the strategy name case-insensitively, with dashes or underscores.
func ParseStrategyType(value string) (StrategyType, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")

	for _, t := range AllStrategyTypes {
		if string(t) == normalized {
			return t, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy: %s", value)
}

// StrategyInfo describes a strategy for clients choosing one.
type StrategyInfo struct {
	Name              StrategyType `json:"name" yaml:"name"`
	Description       string       `json:"description" yaml:"description"`
	DefaultVolatility float64      `json:"default_volatility" yaml:"default_volatility"`
	// ConfigSchema is the JSON schema of the strategy parameters.
	ConfigSchema string `json:"config_schema" yaml:"config_schema"`
}
