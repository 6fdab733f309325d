package indicator

import (
	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

type IndicatorContext struct {
	DataSource        datasource.DataSource
	IndicatorRegistry IndicatorRegistry
}

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// GetSignal returns the signal of the indicator at the given candle
	GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error)
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// RawValue returns the raw value of the indicator
	RawValue(params ...any) (float64, error)
	Config(params ...any) error
}

// NewDefaultIndicatorRegistry returns a registry holding RSI, MA and Bollinger Bands with default settings.
func NewDefaultIndicatorRegistry() IndicatorRegistry {
	registry := NewIndicatorRegistry()
	_ = registry.RegisterIndicator(NewRSI())
	_ = registry.RegisterIndicator(NewMA())
	_ = registry.RegisterIndicator(NewBollingerBands())

	return registry
}
