package datasource

import (
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// DataSource gives indicators and strategies read access to the candle history of a run.
type DataSource interface {
	// GetPreviousNumberOfDataPoints returns up to count candles of symbol at or before end, oldest first.
	GetPreviousNumberOfDataPoints(end time.Time, symbol string, count int) ([]types.MarketData, error)
	// ReadLastData returns the newest candle of symbol.
	ReadLastData(symbol string) (types.MarketData, error)
	// Count returns the number of candles held for symbol.
	Count(symbol string) int
}
