package indicator

import (
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/datasource"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newContext loads closes as consecutive one minute candles of symbol.
func newContext(symbol string, closes ...float64) (IndicatorContext, types.MarketData) {
	ds := datasource.NewInMemoryDataSource(0)

	var last types.MarketData
	for i, c := range closes {
		last = types.MarketData{
			Symbol: symbol,
			Time:   testStart.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
		}
		ds.Append(last)
	}

	return IndicatorContext{DataSource: ds, IndicatorRegistry: NewDefaultIndicatorRegistry()}, last
}

func rising(n int, start, step float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = start + float64(i)*step
	}

	return values
}
