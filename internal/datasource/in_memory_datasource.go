package datasource

import (
	"sort"
	"sync"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// InMemoryDataSource holds an append-only candle history per symbol.
// Once a symbol holds maxPoints candles the oldest ones are dropped.
type InMemoryDataSource struct {
	// data[symbol] is ordered by time
	data      map[string][]types.MarketData
	maxPoints int
	mu        sync.RWMutex
}

// NewInMemoryDataSource creates an empty data source. A maxPoints of 0 keeps everything.
func NewInMemoryDataSource(maxPoints int) *InMemoryDataSource {
	return &InMemoryDataSource{
		data:      make(map[string][]types.MarketData),
		maxPoints: maxPoints,
		mu:        sync.RWMutex{},
	}
}

// Append adds candles to the history of their symbols.
// A candle older than the newest one held is inserted in time order; one with the same time replaces it.
func (ds *InMemoryDataSource) Append(candles ...types.MarketData) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, candle := range candles {
		history := ds.data[candle.Symbol]
		n := len(history)

		switch {
		case n == 0 || candle.Time.After(history[n-1].Time):
			history = append(history, candle)
		default:
			idx := sort.Search(n, func(i int) bool {
				return !history[i].Time.Before(candle.Time)
			})
			if idx < n && history[idx].Time.Equal(candle.Time) {
				history[idx] = candle
			} else {
				history = append(history, types.MarketData{})
				copy(history[idx+1:], history[idx:])
				history[idx] = candle
			}
		}

		if ds.maxPoints > 0 && len(history) > ds.maxPoints {
			trimmed := make([]types.MarketData, ds.maxPoints)
			copy(trimmed, history[len(history)-ds.maxPoints:])
			history = trimmed
		}

		ds.data[candle.Symbol] = history
	}
}

func (ds *InMemoryDataSource) GetPreviousNumberOfDataPoints(end time.Time, symbol string, count int) ([]types.MarketData, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if count <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "count must be positive, got %d", count)
	}

	history, ok := ds.data[symbol]
	if !ok || len(history) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol: %s", symbol)
	}

	// first index strictly after end
	endIdx := sort.Search(len(history), func(i int) bool {
		return history[i].Time.After(end)
	})

	startIdx := endIdx - count
	if startIdx < 0 {
		startIdx = 0
	}

	// Return a copy to prevent modification of underlying data
	result := make([]types.MarketData, endIdx-startIdx)
	copy(result, history[startIdx:endIdx])

	return result, nil
}

func (ds *InMemoryDataSource) ReadLastData(symbol string) (types.MarketData, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	history := ds.data[symbol]
	if len(history) == 0 {
		return types.MarketData{}, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol: %s", symbol)
	}

	return history[len(history)-1], nil
}

func (ds *InMemoryDataSource) Count(symbol string) int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.data[symbol])
}
