package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

const (
	// syntheticAnnualVolatility drives the geometric Brownian motion of generated candles.
	syntheticAnnualVolatility = 0.8
	// syntheticTickerVolatility is the spread of ticker prices between minute buckets.
	syntheticTickerVolatility = 0.02
	// syntheticBookStep is the relative distance between order book levels.
	syntheticBookStep = 0.0005
	// maxSyntheticCandles bounds a single request.
	maxSyntheticCandles = 100000
	syntheticBaseVolume = 100.0
	defaultBasePrice    = 100.0
)

var syntheticBasePrices = map[string]float64{
	"BTC": 50000000,
	"ETH": 3000000,
	"XRP": 700,
	"ADA": 500,
}

// BasePrice returns the starting price synthetic data is generated around.
func BasePrice(symbol string) float64 {
	base := strings.ToUpper(strings.TrimSpace(symbol))
	if parsed, err := ParseSymbol(symbol); err == nil {
		base = parsed.Base
	}

	if price, ok := syntheticBasePrices[base]; ok {
		return price
	}

	return defaultBasePrice
}

// SyntheticProvider generates deterministic market data when no exchange is reachable.
// The same request always yields the same candles.
type SyntheticProvider struct {
	name string
	now  func() time.Time
}

// NewSyntheticProvider creates a generator that reports itself under the given exchange name.
func NewSyntheticProvider(name string) *SyntheticProvider {
	if name == "" {
		name = string(ProviderSynthetic)
	}

	return &SyntheticProvider{
		name: name,
		now:  time.Now,
	}
}

func (p *SyntheticProvider) Name() string {
	return p.name
}

// WithExchange returns a generator with the same clock that reports the given exchange name.
func (p *SyntheticProvider) WithExchange(exchange string) *SyntheticProvider {
	return &SyntheticProvider{name: exchange, now: p.now}
}

func (p *SyntheticProvider) GetTicker(_ context.Context, symbol string) (types.Ticker, error) {
	now := p.now()

	return types.Ticker{
		Symbol:    symbol,
		Exchange:  p.name,
		Price:     p.tickerPrice(symbol, now),
		Timestamp: now,
		Source:    types.DataSourceSimulated,
	}, nil
}

func (p *SyntheticProvider) GetTickerStats(ctx context.Context, symbol string) (types.TickerStats, error) {
	now := p.now()
	price := p.tickerPrice(symbol, now)

	candles, err := p.GetOHLCV(ctx, symbol, types.Timeframe1h, time.Time{}, now, 24)
	if err != nil {
		return types.TickerStats{}, err
	}

	stats := types.TickerStats{
		Symbol:    symbol,
		Exchange:  p.name,
		Price:     price,
		High:      price,
		Low:       price,
		Timestamp: now,
		Source:    types.DataSourceSimulated,
	}

	if len(candles) > 0 {
		open := candles[0].Open
		stats.Change = price - open
		stats.Percentage = stats.Change / open * 100
	}

	for _, candle := range candles {
		stats.High = math.Max(stats.High, candle.High)
		stats.Low = math.Min(stats.Low, candle.Low)
		stats.Volume += candle.Volume
		stats.QuoteVolume += candle.Volume * candle.Close
	}

	return stats, nil
}

// GetOHLCV generates candles with open times inside the window.
// Prices follow geometric Brownian motion from the symbol's base price, and every
// candle satisfies low <= open, close <= high with all prices positive.
func (p *SyntheticProvider) GetOHLCV(_ context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) ([]types.MarketData, error) {
	w, err := resolveWindow(timeframe, start, end, limit, p.now())
	if err != nil {
		return nil, err
	}

	step := timeframe.Duration()

	first := w.start.UTC().Truncate(step)
	if first.Before(w.start) {
		first = first.Add(step)
	}

	count := int(w.end.Sub(first)/step) + 1
	if count <= 0 {
		return []types.MarketData{}, nil
	}

	if !w.latest && w.limit > 0 && count > w.limit {
		count = w.limit
	}

	if count > maxSyntheticCandles {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "synthetic window of %d candles exceeds %d", count, maxSyntheticCandles)
	}

	rng := rand.New(rand.NewSource(seed(symbol, string(timeframe), first.UnixNano())))
	sigma := syntheticAnnualVolatility * math.Sqrt(1/timeframe.PeriodsPerYear())
	price := BasePrice(symbol)

	data := make([]types.MarketData, count)
	for i := range count {
		open := price
		closePrice := open * math.Exp(-sigma*sigma/2+sigma*rng.NormFloat64())
		high := math.Max(open, closePrice) * math.Exp(math.Abs(rng.NormFloat64())*sigma/2)
		low := math.Min(open, closePrice) * math.Exp(-math.Abs(rng.NormFloat64())*sigma/2)

		data[i] = types.MarketData{
			Symbol: symbol,
			Time:   first.Add(time.Duration(i) * step),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: syntheticBaseVolume * (0.5 + rng.Float64()),
		}

		price = closePrice
	}

	return w.trim(data), nil
}

func (p *SyntheticProvider) GetOrderBook(_ context.Context, symbol string, depth int) (types.OrderBook, error) {
	if depth <= 0 {
		depth = 20
	}

	now := p.now()
	price := p.tickerPrice(symbol, now)
	rng := rand.New(rand.NewSource(seed(symbol, "book", now.Truncate(time.Minute).Unix())))

	book := types.OrderBook{
		Symbol:    symbol,
		Exchange:  p.name,
		Bids:      make([]types.OrderBookLevel, depth),
		Asks:      make([]types.OrderBookLevel, depth),
		Timestamp: now,
		Source:    types.DataSourceSimulated,
	}

	for i := range depth {
		offset := syntheticBookStep * float64(i+1)
		book.Bids[i] = types.OrderBookLevel{Price: price * (1 - offset), Quantity: 0.1 + rng.Float64()*2}
		book.Asks[i] = types.OrderBookLevel{Price: price * (1 + offset), Quantity: 0.1 + rng.Float64()*2}
	}

	return book, nil
}

func (p *SyntheticProvider) Ping(_ context.Context) error {
	return nil
}

// tickerPrice is stable within a minute and moves between minutes.
func (p *SyntheticProvider) tickerPrice(symbol string, now time.Time) float64 {
	bucket := now.UTC().Truncate(time.Minute).Unix()
	rng := rand.New(rand.NewSource(seed(symbol, "ticker", bucket)))

	return BasePrice(symbol) * math.Exp(syntheticTickerVolatility*rng.NormFloat64())
}

func seed(symbol, kind string, at int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", strings.ToUpper(symbol), kind, at)

	return int64(h.Sum64())
}
