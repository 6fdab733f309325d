package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// DataGenerator generates candle series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	// Symbol is the trading pair, e.g. "BTC/KRW"
	Symbol    string
	Exchange  string
	Timeframe types.Timeframe
	StartTime time.Time
	Count     int
	// InitialPrice is the open of the first candle
	InitialPrice float64
	// Volatility is the standard deviation of the per candle return
	Volatility float64
	// Trend is the total drift over the whole series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per candle
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns hourly BTC/KRW candles around 50 million won.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "BTC/KRW",
		Exchange:       "binance",
		Timeframe:      types.Timeframe1h,
		StartTime:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          200,
		InitialPrice:   50000000,
		Volatility:     0.01,
		Trend:          0,
		VolumeBase:     100,
		VolumeVariance: 0.3,
	}
}

// Generate creates a series following a geometric Brownian motion.
func (g *DataGenerator) Generate(config GeneratorConfig) types.OHLCVSeries {
	data := make([]types.MarketData, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime
	step := config.Timeframe.Duration()

	drift := 0.0
	if config.Count > 0 {
		drift = config.Trend / float64(config.Count)
	}

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		high := math.Max(open, close) + math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		low := math.Min(open, close) - math.Abs(g.rng.Float64()*config.Volatility*open*0.5)
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Symbol: config.Symbol,
			Time:   currentTime,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(volume, 2),
		}

		currentPrice = close
		currentTime = currentTime.Add(step)
	}

	return types.OHLCVSeries{
		Symbol:    config.Symbol,
		Exchange:  config.Exchange,
		Timeframe: config.Timeframe,
		Source:    types.DataSourceSimulated,
		Data:      data,
	}
}

// Linear creates a noiseless series whose close moves by step every candle.
// Each candle opens at the previous close and its range is 0.5% around the body.
func Linear(symbol string, tf types.Timeframe, start time.Time, count int, first, step float64) types.OHLCVSeries {
	data := make([]types.MarketData, count)
	open := first

	for i := 0; i < count; i++ {
		close := open + step
		data[i] = types.MarketData{
			Symbol: symbol,
			Time:   start.Add(time.Duration(i) * tf.Duration()),
			Open:   open,
			High:   math.Max(open, close) * 1.005,
			Low:    math.Min(open, close) * 0.995,
			Close:  close,
			Volume: 100,
		}
		open = close
	}

	return types.OHLCVSeries{
		Symbol:    symbol,
		Timeframe: tf,
		Source:    types.DataSourceReal,
		Data:      data,
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
