package types

import "time"

// MarketData is a single OHLCV candle for a symbol.
type MarketData struct {
	Id     string    `yaml:"id" json:"id" csv:"id"`
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// Change returns the relative move of the candle from open to close.
// A candle with a non positive open has no change.
func (m MarketData) Change() float64 {
	if m.Open <= 0 {
		return 0
	}

	return (m.Close - m.Open) / m.Open
}

// MidPrice is the price market orders are filled at.
func (m MarketData) MidPrice() float64 {
	return (m.High + m.Low) / 2
}

// DataSource tells whether market data came from an exchange or from the synthetic generator.
type DataSource string

const (
	DataSourceReal      DataSource = "real"
	DataSourceSimulated DataSource = "simulated"
)

// Ticker is the latest traded price of a symbol.
type Ticker struct {
	Symbol    string     `json:"symbol"`
	Exchange  string     `json:"exchange"`
	Price     float64    `json:"price"`
	Timestamp time.Time  `json:"timestamp"`
	Source    DataSource `json:"source"`
}

// TickerStats is the rolling 24 hour summary of a symbol.
type TickerStats struct {
	Symbol      string     `json:"symbol"`
	Exchange    string     `json:"exchange"`
	Price       float64    `json:"price"`
	Change      float64    `json:"change"`
	Percentage  float64    `json:"percentage"`
	High        float64    `json:"high"`
	Low         float64    `json:"low"`
	Volume      float64    `json:"volume"`
	QuoteVolume float64    `json:"quote_volume"`
	Timestamp   time.Time  `json:"timestamp"`
	Source      DataSource `json:"source"`
}

// OrderBookLevel is one price level of an order book.
type OrderBookLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBook holds bids sorted from best to worst and asks sorted from best to worst.
type OrderBook struct {
	Symbol    string           `json:"symbol"`
	Exchange  string           `json:"exchange"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
	Source    DataSource       `json:"source"`
}

// OHLCVSeries is a run of candles for one symbol and timeframe.
type OHLCVSeries struct {
	Symbol    string       `json:"symbol"`
	Exchange  string       `json:"exchange"`
	Timeframe Timeframe    `json:"timeframe"`
	Source    DataSource   `json:"source"`
	Data      []MarketData `json:"data"`
}

// Closes returns the close prices of the series in order.
func (s OHLCVSeries) Closes() []float64 {
	closes := make([]float64, len(s.Data))
	for i, d := range s.Data {
		closes[i] = d.Close
	}

	return closes
}
