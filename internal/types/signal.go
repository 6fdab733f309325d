package types

import "time"

type SignalType string

const (
	// SignalTypeBuyLong tells the strategy to open or add to a long position
	SignalTypeBuyLong SignalType = "buy_long"
	// SignalTypeSellLong tells the strategy to reduce or close a long position
	SignalTypeSellLong SignalType = "sell_long"
	// SignalTypeNoAction tells the strategy to take no action
	SignalTypeNoAction SignalType = "no_action"
)

type Signal struct {
	Time      time.Time          `json:"time"`
	Type      SignalType         `json:"type"`
	Name      string             `json:"name"`
	Reason    string             `json:"reason"`
	RawValue  map[string]float64 `json:"raw_value"`
	Symbol    string             `json:"symbol"`
	Indicator IndicatorType      `json:"indicator"`
}
