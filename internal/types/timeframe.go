package types

import (
	"strings"
	"time"

	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// Timeframe is the width of a candle, written the way exchanges write it (1m, 4h, 1d).
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe3m  Timeframe = "3m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe2h  Timeframe = "2h"
	Timeframe4h  Timeframe = "4h"
	Timeframe6h  Timeframe = "6h"
	Timeframe8h  Timeframe = "8h"
	Timeframe12h Timeframe = "12h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
)

var timeframeDurations = map[Timeframe]time.Duration{
	Timeframe1m:  time.Minute,
	Timeframe3m:  3 * time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe2h:  2 * time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe6h:  6 * time.Hour,
	Timeframe8h:  8 * time.Hour,
	Timeframe12h: 12 * time.Hour,
	Timeframe1d:  24 * time.Hour,
	Timeframe1w:  7 * 24 * time.Hour,
}

// ParseTimeframe parses a timeframe such as "1h". An empty string defaults to fallback.
func ParseTimeframe(value string, fallback Timeframe) (Timeframe, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}

	tf := Timeframe(value)
	if _, ok := timeframeDurations[tf]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe: %s", value)
	}

	return tf, nil
}

// Duration returns the width of one candle.
func (t Timeframe) Duration() time.Duration {
	return timeframeDurations[t]
}

// PeriodsPerYear returns how many candles of this width fit in a 365 day year.
// Crypto markets trade around the clock so no trading calendar is applied.
func (t Timeframe) PeriodsPerYear() float64 {
	d := t.Duration()
	if d <= 0 {
		return 0
	}

	return float64(365*24*time.Hour) / float64(d)
}
