package indicator

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		period: 20,
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		periodFloat, ok := params[0].(float64)
		if !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or float")
		}

		period = int(periodFloat)
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	m.period = period

	return nil
}

// GetSignal reports a cross of the close over the moving average.
// A close moving from below to above the average is a buy, the opposite a sell.
func (m *MA) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(marketData.Time, marketData.Symbol, m.period+1)
	if err != nil {
		return types.Signal{}, errors.Wrap(errors.ErrCodeHistoricalDataFailed, "failed to calculate MA", err)
	}

	if len(historicalData) < m.period+1 {
		return types.Signal{}, errors.NewInsufficientDataErrorf(m.period+1, len(historicalData), marketData.Symbol,
			"insufficient data for MA cross on %s", marketData.Symbol)
	}

	closes := closesOf(historicalData)
	current := SMA(closes[1:])
	previous := SMA(closes[:len(closes)-1])
	currentClose := closes[len(closes)-1]
	previousClose := closes[len(closes)-2]

	signalType := types.SignalTypeNoAction
	reason := "No cross"

	if previousClose <= previous && currentClose > current {
		signalType = types.SignalTypeBuyLong
		reason = fmt.Sprintf("Close crossed above MA%d (%.2f)", m.period, current)
	} else if previousClose >= previous && currentClose < current {
		signalType = types.SignalTypeSellLong
		reason = fmt.Sprintf("Close crossed below MA%d (%.2f)", m.period, current)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   signalType,
		Name:   string(m.Name()),
		Reason: reason,
		RawValue: map[string]float64{
			"ma": current,
		},
		Symbol:    marketData.Symbol,
		Indicator: m.Name(),
	}, nil
}

// RawValue calculates the MA value for a given symbol, time, context, and period.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext), period (int, optional).
// With fewer candles than the period the average of what is available is returned.
func (m *MA) RawValue(params ...any) (float64, error) {
	if len(params) < 3 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires at least 3 parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext)")
	}

	symbol, ok := params[0].(string)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for symbol parameter, expected string")
	}

	currentTime, ok := params[1].(time.Time)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for currentTime parameter, expected time.Time")
	}

	ctx, ok := params[2].(IndicatorContext)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for ctx parameter, expected IndicatorContext")
	}

	period := m.period

	if len(params) >= 4 {
		switch p := params[3].(type) {
		case int:
			period = p
		case optional.Option[int]:
			if p.IsSome() {
				period = p.Unwrap()
			}
		default:
			return 0, errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int or optional.Option[int]")
		}
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, period)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeHistoricalDataFailed, "failed to get historical data", err)
	}

	if len(historicalData) == 0 {
		return 0, errors.Newf(errors.ErrCodeNoDataFound, "no historical data available for symbol %s", symbol)
	}

	return SMA(closesOf(historicalData)), nil
}
