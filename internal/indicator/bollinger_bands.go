package indicator

import (
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		period: 20,
		stdDev: 2.0,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	stdDev, ok := params[1].(float64)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidStdDevPeriod, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// RawValue returns the middle band at the given candle.
// It expects types.MarketData as the first parameter and IndicatorContext as the second.
func (bb *BollingerBands) RawValue(params ...any) (float64, error) {
	if len(params) < 2 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires at least 2 parameters: types.MarketData and IndicatorContext")
	}

	marketData, ok := params[0].(types.MarketData)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type types.MarketData")
	}

	ctx, ok := params[1].(IndicatorContext)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "second parameter must be of type IndicatorContext")
	}

	_, middle, _, err := bb.Bands(marketData, ctx)

	return middle, err
}

// Bands returns the upper, middle and lower band at the given candle.
func (bb *BollingerBands) Bands(marketData types.MarketData, ctx IndicatorContext) (upper, middle, lower float64, err error) {
	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(marketData.Time, marketData.Symbol, bb.period)
	if err != nil {
		return 0, 0, 0, errors.Wrap(errors.ErrCodeHistoricalDataFailed, "failed to get historical data", err)
	}

	return CalculateBollingerBands(closesOf(historicalData), bb.period, bb.stdDev)
}

// GetSignal generates trading signals based on Bollinger Bands.
// Without enough history the signal is no_action.
func (bb *BollingerBands) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	upper, middle, lower, err := bb.Bands(marketData, ctx)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return types.Signal{
				Time:      marketData.Time,
				Type:      types.SignalTypeNoAction,
				Name:      "Bollinger Bands",
				Reason:    "Insufficient data",
				Symbol:    marketData.Symbol,
				Indicator: bb.Name(),
			}, nil
		}

		return types.Signal{}, err
	}

	signal := types.Signal{
		Time:      marketData.Time,
		Type:      types.SignalTypeNoAction,
		Name:      "Bollinger Bands",
		Reason:    "Price within bands",
		RawValue:  map[string]float64{"upper": upper, "middle": middle, "lower": lower},
		Symbol:    marketData.Symbol,
		Indicator: bb.Name(),
	}

	switch {
	case marketData.Close < lower:
		signal.Type = types.SignalTypeBuyLong
		signal.Reason = "Price below lower band"
	case marketData.Close > upper:
		signal.Type = types.SignalTypeSellLong
		signal.Reason = "Price above upper band"
	}

	return signal, nil
}
