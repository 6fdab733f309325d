package indicator

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// rsiHistoryFactor sets how many periods of history feed Wilder's smoothing.
const rsiHistoryFactor = 5

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period            int
	rsiLowerThreshold float64
	rsiUpperThreshold float64
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		period:            14,
		rsiLowerThreshold: 30,
		rsiUpperThreshold: 70,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: period (int), lower threshold (float64), upper threshold (float64).
func (r *RSI) Config(params ...any) error {
	if len(params) < 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects at least 1 parameter: period (int)")
	}

	period, ok := params[0].(int)
	if !ok {
		return errors.New(errors.ErrCodeInvalidType, "invalid type for period parameter, expected int")
	}

	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	lower, upper := r.rsiLowerThreshold, r.rsiUpperThreshold

	if len(params) >= 2 {
		if lower, ok = params[1].(float64); !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for lower threshold parameter, expected float64")
		}
	}

	if len(params) >= 3 {
		if upper, ok = params[2].(float64); !ok {
			return errors.New(errors.ErrCodeInvalidType, "invalid type for upper threshold parameter, expected float64")
		}
	}

	if lower < 0 || upper > 100 || lower >= upper {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "invalid RSI thresholds %.2f/%.2f", lower, upper)
	}

	r.period = period
	r.rsiLowerThreshold = lower
	r.rsiUpperThreshold = upper

	return nil
}

// GetSignal calculates the RSI signal.
func (r *RSI) GetSignal(marketData types.MarketData, ctx IndicatorContext) (types.Signal, error) {
	rsiValue, err := r.RawValue(marketData.Symbol, marketData.Time, ctx)
	if err != nil {
		return types.Signal{}, err
	}

	signalType := types.SignalTypeNoAction
	reason := "No signal"

	if rsiValue < r.rsiLowerThreshold {
		signalType = types.SignalTypeBuyLong
		reason = fmt.Sprintf("RSI oversold (value=%.2f)", rsiValue)
	} else if rsiValue > r.rsiUpperThreshold {
		signalType = types.SignalTypeSellLong
		reason = fmt.Sprintf("RSI overbought (value=%.2f)", rsiValue)
	}

	return types.Signal{
		Time:   marketData.Time,
		Type:   signalType,
		Name:   string(r.Name()),
		Reason: reason,
		RawValue: map[string]float64{
			"rsi": rsiValue,
		},
		Symbol:    marketData.Symbol,
		Indicator: r.Name(),
	}, nil
}

// RawValue implements the Indicator interface.
// It accepts parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext).
func (r *RSI) RawValue(params ...any) (float64, error) {
	if len(params) < 3 {
		return 0, errors.New(errors.ErrCodeMissingParameter, "RawValue requires 3 parameters: symbol (string), currentTime (time.Time), ctx (IndicatorContext)")
	}

	symbol, ok := params[0].(string)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "first parameter must be of type string (symbol)")
	}

	currentTime, ok := params[1].(time.Time)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "second parameter must be of type time.Time")
	}

	ctx, ok := params[2].(IndicatorContext)
	if !ok {
		return 0, errors.New(errors.ErrCodeInvalidType, "third parameter must be of type IndicatorContext")
	}

	historicalData, err := ctx.DataSource.GetPreviousNumberOfDataPoints(currentTime, symbol, r.period*rsiHistoryFactor+1)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to get historical data for symbol %s", symbol)
	}

	return CalculateRSI(closesOf(historicalData), r.period)
}
