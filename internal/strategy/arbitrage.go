package strategy

import (
	"fmt"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

type ArbitrageConfig struct {
	Threshold    float64 `json:"threshold" validate:"gt=0,lt=1" jsonschema:"title=Threshold,description=Relative distance below the moving average that opens a position,default=0.005"`
	PositionSize float64 `json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of buying power used per entry,default=0.2"`
	MAPeriod     int     `json:"ma_period" validate:"gte=2,lte=200" jsonschema:"title=MA Period,description=Number of candles in the reference moving average,default=5"`
}

// ArbitrageStrategy trades small dislocations of the price against its short moving average.
// It buys when the close sits more than Threshold below the average and sells once the close is back at or above it.
type ArbitrageStrategy struct {
	config ArbitrageConfig
}

func NewArbitrageStrategy() Strategy {
	return &ArbitrageStrategy{
		config: ArbitrageConfig{
			Threshold:    0.005,
			PositionSize: 0.2,
			MAPeriod:     5,
		},
	}
}

func (s *ArbitrageStrategy) Name() types.StrategyType {
	return types.StrategyArbitrage
}

func (s *ArbitrageStrategy) Description() string {
	return "Mean reversion on small price dislocations against a short moving average"
}

func (s *ArbitrageStrategy) DefaultVolatility() float64 {
	return 0.02
}

func (s *ArbitrageStrategy) Initialize(params string) error {
	config := s.config

	if err := parseConfig(params, &config); err != nil {
		return err
	}

	s.config = config

	return nil
}

func (s *ArbitrageStrategy) ConfigSchema() (string, error) {
	return ToJSONSchema(ArbitrageConfig{})
}

func (s *ArbitrageStrategy) ProcessData(ctx StrategyContext, data types.MarketData) error {
	if ctx.DataSource.Count(data.Symbol) < s.config.MAPeriod {
		return nil
	}

	ma, err := ctx.IndicatorRegistry.GetIndicator(types.IndicatorTypeMA)
	if err != nil {
		return err
	}

	average, err := ma.RawValue(data.Symbol, data.Time, indicatorContext(ctx), s.config.MAPeriod)
	if err != nil {
		return err
	}

	if average <= 0 {
		return nil
	}

	deviation := (data.Close - average) / average

	position, err := ctx.TradingSystem.GetPosition(data.Symbol)
	if err != nil {
		return err
	}

	if position.IsOpen() {
		if deviation >= 0 {
			return closePosition(ctx, s.Name(), position, fmt.Sprintf("price back at MA%d (deviation %.4f)", s.config.MAPeriod, deviation))
		}

		return nil
	}

	if deviation >= -s.config.Threshold {
		return nil
	}

	quantity, err := buyQuantity(ctx, data, s.config.PositionSize)
	if err != nil || quantity <= 0 {
		return err
	}

	message := fmt.Sprintf("price %.4f below MA%d", -deviation, s.config.MAPeriod)
	logDecision(ctx, s.Name(), data.Symbol, "entry", message)

	return ctx.TradingSystem.PlaceOrder(marketOrder(s.Name(), data.Symbol, types.PurchaseTypeBuy, quantity, message))
}
