package strategy

import (
	"fmt"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

type ShortTradingConfig struct {
	Threshold    float64 `json:"threshold" validate:"gt=0,lt=1" jsonschema:"title=Threshold,description=Candle change that triggers an entry or exit,default=0.01"`
	PositionSize float64 `json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of buying power used per entry,default=0.3"`
	TakeProfit   float64 `json:"take_profit" validate:"gt=0,lt=1" jsonschema:"title=Take Profit,description=Gain above the entry close that closes the position,default=0.02"`
	StopLoss     float64 `json:"stop_loss" validate:"gt=0,lt=1" jsonschema:"title=Stop Loss,description=Loss below the entry close that closes the position,default=0.01"`
}

// ShortTradingStrategy is a short-term momentum strategy.
// A strong green candle opens a position with take profit and stop loss legs; a strong red candle closes it.
type ShortTradingStrategy struct {
	config ShortTradingConfig
}

func NewShortTradingStrategy() Strategy {
	return &ShortTradingStrategy{
		config: ShortTradingConfig{
			Threshold:    0.01,
			PositionSize: 0.3,
			TakeProfit:   0.02,
			StopLoss:     0.01,
		},
	}
}

func (s *ShortTradingStrategy) Name() types.StrategyType {
	return types.StrategyShortTrading
}

func (s *ShortTradingStrategy) Description() string {
	return "Short-term momentum trading with take profit and stop loss exits"
}

func (s *ShortTradingStrategy) DefaultVolatility() float64 {
	return 0.05
}

func (s *ShortTradingStrategy) Initialize(params string) error {
	config := s.config

	if err := parseConfig(params, &config); err != nil {
		return err
	}

	s.config = config

	return nil
}

func (s *ShortTradingStrategy) ConfigSchema() (string, error) {
	return ToJSONSchema(ShortTradingConfig{})
}

func (s *ShortTradingStrategy) ProcessData(ctx StrategyContext, data types.MarketData) error {
	change := data.Change()

	position, err := ctx.TradingSystem.GetPosition(data.Symbol)
	if err != nil {
		return err
	}

	if position.IsOpen() {
		if change < -s.config.Threshold {
			return closePosition(ctx, s.Name(), position, fmt.Sprintf("candle change %.4f", change))
		}

		return nil
	}

	if change <= s.config.Threshold {
		return nil
	}

	quantity, err := buyQuantity(ctx, data, s.config.PositionSize)
	if err != nil || quantity <= 0 {
		return err
	}

	message := fmt.Sprintf("candle change %.4f", change)
	logDecision(ctx, s.Name(), data.Symbol, "entry", message)

	order := marketOrder(s.Name(), data.Symbol, types.PurchaseTypeBuy, quantity, message)
	order.TakeProfit = exitLeg(data.Symbol, data.Close*(1+s.config.TakeProfit))
	order.StopLoss = exitLeg(data.Symbol, data.Close*(1-s.config.StopLoss))

	return ctx.TradingSystem.PlaceOrder(order)
}
