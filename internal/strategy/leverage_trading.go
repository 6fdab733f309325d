package strategy

import (
	"fmt"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

type LeverageTradingConfig struct {
	Threshold  float64 `json:"threshold" validate:"gt=0,lt=1" jsonschema:"title=Threshold,description=Candle change that triggers an entry or exit,default=0.02"`
	Leverage   float64 `json:"leverage" validate:"gte=1,lte=10" jsonschema:"title=Leverage,description=Buying power multiple of the account equity,default=1.5"`
	StopLoss   float64 `json:"stop_loss" validate:"gt=0,lt=1" jsonschema:"title=Stop Loss,description=Loss below the entry close that closes the position,default=0.03"`
	RSIMaximum float64 `json:"rsi_maximum" validate:"gt=0,lte=100" jsonschema:"title=RSI Maximum,description=Entries are skipped when RSI is at or above this level,default=70"`
}

// LeverageTradingStrategy follows strong moves with borrowed buying power.
// It enters on a strong green candle unless RSI shows the market overbought.
type LeverageTradingStrategy struct {
	config LeverageTradingConfig
}

func NewLeverageTradingStrategy() Strategy {
	return &LeverageTradingStrategy{
		config: LeverageTradingConfig{
			Threshold:  0.02,
			Leverage:   1.5,
			StopLoss:   0.03,
			RSIMaximum: 70,
		},
	}
}

func (s *LeverageTradingStrategy) Name() types.StrategyType {
	return types.StrategyLeverageTrading
}

func (s *LeverageTradingStrategy) Description() string {
	return "Momentum trading on margin with an RSI filter and a stop loss"
}

func (s *LeverageTradingStrategy) DefaultVolatility() float64 {
	return 0.10
}

func (s *LeverageTradingStrategy) Leverage() float64 {
	return s.config.Leverage
}

func (s *LeverageTradingStrategy) Initialize(params string) error {
	config := s.config

	if err := parseConfig(params, &config); err != nil {
		return err
	}

	s.config = config

	return nil
}

func (s *LeverageTradingStrategy) ConfigSchema() (string, error) {
	return ToJSONSchema(LeverageTradingConfig{})
}

func (s *LeverageTradingStrategy) ProcessData(ctx StrategyContext, data types.MarketData) error {
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

	// without enough history the RSI filter is skipped
	rsi, ok, err := rsiValue(ctx, data)
	if err != nil {
		return err
	}

	if ok && rsi >= s.config.RSIMaximum {
		return nil
	}

	quantity, err := buyQuantity(ctx, data, 1)
	if err != nil || quantity <= 0 {
		return err
	}

	message := fmt.Sprintf("candle change %.4f at %.1fx leverage", change, s.config.Leverage)
	logDecision(ctx, s.Name(), data.Symbol, "entry", message)

	order := marketOrder(s.Name(), data.Symbol, types.PurchaseTypeBuy, quantity, message)
	order.StopLoss = exitLeg(data.Symbol, data.Close*(1-s.config.StopLoss))

	return ctx.TradingSystem.PlaceOrder(order)
}
