package strategy

import (
	"fmt"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

type MemeTradingConfig struct {
	Threshold    float64 `json:"threshold" validate:"gt=0,lt=1" jsonschema:"title=Threshold,description=Candle change that triggers an entry or exit,default=0.03"`
	PositionSize float64 `json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of buying power used per entry,default=0.8"`
	RSIExit      float64 `json:"rsi_exit" validate:"gt=0,lte=100" jsonschema:"title=RSI Exit,description=RSI level above which the position is sold,default=80"`
	StopLoss     float64 `json:"stop_loss" validate:"gt=0,lt=1" jsonschema:"title=Stop Loss,description=Loss below the entry close that closes the position,default=0.05"`
}

// MemeTradingStrategy chases breakouts of highly volatile assets.
// It buys a strong green candle closing above the upper Bollinger band and sells on exhaustion.
type MemeTradingStrategy struct {
	config MemeTradingConfig
}

func NewMemeTradingStrategy() Strategy {
	return &MemeTradingStrategy{
		config: MemeTradingConfig{
			Threshold:    0.03,
			PositionSize: 0.8,
			RSIExit:      80,
			StopLoss:     0.05,
		},
	}
}

func (s *MemeTradingStrategy) Name() types.StrategyType {
	return types.StrategyMemeTrading
}

func (s *MemeTradingStrategy) Description() string {
	return "Breakout chasing on volatile coins with Bollinger Band entries and RSI exits"
}

func (s *MemeTradingStrategy) DefaultVolatility() float64 {
	return 0.15
}

func (s *MemeTradingStrategy) Initialize(params string) error {
	config := s.config

	if err := parseConfig(params, &config); err != nil {
		return err
	}

	s.config = config

	return nil
}

func (s *MemeTradingStrategy) ConfigSchema() (string, error) {
	return ToJSONSchema(MemeTradingConfig{})
}

func (s *MemeTradingStrategy) ProcessData(ctx StrategyContext, data types.MarketData) error {
	change := data.Change()

	position, err := ctx.TradingSystem.GetPosition(data.Symbol)
	if err != nil {
		return err
	}

	if position.IsOpen() {
		rsi, ok, err := rsiValue(ctx, data)
		if err != nil {
			return err
		}

		if ok && rsi > s.config.RSIExit {
			return closePosition(ctx, s.Name(), position, fmt.Sprintf("RSI %.2f above %.0f", rsi, s.config.RSIExit))
		}

		if change < -s.config.Threshold {
			return closePosition(ctx, s.Name(), position, fmt.Sprintf("candle change %.4f", change))
		}

		return nil
	}

	if change <= s.config.Threshold {
		return nil
	}

	bands, err := ctx.IndicatorRegistry.GetIndicator(types.IndicatorTypeBollingerBands)
	if err != nil {
		return err
	}

	signal, err := bands.GetSignal(data, indicatorContext(ctx))
	if err != nil {
		return err
	}

	// while the bands warm up every strong candle counts as a breakout
	upper, warm := signal.RawValue["upper"]
	if warm && data.Close <= upper {
		return nil
	}

	quantity, err := buyQuantity(ctx, data, s.config.PositionSize)
	if err != nil || quantity <= 0 {
		return err
	}

	message := fmt.Sprintf("breakout with candle change %.4f", change)
	logDecision(ctx, s.Name(), data.Symbol, "entry", message)

	order := marketOrder(s.Name(), data.Symbol, types.PurchaseTypeBuy, quantity, message)
	order.StopLoss = exitLeg(data.Symbol, data.Close*(1-s.config.StopLoss))

	return ctx.TradingSystem.PlaceOrder(order)
}
