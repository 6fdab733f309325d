package engine

import (
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine/engine_v1/commission_fee"
)

type BacktestEngineV1Config struct {
	// InitialCapital is used when the backtest input carries no balance.
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,minimum=0"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,enum=interactive_broker,enum=zero_commission,enum=binance,enum=upbit"`
	// StartTime and EndTime narrow the replayed candles. None keeps every candle.
	StartTime        optional.Option[time.Time] `yaml:"-" json:"-"`
	EndTime          optional.Option[time.Time] `yaml:"-" json:"-"`
	DecimalPrecision int                        `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,minimum=0,maximum=12"`
	// MarketDataCacheSize bounds the candle history kept for indicators.
	MarketDataCacheSize int `yaml:"market_data_cache_size" json:"market_data_cache_size" jsonschema:"title=Market Data Cache Size,minimum=0"`
}

func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:      0,
		Broker:              commission_fee.BrokerZero,
		StartTime:           optional.None[time.Time](),
		EndTime:             optional.None[time.Time](),
		DecimalPrecision:    8,
		MarketDataCacheSize: 1000,
	}
}

// TestConfig returns a config for tests, with a 10000 capital and the given window.
func TestConfig(startTime time.Time, endTime time.Time, broker commission_fee.Broker) BacktestEngineV1Config {
	config := EmptyConfig()
	config.InitialCapital = 10000
	config.Broker = broker
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}

// inWindow reports whether t lies inside the configured start and end times.
func (c BacktestEngineV1Config) inWindow(t time.Time) bool {
	if c.StartTime.IsSome() && t.Before(c.StartTime.Unwrap()) {
		return false
	}

	if c.EndTime.IsSome() && t.After(c.EndTime.Unwrap()) {
		return false
	}

	return true
}

func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(c)
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
