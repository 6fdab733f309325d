package provider

import (
	"context"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderBinance   ProviderType = "binance"
	ProviderPolygon   ProviderType = "polygon"
	ProviderSynthetic ProviderType = "synthetic"
)

// Provider is a source of market data for one exchange.
type Provider interface {
	// Name returns the exchange name the provider answers for.
	Name() string
	// GetTicker returns the latest price of the symbol.
	GetTicker(ctx context.Context, symbol string) (types.Ticker, error)
	// GetTickerStats returns the rolling 24 hour statistics of the symbol.
	GetTickerStats(ctx context.Context, symbol string) (types.TickerStats, error)
	// GetOHLCV returns candles ordered by time.
	// A zero end means now. A zero start means limit candles before end.
	// A limit of zero or less returns everything in the window.
	// example:
	// GetOHLCV(ctx, "BTC/USDT", types.Timeframe1h, time.Time{}, time.Time{}, 100)
	GetOHLCV(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) ([]types.MarketData, error)
	// GetOrderBook returns up to depth levels on each side.
	GetOrderBook(ctx context.Context, symbol string, depth int) (types.OrderBook, error)
	// Ping checks that the exchange is reachable.
	Ping(ctx context.Context) error
}

// Config carries everything the provider constructors may need.
type Config struct {
	APIKey       string
	SecretKey    string
	QuoteAliases map[string]string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config Config) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(NewBinanceSDKClient(config.APIKey, config.SecretKey), config.QuoteAliases), nil
	case ProviderPolygon:
		if config.APIKey == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires an API key")
		}

		return NewPolygonProvider(NewPolygonSDKClient(config.APIKey)), nil
	case ProviderSynthetic:
		return NewSyntheticProvider(string(ProviderSynthetic)), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// window is a resolved candle request.
type window struct {
	start time.Time
	end   time.Time
	limit int
	// latest is set when the start was derived from the limit, so the newest candles are kept.
	latest bool
}

// resolveWindow fills in a missing start or end of a candle request.
func resolveWindow(timeframe types.Timeframe, start, end time.Time, limit int, now time.Time) (window, error) {
	step := timeframe.Duration()
	if step <= 0 {
		return window{}, errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe: %s", timeframe)
	}

	if end.IsZero() {
		end = now
	}

	latest := false

	if start.IsZero() {
		if limit <= 0 {
			return window{}, errors.New(errors.ErrCodeInvalidDateRange, "either start or limit is required")
		}

		start = end.Add(-time.Duration(limit) * step)
		latest = true
	}

	if !start.Before(end) {
		return window{}, errors.New(errors.ErrCodeInvalidDateRange, "start must be before end")
	}

	return window{start: start, end: end, limit: limit, latest: latest}, nil
}

// trim applies the limit to candles ordered by time.
func (w window) trim(data []types.MarketData) []types.MarketData {
	if w.limit <= 0 || len(data) <= w.limit {
		return data
	}

	if w.latest {
		return data[len(data)-w.limit:]
	}

	return data[:w.limit]
}
