package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// binancePageSize is the number of klines requested per call.
const binancePageSize = 500

// binanceDepthLimits are the order book sizes the depth endpoint accepts.
var binanceDepthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

// BinanceAPIClient is the subset of the Binance REST API the provider uses.
type BinanceAPIClient interface {
	Klines(ctx context.Context, symbol string, interval string, startTime int64, endTime int64, limit int) ([]*binance.Kline, error)
	Prices(ctx context.Context, symbol string) ([]*binance.SymbolPrice, error)
	PriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error)
	Depth(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error)
	Ping(ctx context.Context) error
}

// binanceSDKClient adapts *binance.Client to BinanceAPIClient.
type binanceSDKClient struct {
	client *binance.Client
}

// NewBinanceSDKClient creates an API client backed by the go-binance SDK.
// Public market data endpoints work with empty keys.
func NewBinanceSDKClient(apiKey, secretKey string) BinanceAPIClient {
	return &binanceSDKClient{client: binance.NewClient(apiKey, secretKey)}
}

func (c *binanceSDKClient) Klines(ctx context.Context, symbol string, interval string, startTime int64, endTime int64, limit int) ([]*binance.Kline, error) {
	return c.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startTime).
		EndTime(endTime).
		Limit(limit).
		Do(ctx)
}

func (c *binanceSDKClient) Prices(ctx context.Context, symbol string) ([]*binance.SymbolPrice, error) {
	return c.client.NewListPricesService().Symbol(symbol).Do(ctx)
}

func (c *binanceSDKClient) PriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error) {
	return c.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
}

func (c *binanceSDKClient) Depth(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error) {
	return c.client.NewDepthService().Symbol(symbol).Limit(limit).Do(ctx)
}

func (c *binanceSDKClient) Ping(ctx context.Context) error {
	return c.client.NewPingService().Do(ctx)
}

// BinanceProvider serves crypto market data from Binance.
type BinanceProvider struct {
	api          BinanceAPIClient
	quoteAliases map[string]string
	now          func() time.Time
}

// NewBinanceProvider creates a provider over the given API client.
// quoteAliases maps quote currencies Binance does not list, such as KRW, to one it does.
func NewBinanceProvider(api BinanceAPIClient, quoteAliases map[string]string) *BinanceProvider {
	return &BinanceProvider{
		api:          api,
		quoteAliases: quoteAliases,
		now:          time.Now,
	}
}

func (p *BinanceProvider) Name() string {
	return string(ProviderBinance)
}

func (p *BinanceProvider) pair(symbol string) (string, error) {
	parsed, err := ParseSymbol(symbol)
	if err != nil {
		return "", err
	}

	if !parsed.IsPair() {
		return "", errors.Newf(errors.ErrCodeInvalidSymbol, "binance requires a currency pair, got %s", symbol)
	}

	return parsed.BinancePair(p.quoteAliases), nil
}

func (p *BinanceProvider) GetTicker(ctx context.Context, symbol string) (types.Ticker, error) {
	pair, err := p.pair(symbol)
	if err != nil {
		return types.Ticker{}, err
	}

	prices, err := p.api.Prices(ctx, pair)
	if err != nil {
		return types.Ticker{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch %s price from binance", pair)
	}

	for _, price := range prices {
		if price == nil || price.Symbol != pair {
			continue
		}

		value, err := parseBinanceFloat("price", price.Price)
		if err != nil {
			return types.Ticker{}, err
		}

		return types.Ticker{
			Symbol:    symbol,
			Exchange:  p.Name(),
			Price:     value,
			Timestamp: p.now(),
			Source:    types.DataSourceReal,
		}, nil
	}

	return types.Ticker{}, errors.Newf(errors.ErrCodeNoDataFound, "binance returned no price for %s", pair)
}

func (p *BinanceProvider) GetTickerStats(ctx context.Context, symbol string) (types.TickerStats, error) {
	pair, err := p.pair(symbol)
	if err != nil {
		return types.TickerStats{}, err
	}

	stats, err := p.api.PriceChangeStats(ctx, pair)
	if err != nil {
		return types.TickerStats{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch %s stats from binance", pair)
	}

	if len(stats) == 0 || stats[0] == nil {
		return types.TickerStats{}, errors.Newf(errors.ErrCodeNoDataFound, "binance returned no stats for %s", pair)
	}

	s := stats[0]
	result := types.TickerStats{
		Symbol:    symbol,
		Exchange:  p.Name(),
		Timestamp: p.now(),
		Source:    types.DataSourceReal,
	}

	fields := []binanceField{
		{"lastPrice", s.LastPrice, &result.Price},
		{"priceChange", s.PriceChange, &result.Change},
		{"priceChangePercent", s.PriceChangePercent, &result.Percentage},
		{"highPrice", s.HighPrice, &result.High},
		{"lowPrice", s.LowPrice, &result.Low},
		{"volume", s.Volume, &result.Volume},
		{"quoteVolume", s.QuoteVolume, &result.QuoteVolume},
	}

	for _, f := range fields {
		v, err := parseBinanceFloat(f.name, f.value)
		if err != nil {
			return types.TickerStats{}, err
		}

		*f.dest = v
	}

	return result, nil
}

// GetOHLCV downloads klines page by page.
// Binance returns at most 500 klines per request, so the next page starts after the
// close time of the last kline received.
func (p *BinanceProvider) GetOHLCV(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) ([]types.MarketData, error) {
	pair, err := p.pair(symbol)
	if err != nil {
		return nil, err
	}

	w, err := resolveWindow(timeframe, start, end, limit, p.now())
	if err != nil {
		return nil, err
	}

	endTimeMillis := w.end.UnixMilli()
	currentStartTime := w.start.UnixMilli()

	var data []types.MarketData

	for currentStartTime <= endTimeMillis {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "kline download cancelled", err)
		}

		klines, err := p.api.Klines(ctx, pair, string(timeframe), currentStartTime, endTimeMillis, binancePageSize)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch klines for %s from binance", pair)
		}

		for _, kline := range klines {
			candle, err := klineToMarketData(symbol, kline)
			if err != nil {
				return nil, err
			}

			data = append(data, candle)
		}

		// no data or a short page means the last page
		if len(klines) < binancePageSize {
			break
		}

		if !w.latest && w.limit > 0 && len(data) >= w.limit {
			break
		}

		currentStartTime = klines[len(klines)-1].CloseTime + 1
	}

	return w.trim(data), nil
}

func (p *BinanceProvider) GetOrderBook(ctx context.Context, symbol string, depth int) (types.OrderBook, error) {
	pair, err := p.pair(symbol)
	if err != nil {
		return types.OrderBook{}, err
	}

	if depth <= 0 {
		depth = 20
	}

	response, err := p.api.Depth(ctx, pair, binanceDepthLimit(depth))
	if err != nil {
		return types.OrderBook{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch %s order book from binance", pair)
	}

	book := types.OrderBook{
		Symbol:    symbol,
		Exchange:  p.Name(),
		Bids:      make([]types.OrderBookLevel, 0, depth),
		Asks:      make([]types.OrderBookLevel, 0, depth),
		Timestamp: p.now(),
		Source:    types.DataSourceReal,
	}

	if response == nil {
		return book, nil
	}

	for i, bid := range response.Bids {
		if i >= depth {
			break
		}

		level, err := parseBinanceLevel(bid.Price, bid.Quantity)
		if err != nil {
			return types.OrderBook{}, err
		}

		book.Bids = append(book.Bids, level)
	}

	for i, ask := range response.Asks {
		if i >= depth {
			break
		}

		level, err := parseBinanceLevel(ask.Price, ask.Quantity)
		if err != nil {
			return types.OrderBook{}, err
		}

		book.Asks = append(book.Asks, level)
	}

	return book, nil
}

func (p *BinanceProvider) Ping(ctx context.Context) error {
	if err := p.api.Ping(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeExchangeUnavailable, "binance ping failed", err)
	}

	return nil
}

// binanceDepthLimit rounds depth up to the next size the endpoint accepts.
func binanceDepthLimit(depth int) int {
	for _, limit := range binanceDepthLimits {
		if depth <= limit {
			return limit
		}
	}

	return binanceDepthLimits[len(binanceDepthLimits)-1]
}

func klineToMarketData(symbol string, kline *binance.Kline) (types.MarketData, error) {
	if kline == nil {
		return types.MarketData{}, errors.New(errors.ErrCodeMarketDataParseFailed, "binance returned an empty kline")
	}

	open, err := parseBinanceFloat("open", kline.Open)
	if err != nil {
		return types.MarketData{}, err
	}

	high, err := parseBinanceFloat("high", kline.High)
	if err != nil {
		return types.MarketData{}, err
	}

	low, err := parseBinanceFloat("low", kline.Low)
	if err != nil {
		return types.MarketData{}, err
	}

	closePrice, err := parseBinanceFloat("close", kline.Close)
	if err != nil {
		return types.MarketData{}, err
	}

	volume, err := parseBinanceFloat("volume", kline.Volume)
	if err != nil {
		return types.MarketData{}, err
	}

	return types.MarketData{
		Symbol: symbol,
		Time:   time.UnixMilli(kline.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}

// binanceField is a string field of an API response and where its parsed value goes.
type binanceField struct {
	name  string
	value string
	dest  *float64
}

func parseBinanceLevel(price, quantity string) (types.OrderBookLevel, error) {
	p, err := parseBinanceFloat("price", price)
	if err != nil {
		return types.OrderBookLevel{}, err
	}

	q, err := parseBinanceFloat("quantity", quantity)
	if err != nil {
		return types.OrderBookLevel{}, err
	}

	return types.OrderBookLevel{Price: p, Quantity: q}, nil
}

func parseBinanceFloat(field, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse %s %q", field, value)
	}

	return v, nil
}
