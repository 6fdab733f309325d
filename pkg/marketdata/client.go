package marketdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/cache"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// MarketDataClient serves market data by exchange name. An empty exchange means the default one.
type MarketDataClient interface {
	GetTicker(ctx context.Context, exchange, symbol string) (types.Ticker, error)
	GetTickerStats(ctx context.Context, exchange, symbol string) (types.TickerStats, error)
	GetOHLCV(ctx context.Context, exchange, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) (types.OHLCVSeries, error)
	GetOrderBook(ctx context.Context, exchange, symbol string, depth int) (types.OrderBook, error)
	Ping(ctx context.Context, exchange string) error
	DefaultExchange() string
}

// RequestObserver is told about every market data request once it finishes.
type RequestObserver func(exchange, operation string, source types.DataSource, err error)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	DefaultExchange        string `validate:"required"`
	PriceCacheTTL          time.Duration
	AllowSyntheticFallback bool
	RequestTimeout         time.Duration `validate:"gte=0"`
}

type cachedTicker struct {
	ticker  types.Ticker
	expires time.Time
}

// Client routes market data requests to providers with ticker caching, a candle cache and
// a synthetic fallback.
type Client struct {
	config    ClientConfig
	providers map[string]provider.Provider
	synthetic *provider.SyntheticProvider
	candles   cache.CandleCache
	observer  RequestObserver
	logger    *logger.Logger
	now       func() time.Time

	mu      sync.Mutex
	tickers map[string]cachedTicker
}

// ClientOption configures optional parts of the client.
type ClientOption func(*Client)

// WithCandleCache serves historical candles from the given cache.
func WithCandleCache(candles cache.CandleCache) ClientOption {
	return func(c *Client) {
		c.candles = candles
	}
}

// WithRequestObserver registers a callback for every request, used for metrics.
func WithRequestObserver(observer RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithClock replaces the clock used for cache expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new market data client over the given providers.
// The synthetic provider is always available under its own name.
func NewClient(config ClientConfig, providers []provider.Provider, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid market data client configuration", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Client{
		config:    config,
		providers: make(map[string]provider.Provider, len(providers)+1),
		synthetic: provider.NewSyntheticProvider(string(provider.ProviderSynthetic)),
		logger:    log.Named("marketdata"),
		now:       time.Now,
		tickers:   make(map[string]cachedTicker),
	}

	for _, p := range providers {
		c.providers[strings.ToLower(p.Name())] = p
	}

	if _, ok := c.providers[string(provider.ProviderSynthetic)]; !ok {
		c.providers[string(provider.ProviderSynthetic)] = c.synthetic
	}

	for _, opt := range opts {
		opt(c)
	}

	c.config.DefaultExchange = strings.ToLower(config.DefaultExchange)
	if _, ok := c.providers[c.config.DefaultExchange]; !ok {
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "default exchange %s has no provider", config.DefaultExchange)
	}

	return c, nil
}

// DefaultExchange returns the exchange used when a request names none.
func (c *Client) DefaultExchange() string {
	return c.config.DefaultExchange
}

// Exchanges describes the registered providers.
func (c *Client) Exchanges() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(c.providers))

	for _, name := range GetSupportedProviders() {
		if _, ok := c.providers[name]; !ok {
			continue
		}

		info, _ := GetProviderInfo(name)
		info.Default = name == c.config.DefaultExchange
		infos = append(infos, info)
	}

	return infos
}

func (c *Client) resolve(exchange string) (string, provider.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(exchange))
	if name == "" {
		name = c.config.DefaultExchange
	}

	p, ok := c.providers[name]
	if !ok {
		return "", nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported exchange: %s", exchange)
	}

	return name, p, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.config.RequestTimeout)
}

// shouldFallback reports whether a failed exchange call may be replaced with synthetic data.
// Invalid requests are returned to the caller as they are.
func (c *Client) shouldFallback(name string, err error) bool {
	if !c.config.AllowSyntheticFallback || name == string(provider.ProviderSynthetic) {
		return false
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidSymbol,
		errors.ErrCodeInvalidDateRange,
		errors.ErrCodeInvalidTimespan,
		errors.ErrCodeInvalidParameter,
		errors.ErrCodeUnsupportedOperation:
		return false
	default:
		return true
	}
}

func (c *Client) observe(exchange, operation string, source types.DataSource, err error) {
	if c.observer != nil {
		c.observer(exchange, operation, source, err)
	}
}

func (c *Client) warnFallback(exchange, operation, symbol string, err error) {
	c.logger.Warn("exchange request failed, using synthetic data",
		zap.String("exchange", exchange),
		zap.String("operation", operation),
		zap.String("symbol", symbol),
		zap.Error(err))
}

// GetTicker implements MarketDataClient.
func (c *Client) GetTicker(ctx context.Context, exchange, symbol string) (types.Ticker, error) {
	name, p, err := c.resolve(exchange)
	if err != nil {
		return types.Ticker{}, err
	}

	key := name + "|" + strings.ToUpper(symbol)

	c.mu.Lock()
	cached, ok := c.tickers[key]
	c.mu.Unlock()

	if ok && c.now().Before(cached.expires) {
		c.observe(name, "ticker", cached.ticker.Source, nil)

		return cached.ticker, nil
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	ticker, err := p.GetTicker(reqCtx, symbol)
	if err != nil {
		if !c.shouldFallback(name, err) {
			c.observe(name, "ticker", types.DataSourceReal, err)

			return types.Ticker{}, err
		}

		c.warnFallback(name, "ticker", symbol, err)

		ticker, err = c.synthetic.WithExchange(name).GetTicker(ctx, symbol)
		c.observe(name, "ticker", types.DataSourceSimulated, err)

		return ticker, err
	}

	if c.config.PriceCacheTTL > 0 {
		c.mu.Lock()
		c.tickers[key] = cachedTicker{ticker: ticker, expires: c.now().Add(c.config.PriceCacheTTL)}
		c.mu.Unlock()
	}

	c.observe(name, "ticker", ticker.Source, nil)

	return ticker, nil
}

// GetTickerStats implements MarketDataClient.
func (c *Client) GetTickerStats(ctx context.Context, exchange, symbol string) (types.TickerStats, error) {
	name, p, err := c.resolve(exchange)
	if err != nil {
		return types.TickerStats{}, err
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	stats, err := p.GetTickerStats(reqCtx, symbol)
	if err != nil {
		if !c.shouldFallback(name, err) {
			c.observe(name, "stats", types.DataSourceReal, err)

			return types.TickerStats{}, err
		}

		c.warnFallback(name, "stats", symbol, err)

		stats, err = c.synthetic.WithExchange(name).GetTickerStats(ctx, symbol)
		c.observe(name, "stats", types.DataSourceSimulated, err)

		return stats, err
	}

	c.observe(name, "stats", stats.Source, nil)

	return stats, nil
}

// GetOHLCV implements MarketDataClient.
// Requests for a closed historical window are served from the candle cache when it covers them.
func (c *Client) GetOHLCV(ctx context.Context, exchange, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) (types.OHLCVSeries, error) {
	name, p, err := c.resolve(exchange)
	if err != nil {
		return types.OHLCVSeries{}, err
	}

	series := types.OHLCVSeries{
		Symbol:    symbol,
		Exchange:  name,
		Timeframe: timeframe,
		Source:    types.DataSourceReal,
	}

	key := cache.Key{Exchange: name, Symbol: cacheSymbol(symbol), Timeframe: timeframe}
	cacheable := c.candles != nil && name != string(provider.ProviderSynthetic) &&
		!start.IsZero() && !end.IsZero() && start.Before(end) && end.Before(c.now())

	if cacheable {
		data, hit, err := c.candles.Get(ctx, key, start, end)
		if err != nil {
			c.logger.Warn("candle cache read failed", zap.Error(err))
		} else if hit {
			series.Data = relabel(headLimit(data, limit), symbol)
			c.observe(name, "ohlcv", types.DataSourceReal, nil)

			return series, nil
		}
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	data, err := p.GetOHLCV(reqCtx, symbol, timeframe, start, end, limit)
	if err != nil {
		if !c.shouldFallback(name, err) {
			c.observe(name, "ohlcv", types.DataSourceReal, err)

			return types.OHLCVSeries{}, err
		}

		c.warnFallback(name, "ohlcv", symbol, err)

		data, err = c.synthetic.GetOHLCV(ctx, symbol, timeframe, start, end, limit)
		c.observe(name, "ohlcv", types.DataSourceSimulated, err)

		if err != nil {
			return types.OHLCVSeries{}, err
		}

		series.Source = types.DataSourceSimulated
		series.Data = data

		return series, nil
	}

	if p.Name() == string(provider.ProviderSynthetic) {
		series.Source = types.DataSourceSimulated
	}

	// a limited request may stop before end, so the cache only records full windows
	if cacheable && limit <= 0 {
		if err := c.candles.Put(ctx, key, start, end, data); err != nil {
			c.logger.Warn("candle cache write failed", zap.Error(err))
		}
	}

	series.Data = data
	c.observe(name, "ohlcv", series.Source, nil)

	return series, nil
}

// GetOrderBook implements MarketDataClient.
func (c *Client) GetOrderBook(ctx context.Context, exchange, symbol string, depth int) (types.OrderBook, error) {
	name, p, err := c.resolve(exchange)
	if err != nil {
		return types.OrderBook{}, err
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	book, err := p.GetOrderBook(reqCtx, symbol, depth)
	if err != nil {
		if !c.shouldFallback(name, err) {
			c.observe(name, "orderbook", types.DataSourceReal, err)

			return types.OrderBook{}, err
		}

		c.warnFallback(name, "orderbook", symbol, err)

		book, err = c.synthetic.WithExchange(name).GetOrderBook(ctx, symbol, depth)
		c.observe(name, "orderbook", types.DataSourceSimulated, err)

		return book, err
	}

	c.observe(name, "orderbook", book.Source, nil)

	return book, nil
}

// Ping implements MarketDataClient.
func (c *Client) Ping(ctx context.Context, exchange string) error {
	_, p, err := c.resolve(exchange)
	if err != nil {
		return err
	}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	return p.Ping(reqCtx)
}

// Download fetches real candles chunk by chunk and stores them in the candle cache.
// It returns the number of candles stored.
func (c *Client) Download(ctx context.Context, params DownloadParams, onProgress OnDownloadProgress) (int, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}

	if c.candles == nil {
		return 0, errors.New(errors.ErrCodeDataSourceUnavailable, "candle cache is not configured")
	}

	name, p, err := c.resolve(params.Exchange)
	if err != nil {
		return 0, err
	}

	if name == string(provider.ProviderSynthetic) {
		return 0, errors.New(errors.ErrCodeInvalidProvider, "synthetic candles are generated on demand and not downloaded")
	}

	key := cache.Key{Exchange: name, Symbol: cacheSymbol(params.Symbol), Timeframe: params.Timeframe}
	chunks := params.chunks()
	total := float64(params.EndDate.Sub(params.StartDate) / params.Timeframe.Duration())
	stored := 0

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return stored, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "download cancelled", err)
		}

		data, err := p.GetOHLCV(ctx, params.Symbol, params.Timeframe, chunk.Start, chunk.End, 0)
		c.observe(name, "download", types.DataSourceReal, err)

		if err != nil {
			return stored, err
		}

		if err := c.candles.Put(ctx, key, chunk.Start, chunk.End, data); err != nil {
			return stored, err
		}

		stored += len(data)

		if onProgress != nil {
			onProgress(float64(chunk.End.Sub(params.StartDate)/params.Timeframe.Duration()), total,
				"Downloading "+params.Symbol+" candles from "+name)
		}
	}

	c.logger.Info("candles downloaded",
		zap.String("exchange", name),
		zap.String("symbol", params.Symbol),
		zap.String("timeframe", string(params.Timeframe)),
		zap.Int("candles", stored))

	return stored, nil
}

// cacheSymbol gives BTC/KRW, BTC-KRW and btc_krw the same cache key.
func cacheSymbol(symbol string) string {
	parsed, err := provider.ParseSymbol(symbol)
	if err != nil {
		return strings.ToUpper(symbol)
	}

	return parsed.String()
}

func headLimit(data []types.MarketData, limit int) []types.MarketData {
	if limit > 0 && len(data) > limit {
		return data[:limit]
	}

	return data
}

// relabel reports cached candles under the symbol spelling of the request.
func relabel(data []types.MarketData, symbol string) []types.MarketData {
	for i := range data {
		data[i].Symbol = symbol
	}

	return data
}
