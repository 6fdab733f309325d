package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// polygonPageLimit is the largest page ListAggs accepts.
const polygonPageLimit = 50000

// PolygonAPIClient is the subset of the Polygon REST API the provider uses.
type PolygonAPIClient interface {
	// Aggregates drains the ListAggs iterator.
	Aggregates(ctx context.Context, params *models.ListAggsParams) ([]models.Agg, error)
	PreviousClose(ctx context.Context, ticker string) ([]models.Agg, error)
	MarketStatus(ctx context.Context) error
}

// polygonSDKClient adapts *polygon.Client to PolygonAPIClient.
type polygonSDKClient struct {
	client *polygon.Client
}

// NewPolygonSDKClient creates an API client backed by the polygon client-go SDK.
func NewPolygonSDKClient(apiKey string) PolygonAPIClient {
	return &polygonSDKClient{client: polygon.New(apiKey)}
}

func (c *polygonSDKClient) Aggregates(ctx context.Context, params *models.ListAggsParams) ([]models.Agg, error) {
	iter := c.client.ListAggs(ctx, params)

	var aggs []models.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}

	if iter.Err() != nil {
		return nil, iter.Err()
	}

	return aggs, nil
}

func (c *polygonSDKClient) PreviousClose(ctx context.Context, ticker string) ([]models.Agg, error) {
	response, err := c.client.GetPreviousCloseAgg(ctx, &models.GetPreviousCloseAggParams{
		Ticker: ticker,
	})
	if err != nil {
		return nil, err
	}

	return response.Results, nil
}

func (c *polygonSDKClient) MarketStatus(ctx context.Context) error {
	_, err := c.client.GetMarketStatus(ctx)

	return err
}

// PolygonProvider serves stock and crypto aggregates from Polygon.
type PolygonProvider struct {
	api PolygonAPIClient
	now func() time.Time
}

// NewPolygonProvider creates a provider over the given API client.
func NewPolygonProvider(api PolygonAPIClient) *PolygonProvider {
	return &PolygonProvider{
		api: api,
		now: time.Now,
	}
}

func (p *PolygonProvider) Name() string {
	return string(ProviderPolygon)
}

func (p *PolygonProvider) ticker(symbol string) (string, error) {
	parsed, err := ParseSymbol(symbol)
	if err != nil {
		return "", err
	}

	return parsed.PolygonTicker(), nil
}

func (p *PolygonProvider) previousClose(ctx context.Context, symbol string) (models.Agg, error) {
	ticker, err := p.ticker(symbol)
	if err != nil {
		return models.Agg{}, err
	}

	aggs, err := p.api.PreviousClose(ctx, ticker)
	if err != nil {
		return models.Agg{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch previous close for %s from polygon", ticker)
	}

	if len(aggs) == 0 {
		return models.Agg{}, errors.Newf(errors.ErrCodeNoDataFound, "polygon returned no previous close for %s", ticker)
	}

	return aggs[0], nil
}

// GetTicker returns the previous close, the most recent price the free Polygon tier exposes.
func (p *PolygonProvider) GetTicker(ctx context.Context, symbol string) (types.Ticker, error) {
	agg, err := p.previousClose(ctx, symbol)
	if err != nil {
		return types.Ticker{}, err
	}

	return types.Ticker{
		Symbol:    symbol,
		Exchange:  p.Name(),
		Price:     agg.Close,
		Timestamp: p.now(),
		Source:    types.DataSourceReal,
	}, nil
}

func (p *PolygonProvider) GetTickerStats(ctx context.Context, symbol string) (types.TickerStats, error) {
	agg, err := p.previousClose(ctx, symbol)
	if err != nil {
		return types.TickerStats{}, err
	}

	change := agg.Close - agg.Open
	percentage := 0.0

	if agg.Open > 0 {
		percentage = change / agg.Open * 100
	}

	return types.TickerStats{
		Symbol:      symbol,
		Exchange:    p.Name(),
		Price:       agg.Close,
		Change:      change,
		Percentage:  percentage,
		High:        agg.High,
		Low:         agg.Low,
		Volume:      agg.Volume,
		QuoteVolume: agg.VWAP * agg.Volume,
		Timestamp:   p.now(),
		Source:      types.DataSourceReal,
	}, nil
}

func (p *PolygonProvider) GetOHLCV(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, limit int) ([]types.MarketData, error) {
	ticker, err := p.ticker(symbol)
	if err != nil {
		return nil, err
	}

	multiplier, timespan, err := polygonTimespan(timeframe)
	if err != nil {
		return nil, err
	}

	w, err := resolveWindow(timeframe, start, end, limit, p.now())
	if err != nil {
		return nil, err
	}

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(w.start),
		To:         models.Millis(w.end),
	}.WithLimit(polygonPageLimit)

	aggs, err := p.api.Aggregates(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch aggregates for %s from polygon", ticker)
	}

	data := make([]types.MarketData, 0, len(aggs))
	for _, agg := range aggs {
		data = append(data, types.MarketData{
			Symbol: symbol,
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	return w.trim(data), nil
}

// GetOrderBook is not offered by Polygon aggregates.
func (p *PolygonProvider) GetOrderBook(_ context.Context, _ string, _ int) (types.OrderBook, error) {
	return types.OrderBook{}, errors.New(errors.ErrCodeUnsupportedOperation, "polygon does not provide order books")
}

func (p *PolygonProvider) Ping(ctx context.Context) error {
	if err := p.api.MarketStatus(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeExchangeUnavailable, "polygon ping failed", err)
	}

	return nil
}

// polygonTimespan converts a timeframe to the multiplier and timespan ListAggs expects.
func polygonTimespan(timeframe types.Timeframe) (int, models.Timespan, error) {
	switch timeframe {
	case types.Timeframe1m:
		return 1, models.Minute, nil
	case types.Timeframe3m:
		return 3, models.Minute, nil
	case types.Timeframe5m:
		return 5, models.Minute, nil
	case types.Timeframe15m:
		return 15, models.Minute, nil
	case types.Timeframe30m:
		return 30, models.Minute, nil
	case types.Timeframe1h:
		return 1, models.Hour, nil
	case types.Timeframe2h:
		return 2, models.Hour, nil
	case types.Timeframe4h:
		return 4, models.Hour, nil
	case types.Timeframe6h:
		return 6, models.Hour, nil
	case types.Timeframe8h:
		return 8, models.Hour, nil
	case types.Timeframe12h:
		return 12, models.Hour, nil
	case types.Timeframe1d:
		return 1, models.Day, nil
	case types.Timeframe1w:
		return 1, models.Week, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe: %s", timeframe)
	}
}
