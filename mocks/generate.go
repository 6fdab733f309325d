package mocks

//go:generate mockgen -destination=./mock_trading.go -package=mocks github.com/rxtech-lab/trading-simulator/internal/trading TradingSystem
//go:generate mockgen -destination=./mock_marketdata_client.go -package=mocks github.com/rxtech-lab/trading-simulator/pkg/marketdata MarketDataClient
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_binance_api.go -package=mocks github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider BinanceAPIClient
//go:generate mockgen -destination=./mock_polygon_api.go -package=mocks github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider PolygonAPIClient
//go:generate mockgen -destination=./mock_repository.go -package=mocks github.com/rxtech-lab/trading-simulator/internal/storage Repository
//go:generate mockgen -destination=./mock_publisher.go -package=mocks github.com/rxtech-lab/trading-simulator/internal/events Publisher
//go:generate mockgen -destination=./mock_amqp_channel.go -package=mocks github.com/rxtech-lab/trading-simulator/internal/events AMQPChannel
