// Package app assembles the simulator services from the configuration.
package app

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/analysis"
	"github.com/rxtech-lab/trading-simulator/internal/api"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/monitoring"
	"github.com/rxtech-lab/trading-simulator/internal/notify"
	"github.com/rxtech-lab/trading-simulator/internal/simulation"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/cache"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata/provider"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// App holds every wired service.
type App struct {
	Config      config.Config
	Market      *marketdata.Client
	Repository  storage.Repository
	Broadcaster *events.Broadcaster
	Publisher   *events.MultiPublisher
	Metrics     *monitoring.Metrics
	Simulations *simulation.Manager
	Analysis    *analysis.Service
	Health      *monitoring.HealthChecker
	Logs        *monitoring.LogReader
	Server      *api.Server

	log     *logger.Logger
	candles *cache.DuckDBCache
}

// New builds the services. On failure everything created so far is closed.
func New(cfg config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	a := &App{Config: cfg, log: log}
	if err := a.build(); err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if closeErr := a.Close(closeCtx); closeErr != nil {
			log.Warn("Failed to clean up after a failed start", zap.Error(closeErr))
		}

		return nil, err
	}

	return a, nil
}

func (a *App) build() error {
	cfg := a.Config
	a.Metrics = monitoring.NewMetrics()

	market, candles, err := OpenMarket(cfg, a.log, a.Metrics.ObserveMarketRequest)
	if err != nil {
		return err
	}
	a.Market, a.candles = market, candles

	if err := a.openRepository(); err != nil {
		return err
	}

	if err := a.openPublishers(); err != nil {
		return err
	}

	a.Simulations = simulation.NewManager(cfg.Simulation, a.Market, a.Repository, a.Publisher, a.log,
		simulation.WithRecorder(a.Metrics))
	a.Analysis = analysis.NewService(a.Market, cfg.Analysis, a.log)
	a.Health = monitoring.NewHealthChecker(cfg.Monitoring, a.Repository, a.Market, cfg.App.Version, a.log)
	a.Logs = monitoring.NewLogReader(cfg.Log.FilePath, cfg.Log.ErrorFilePath)

	a.Server = api.NewServer(cfg.Server, cfg.App, api.Dependencies{
		Simulations: a.Simulations,
		Market:      a.Market,
		Analysis:    a.Analysis,
		Health:      a.Health,
		Metrics:     a.Metrics,
		Logs:        a.Logs,
		Events:      a.Broadcaster,
	}, a.log)

	return nil
}

// OpenMarket builds the market data client over the configured providers and, when a cache
// path is set, the DuckDB candle cache. The returned cache is nil without a path and must be
// closed by the caller otherwise.
func OpenMarket(cfg config.Config, log *logger.Logger, observer marketdata.RequestObserver) (*marketdata.Client, *cache.DuckDBCache, error) {
	providers, err := Providers(cfg)
	if err != nil {
		return nil, nil, err
	}

	var opts []marketdata.ClientOption
	if observer != nil {
		opts = append(opts, marketdata.WithRequestObserver(observer))
	}

	var candles *cache.DuckDBCache
	if cfg.Market.CachePath != "" {
		candles, err = cache.NewDuckDBCache(cfg.Market.CachePath, log)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, marketdata.WithCandleCache(candles))
	}

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		DefaultExchange:        cfg.Market.DefaultExchange,
		PriceCacheTTL:          cfg.Market.PriceCacheTTL,
		AllowSyntheticFallback: cfg.Market.AllowSyntheticFallback,
		RequestTimeout:         cfg.Market.RequestTimeout,
	}, providers, log, opts...)
	if err != nil {
		if candles != nil {
			_ = candles.Close()
		}

		return nil, nil, err
	}

	return client, candles, nil
}

// Providers registers Binance always and Polygon when an API key is configured.
// The market client adds the synthetic exchange itself.
func Providers(cfg config.Config) ([]provider.Provider, error) {
	binance, err := provider.NewMarketDataProvider(provider.ProviderBinance, provider.Config{
		APIKey:       cfg.Binance.APIKey,
		SecretKey:    cfg.Binance.SecretKey,
		QuoteAliases: cfg.Market.QuoteAliases,
	})
	if err != nil {
		return nil, err
	}

	providers := []provider.Provider{binance}

	if cfg.Polygon.APIKey != "" {
		polygon, err := provider.NewMarketDataProvider(provider.ProviderPolygon, provider.Config{APIKey: cfg.Polygon.APIKey})
		if err != nil {
			return nil, err
		}
		providers = append(providers, polygon)
	}

	return providers, nil
}

func (a *App) openRepository() error {
	if a.Config.Database.URL == "" {
		a.log.Info("No database configured, simulations are kept in memory")
		a.Repository = storage.NewMemoryRepository()

		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	repo, err := storage.NewPostgresRepository(ctx, a.Config.Database.URL, a.Config.Database.MaxConns)
	if err != nil {
		return err
	}
	a.Repository = repo

	return nil
}

// openPublishers fans events out to the websocket broadcaster and, when configured,
// RabbitMQ and Telegram.
func (a *App) openPublishers() error {
	cfg := a.Config
	a.Broadcaster = events.NewBroadcaster(events.DefaultSubscriberBuffer, a.log)
	a.Publisher = events.NewMultiPublisher(a.Broadcaster)

	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, a.log)
		if err != nil {
			return err
		}
		a.Publisher.Add(rabbit)
	}

	if cfg.Telegram.Enabled {
		var opts []notify.Option
		if cfg.Telegram.BaseURL != "" {
			opts = append(opts, notify.WithBaseURL(cfg.Telegram.BaseURL))
		}

		telegram := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, a.log, opts...)
		if !telegram.Enabled() {
			a.log.Warn("Telegram is enabled but the bot token or chat id is missing")
		}
		a.Publisher.Add(telegram)
	}

	return nil
}

// Run recovers interrupted simulations, schedules the cleanup job and starts the API server.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Simulations.Recover(ctx); err != nil {
		a.log.Warn("Failed to recover interrupted simulations", zap.Error(err))
	}

	if err := a.Simulations.StartCleanupJob(); err != nil {
		return err
	}

	return a.Server.Start()
}

// Close tears the services down in reverse order of construction.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if a.Simulations != nil {
		if err := a.Simulations.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	// closing the publisher also closes the broadcaster, which ends the websocket streams
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.Repository != nil {
		if err := a.Repository.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if a.candles != nil {
		if err := a.candles.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return stderrors.Join(errs...)
}
