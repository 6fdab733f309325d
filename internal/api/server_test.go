package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/trading-simulator/internal/analysis"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/monitoring"
	"github.com/rxtech-lab/trading-simulator/internal/simulation"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/mocks"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type stubHost struct{}

func (stubHost) Memory() (types.MemoryInfo, error) {
	return types.MemoryInfo{TotalBytes: 100, AvailableBytes: 90, UsedPercent: 10}, nil
}

func (stubHost) Disk(path string) (types.DiskInfo, error) {
	return types.DiskInfo{Path: path, TotalBytes: 100, FreeBytes: 80, UsedPercent: 20}, nil
}

func (stubHost) CPU() (types.CPUInfo, error) { return types.CPUInfo{Count: 4, Load1: 0.5}, nil }

func (stubHost) Process() (types.ProcessInfo, error) { return types.ProcessInfo{PID: 1}, nil }

type ServerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	market      *mocks.MockMarketDataClient
	broadcaster *events.Broadcaster
	manager     *simulation.Manager
	metrics     *monitoring.Metrics
	logFile     string
	server      *Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (suite *ServerTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.market = mocks.NewMockMarketDataClient(suite.ctrl)
	suite.market.EXPECT().DefaultExchange().Return("binance").AnyTimes()
	suite.broadcaster = events.NewBroadcaster(16, nil)
	suite.metrics = monitoring.NewMetrics()

	simCfg := config.SimulationConfig{
		DefaultInitialBalance: 1000000,
		DefaultDurationHours:  24,
		TickInterval:          time.Hour,
		MaxConcurrent:         2,
		TradeHistoryLimit:     100,
		TradeHistoryKeep:      50,
		FallbackPrice:         50000000,
		MaxConsecutiveErrors:  3,
		Broker:                "zero_commission",
		DecimalPrecision:      8,
	}
	suite.manager = simulation.NewManager(simCfg, suite.market, storage.NewMemoryRepository(), suite.broadcaster, nil,
		simulation.WithRecorder(suite.metrics))

	suite.logFile = filepath.Join(suite.T().TempDir(), "app.log")
	suite.Require().NoError(os.WriteFile(suite.logFile, []byte("first\nsecond\nthird\n"), 0o600))

	suite.server = suite.newServer(config.ServerConfig{CORSOrigins: []string{"http://allowed.example"}})
}

func (suite *ServerTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	suite.NoError(suite.manager.Shutdown(ctx))
	suite.NoError(suite.broadcaster.Close())
	suite.ctrl.Finish()
}

func (suite *ServerTestSuite) newServer(cfg config.ServerConfig) *Server {
	deps := Dependencies{
		Simulations: suite.manager,
		Market:      suite.market,
		Analysis:    analysis.NewService(suite.market, config.AnalysisConfig{}, nil),
		Health: monitoring.NewHealthChecker(config.MonitoringConfig{}, nil, suite.market, "v1.0.0", nil,
			monitoring.WithHostStats(stubHost{})),
		Metrics: suite.metrics,
		Logs:    monitoring.NewLogReader(suite.logFile),
		Events:  suite.broadcaster,
	}

	return NewServer(cfg, config.AppConfig{Name: "trading-simulator", Version: "v1.0.0", Environment: "test"}, deps, nil)
}

func (suite *ServerTestSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)

	return rec
}

func (suite *ServerTestSuite) decode(rec *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (suite *ServerTestSuite) errorCode(rec *httptest.ResponseRecorder) errors.ErrorCode {
	var body errorBody
	suite.decode(rec, &body)

	return errors.ErrorCode(body.Error.Code)
}

func (suite *ServerTestSuite) TestRootAndHealth() {
	rec := suite.do(http.MethodGet, "/", "")
	suite.Equal(http.StatusOK, rec.Code)

	var root map[string]any
	suite.decode(rec, &root)
	suite.Equal("trading-simulator", root["name"])
	suite.Equal("running", root["status"])

	rec = suite.do(http.MethodGet, "/health", "")
	suite.Equal(http.StatusOK, rec.Code)

	var health map[string]any
	suite.decode(rec, &health)
	suite.Equal("healthy", health["status"])
	suite.Equal(float64(0), health["active_simulations"])
}

func (suite *ServerTestSuite) TestSimulationLifecycle() {
	suite.market.EXPECT().GetTicker(gomock.Any(), "binance", "BTC/KRW").Return(types.Ticker{
		Symbol: "BTC/KRW", Exchange: "binance", Price: 50000000, Source: types.DataSourceReal,
	}, nil).AnyTimes()

	rec := suite.do(http.MethodPost, "/api/v1/simulation/start", `{"strategy":"arbitrage","symbol":"BTC/KRW"}`)
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var started simulationAck
	suite.decode(rec, &started)
	suite.NotEmpty(started.SimulationID)
	suite.Equal(types.SimulationStatusRunning, started.Status)
	suite.Equal(50000000.0, started.Simulation.StartPrice)

	rec = suite.do(http.MethodGet, "/api/v1/simulation/status/"+started.SimulationID, "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var report types.SimulationReport
	suite.decode(rec, &report)
	suite.Equal(started.SimulationID, report.ID)
	suite.Equal(types.SimulationStatusRunning, report.Status)

	rec = suite.do(http.MethodGet, "/api/v1/simulation/list", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var list simulationList
	suite.decode(rec, &list)
	suite.Equal(1, list.Total)

	rec = suite.do(http.MethodDelete, "/api/v1/simulation/"+started.SimulationID, "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var stopped simulationAck
	suite.decode(rec, &stopped)
	suite.Equal(types.SimulationStatusStopped, stopped.Status)
	suite.Equal(0, suite.manager.ActiveCount())
}

func (suite *ServerTestSuite) TestSimulationErrors() {
	rec := suite.do(http.MethodPost, "/api/v1/simulation/start", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal(errors.ErrCodeInvalidRequestBody, suite.errorCode(rec))

	rec = suite.do(http.MethodPost, "/api/v1/simulation/start", `{"strategy":"scalping","symbol":"BTC/KRW"}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal(errors.ErrCodeUnsupportedStrategy, suite.errorCode(rec))

	rec = suite.do(http.MethodGet, "/api/v1/simulation/status/missing", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal(errors.ErrCodeSimulationNotFound, suite.errorCode(rec))

	rec = suite.do(http.MethodDelete, "/api/v1/simulation/missing", "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *ServerTestSuite) TestBacktestListAndStrategies() {
	rec := suite.do(http.MethodGet, "/api/v1/simulation/backtests", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var list backtestList
	suite.decode(rec, &list)
	suite.Equal(0, list.Total)
	suite.NotNil(list.Backtests)

	rec = suite.do(http.MethodGet, "/api/v1/simulation/backtests?limit=0", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal(errors.ErrCodeInvalidParameter, suite.errorCode(rec))

	rec = suite.do(http.MethodGet, "/api/v1/simulation/backtests?limit=abc", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/simulation/strategies", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var strategies struct {
		Strategies []types.StrategyInfo `json:"strategies"`
	}
	suite.decode(rec, &strategies)
	suite.Len(strategies.Strategies, len(types.AllStrategyTypes))
}

func (suite *ServerTestSuite) TestMarketRoutes() {
	suite.market.EXPECT().GetTicker(gomock.Any(), "upbit", "BTC-KRW").Return(types.Ticker{
		Symbol: "BTC-KRW", Exchange: "upbit", Price: 123, Source: types.DataSourceReal,
	}, nil)

	rec := suite.do(http.MethodGet, "/api/v1/market/price/btc-krw?exchange=upbit", "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var ticker types.Ticker
	suite.decode(rec, &ticker)
	suite.Equal(123.0, ticker.Price)

	suite.market.EXPECT().GetOrderBook(gomock.Any(), "", "BTCUSDT", 5).Return(types.OrderBook{}, nil)
	rec = suite.do(http.MethodGet, "/api/v1/market/orderbook/BTCUSDT?depth=5", "")
	suite.Equal(http.StatusOK, rec.Code)

	suite.market.EXPECT().GetOHLCV(gomock.Any(), "", "BTCUSDT", types.Timeframe1h, gomock.Any(), gomock.Any(), 10).
		Return(mocks.Linear("BTCUSDT", types.Timeframe1h, time.Now().Add(-10*time.Hour), 10, 100, 1), nil)
	rec = suite.do(http.MethodGet, "/api/v1/market/ohlcv/BTCUSDT?limit=10", "")
	suite.Equal(http.StatusOK, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/market/ohlcv/BTCUSDT?timeframe=7m", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/api/v1/market/ohlcv/BTCUSDT?limit=5000", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	suite.market.EXPECT().GetTickerStats(gomock.Any(), "", "BTCUSDT").
		Return(types.TickerStats{}, errors.New(errors.ErrCodeMarketDataFetchFailed, "exchange down"))
	rec = suite.do(http.MethodGet, "/api/v1/market/stats/BTCUSDT", "")
	suite.Equal(http.StatusBadGateway, rec.Code)
	suite.Equal(errors.ErrCodeMarketDataFetchFailed, suite.errorCode(rec))

	rec = suite.do(http.MethodGet, "/api/v1/market/exchanges", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var exchanges map[string][]map[string]any
	suite.decode(rec, &exchanges)
	suite.Require().Len(exchanges["exchanges"], 1)
	suite.Equal("binance", exchanges["exchanges"][0]["name"])
}

func (suite *ServerTestSuite) TestMonitoringRoutes() {
	suite.market.EXPECT().Ping(gomock.Any(), "binance").Return(nil)
	rec := suite.do(http.MethodGet, "/api/v1/monitoring/health", "")
	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())

	suite.market.EXPECT().Ping(gomock.Any(), "binance").Return(stderrors.New("connection refused"))
	rec = suite.do(http.MethodGet, "/api/v1/monitoring/health", "")
	suite.Equal(http.StatusServiceUnavailable, rec.Code)

	var report types.HealthReport
	suite.decode(rec, &report)
	suite.Equal(types.HealthUnhealthy, report.Status)

	rec = suite.do(http.MethodGet, "/api/v1/monitoring/system", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var info types.SystemInfo
	suite.decode(rec, &info)
	suite.Equal(4, info.CPU.Count)

	rec = suite.do(http.MethodGet, "/api/v1/monitoring/metrics", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var snapshot types.MetricsSnapshot
	suite.decode(rec, &snapshot)
	suite.Positive(snapshot.HTTPRequests)

	rec = suite.do(http.MethodGet, "/api/v1/monitoring/logs/recent?lines=2", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var logs types.RecentLogs
	suite.decode(rec, &logs)
	suite.Require().Equal(2, logs.TotalCount)
	suite.Equal("second", logs.Logs[0].Content)
	suite.Equal("third", logs.Logs[1].Content)

	rec = suite.do(http.MethodGet, "/api/v1/monitoring/logs/recent?lines=5000", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	rec = suite.do(http.MethodGet, "/metrics", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "trading_simulator_http_requests_total")
}

func (suite *ServerTestSuite) TestAnalysisRoutes() {
	rec := suite.do(http.MethodGet, "/api/v1/ai/sentiment/btc?text=bullish+rally&text=growth", "")
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var sentiment types.SentimentResult
	suite.decode(rec, &sentiment)
	suite.Equal("BTC", sentiment.Symbol)
	suite.Equal(types.SentimentPositive, sentiment.Sentiment)

	rec = suite.do(http.MethodGet, "/api/v1/ai/prediction/BTC?hours=500", "")
	suite.Equal(http.StatusBadRequest, rec.Code)

	suite.market.EXPECT().GetOHLCV(gomock.Any(), "", "BTC", types.Timeframe1h, gomock.Any(), gomock.Any(), analysis.HistoryCandles).
		Return(mocks.Linear("BTC", types.Timeframe1h, time.Now().Add(-30*time.Hour), 30, 100, 1), nil)
	rec = suite.do(http.MethodPost, "/api/v1/ai/analyze", `{"symbol":"btc","hours":12}`)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var result types.MarketAnalysis
	suite.decode(rec, &result)
	suite.Equal("BTC", result.Symbol)
	suite.Len(result.Prediction.Projection, 12)

	rec = suite.do(http.MethodPost, "/api/v1/ai/strategy", `{"texts":["rally"]}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal(errors.ErrCodeInvalidSymbol, suite.errorCode(rec))

	rec = suite.do(http.MethodGet, "/api/v1/ai/models/status", "")
	suite.Require().Equal(http.StatusOK, rec.Code)

	var models map[string][]types.ModelStatus
	suite.decode(rec, &models)
	suite.Len(models["models"], 3)
}

func (suite *ServerTestSuite) TestRoutingErrors() {
	rec := suite.do(http.MethodGet, "/api/v1/unknown", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal(errors.ErrCodeDataNotFound, suite.errorCode(rec))

	rec = suite.do(http.MethodGet, "/api/v1/monitoring/unknown", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.Equal(errors.ErrCodeDataNotFound, suite.errorCode(rec))

	tests := []struct {
		method string
		target string
	}{
		{method: http.MethodPost, target: "/health"},
		{method: http.MethodGet, target: "/api/v1/simulation/start"},
		{method: http.MethodPost, target: "/api/v1/simulation/list"},
		{method: http.MethodPost, target: "/api/v1/market/price/BTC"},
		{method: http.MethodDelete, target: "/api/v1/monitoring/system"},
		{method: http.MethodGet, target: "/api/v1/ai/analyze"},
	}

	for _, tt := range tests {
		rec := suite.do(tt.method, tt.target, "")
		suite.Equal(http.StatusMethodNotAllowed, rec.Code, "%s %s", tt.method, tt.target)
		suite.Equal(errors.ErrCodeInvalidParameter, suite.errorCode(rec), "%s %s", tt.method, tt.target)
	}
}

func (suite *ServerTestSuite) TestCORS() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulation/start", nil)
	req.Header.Set("Origin", "http://allowed.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)

	suite.Equal(http.StatusNoContent, rec.Code)
	suite.Equal("http://allowed.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	suite.server.Handler().ServeHTTP(rec, req)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *ServerTestSuite) TestRateLimit() {
	suite.server = suite.newServer(config.ServerConfig{RateLimitPerMinute: 2})

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/", "").Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/", "").Code)

	rec := suite.do(http.MethodGet, "/", "")
	suite.Equal(http.StatusTooManyRequests, rec.Code)
	suite.Equal("60", rec.Header().Get("Retry-After"))
	suite.Equal(errors.ErrCodeRateLimited, suite.errorCode(rec))
}

func (suite *ServerTestSuite) TestEventStream() {
	ts := httptest.NewServer(suite.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/simulation/ws?simulation_id=sim-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Eventually(func() bool {
		return suite.broadcaster.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	suite.NoError(suite.broadcaster.Publish(ctx, events.NewEvent(events.EventSimulationUpdated, "sim-2", nil)))
	suite.NoError(suite.broadcaster.Publish(ctx, events.NewEvent(events.EventSimulationCompleted, "sim-1", nil)))

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))

	var event events.Event
	suite.Require().NoError(conn.ReadJSON(&event))
	suite.Equal("sim-1", event.SimulationID)
	suite.Equal(events.EventSimulationCompleted, event.Type)

	suite.NoError(conn.Close())
	suite.Eventually(func() bool {
		return suite.broadcaster.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(2, func() time.Time { return now })

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.Equal(t, 2, limiter.Size())

	now = now.Add(11 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.3"))
	assert.Equal(t, 1, limiter.Size())

	disabled := newIPRateLimiter(0, time.Now)
	for i := 0; i < 10; i++ {
		assert.True(t, disabled.Allow("10.0.0.1"))
	}
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "no list", origin: "http://a.example", want: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "http://a.example", want: true},
		{name: "listed", allowed: []string{"http://A.example"}, origin: "http://a.example", want: true},
		{name: "not listed", allowed: []string{"http://b.example"}, origin: "http://a.example", want: false},
		{name: "no origin", allowed: []string{"http://b.example"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, originAllowed(tt.allowed, tt.origin))
		})
	}
}
