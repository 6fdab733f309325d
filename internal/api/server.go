// Package api serves the simulator over HTTP: simulations and backtests, market data,
// monitoring, analysis and a websocket stream of simulation events.
package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/trading-simulator/internal/analysis"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/events"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/monitoring"
	"github.com/rxtech-lab/trading-simulator/internal/simulation"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
	"go.uber.org/zap"
)

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 60 * time.Second
)

// Dependencies are the services the API serves.
type Dependencies struct {
	Simulations *simulation.Manager
	Market      marketdata.MarketDataClient
	Analysis    *analysis.Service
	Health      *monitoring.HealthChecker
	Metrics     *monitoring.Metrics
	Logs        *monitoring.LogReader
	Events      *events.Broadcaster
}

// Server is the HTTP API server.
type Server struct {
	cfg      config.ServerConfig
	app      config.AppConfig
	deps     Dependencies
	log      *logger.Logger
	router   *mux.Router
	handler  http.Handler
	limiter  *ipRateLimiter
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	// sockets holds open websocket connections so Shutdown can close them.
	sockets map[*websocket.Conn]struct{}
}

// NewServer builds the router and middleware chain.
func NewServer(cfg config.ServerConfig, app config.AppConfig, deps Dependencies, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		cfg:     cfg,
		app:     app,
		deps:    deps,
		log:     log.Named("api"),
		router:  mux.NewRouter(),
		limiter: newIPRateLimiter(cfg.RateLimitPerMinute, time.Now),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg.CORSOrigins, r.Header.Get("Origin"))
			},
		},
		sockets: make(map[*websocket.Conn]struct{}),
	}

	s.routes()
	s.router.Use(s.instrument)
	s.handler = s.recoverPanics(s.cors(s.rateLimit(s.router)))

	return s
}

// Handler returns the full middleware chain, used by tests and embedding servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() {
	r := s.router
	s.routingErrors(r)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/api/v1").Subrouter()
	s.routingErrors(v1)

	sim := v1.PathPrefix("/simulation").Subrouter()
	s.routingErrors(sim)
	sim.HandleFunc("/start", s.handleStartSimulation).Methods(http.MethodPost)
	sim.HandleFunc("/status/{id}", s.handleSimulationStatus).Methods(http.MethodGet)
	sim.HandleFunc("/list", s.handleListSimulations).Methods(http.MethodGet)
	sim.HandleFunc("/backtest", s.handleBacktest).Methods(http.MethodPost)
	sim.HandleFunc("/backtests", s.handleListBacktests).Methods(http.MethodGet)
	sim.HandleFunc("/strategies", s.handleStrategies).Methods(http.MethodGet)
	sim.HandleFunc("/ws", s.handleEvents).Methods(http.MethodGet)
	sim.HandleFunc("/{id}", s.handleStopSimulation).Methods(http.MethodDelete)

	market := v1.PathPrefix("/market").Subrouter()
	s.routingErrors(market)
	market.HandleFunc("/exchanges", s.handleExchanges).Methods(http.MethodGet)
	market.HandleFunc("/price/{symbol}", s.handlePrice).Methods(http.MethodGet)
	market.HandleFunc("/stats/{symbol}", s.handleStats).Methods(http.MethodGet)
	market.HandleFunc("/ohlcv/{symbol}", s.handleOHLCV).Methods(http.MethodGet)
	market.HandleFunc("/orderbook/{symbol}", s.handleOrderBook).Methods(http.MethodGet)

	mon := v1.PathPrefix("/monitoring").Subrouter()
	s.routingErrors(mon)
	mon.HandleFunc("/health", s.handleMonitoringHealth).Methods(http.MethodGet)
	mon.HandleFunc("/system", s.handleSystem).Methods(http.MethodGet)
	mon.HandleFunc("/metrics", s.handleMetricsSnapshot).Methods(http.MethodGet)
	mon.HandleFunc("/logs/recent", s.handleRecentLogs).Methods(http.MethodGet)

	ai := v1.PathPrefix("/ai").Subrouter()
	s.routingErrors(ai)
	ai.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	ai.HandleFunc("/sentiment/{symbol}", s.handleSentiment).Methods(http.MethodGet)
	ai.HandleFunc("/prediction/{symbol}", s.handlePrediction).Methods(http.MethodGet)
	ai.HandleFunc("/strategy", s.handleRecommend).Methods(http.MethodPost)
	ai.HandleFunc("/models/status", s.handleModelStatus).Methods(http.MethodGet)
}

// routingErrors answers unknown paths with 404 and known paths with the wrong method with 405.
// gorilla/mux does not pass these handlers down to subrouters.
func (s *Server) routingErrors(r *mux.Router) {
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errors.New(errors.ErrCodeDataNotFound, "route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    int(errors.ErrCodeInvalidParameter),
			Message: "method not allowed",
		}})
	})
}

// Start listens on the configured host and port and serves in the background.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", addr)
	}

	readTimeout := s.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	writeTimeout := s.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}

	s.mu.Lock()
	s.httpServer = server
	s.listener = listener
	s.mu.Unlock()

	s.log.Info("api server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("api server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server listens on, or an empty string before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown closes websocket streams and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.httpServer
	for conn := range s.sockets {
		_ = conn.Close()
	}
	s.sockets = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if server == nil {
		return nil
	}

	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeUnknown, "api server shutdown failed", err)
	}

	s.log.Info("api server stopped")

	return nil
}

func (s *Server) trackSocket(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[conn] = struct{}{}
}

func (s *Server) untrackSocket(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, conn)
}
