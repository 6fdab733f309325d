// Package monitoring exposes Prometheus metrics, component health checks, host statistics
// and the tail of the application log.
package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

const namespace = "trading_simulator"

// Metrics holds the collectors of the service on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time
	now      func() time.Time

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	activeSimulations  prometheus.Gauge
	simulationsStarted *prometheus.CounterVec
	simulationTrades   prometheus.Counter
	backtests          *prometheus.CounterVec
	marketRequests     *prometheus.CounterVec

	// totals mirrored for Snapshot
	httpTotal     atomic.Int64
	activeTotal   atomic.Int64
	startedTotal  atomic.Int64
	tradesTotal   atomic.Int64
	backtestTotal atomic.Int64
}

// NewMetrics creates and registers the collectors, including the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		now:      time.Now,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled by the API, by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		activeSimulations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_simulations",
			Help:      "Simulations currently running.",
		}),
		simulationsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_started_total",
			Help:      "Simulations started, by strategy.",
		}, []string{"strategy"}),
		simulationTrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_trades_total",
			Help:      "Trades executed by running simulations.",
		}),
		backtests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtests_total",
			Help:      "Backtests run, by strategy and data source.",
		}, []string{"strategy", "source"}),
		marketRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "market_requests_total",
			Help:      "Market data requests, by exchange, operation, data source and result.",
		}, []string{"exchange", "operation", "source", "result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.activeSimulations,
		m.simulationsStarted,
		m.simulationTrades,
		m.backtests,
		m.marketRequests,
	)

	m.started = m.now()

	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one finished API request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.httpTotal.Add(1)
}

// SimulationStarted implements simulation.Recorder.
func (m *Metrics) SimulationStarted(strategy string) {
	m.simulationsStarted.WithLabelValues(strategy).Inc()
	m.startedTotal.Add(1)
}

// SetActiveSimulations implements simulation.Recorder.
func (m *Metrics) SetActiveSimulations(n int) {
	m.activeSimulations.Set(float64(n))
	m.activeTotal.Store(int64(n))
}

// AddSimulationTrades implements simulation.Recorder.
func (m *Metrics) AddSimulationTrades(n int) {
	if n <= 0 {
		return
	}

	m.simulationTrades.Add(float64(n))
	m.tradesTotal.Add(int64(n))
}

// BacktestCompleted implements simulation.Recorder.
func (m *Metrics) BacktestCompleted(strategy string, source string) {
	m.backtests.WithLabelValues(strategy, source).Inc()
	m.backtestTotal.Add(1)
}

// ObserveMarketRequest matches marketdata.RequestObserver.
func (m *Metrics) ObserveMarketRequest(exchange, operation string, source types.DataSource, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.marketRequests.WithLabelValues(exchange, operation, string(source), result).Inc()
}

// Uptime is the time since the metrics were created.
func (m *Metrics) Uptime() time.Duration {
	return m.now().Sub(m.started)
}

// Snapshot returns the counters as plain numbers.
func (m *Metrics) Snapshot() types.MetricsSnapshot {
	return types.MetricsSnapshot{
		ActiveSimulations: int(m.activeTotal.Load()),
		TotalSimulations:  int(m.startedTotal.Load()),
		BacktestsRun:      float64(m.backtestTotal.Load()),
		HTTPRequests:      float64(m.httpTotal.Load()),
		SimulationTrades:  float64(m.tradesTotal.Load()),
		UptimeSeconds:     m.Uptime().Seconds(),
		Timestamp:         m.now(),
	}
}
