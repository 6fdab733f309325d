package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"go.uber.org/zap"
)

// Component names reported by Check.
const (
	ComponentAPIServer = "api_server"
	ComponentDatabase  = "database"
	ComponentExchange  = "exchange"
	ComponentMemory    = "memory"
	ComponentDisk      = "disk"
)

const defaultCheckTimeout = 5 * time.Second

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ExchangePinger pings exchanges by name.
type ExchangePinger interface {
	Ping(ctx context.Context, exchange string) error
	DefaultExchange() string
}

// HealthOption configures a HealthChecker.
type HealthOption func(*HealthChecker)

// WithHostStats replaces the host statistics source.
func WithHostStats(host HostStats) HealthOption {
	return func(h *HealthChecker) {
		h.host = host
	}
}

// WithCheckTimeout bounds each dependency ping.
func WithCheckTimeout(timeout time.Duration) HealthOption {
	return func(h *HealthChecker) {
		h.timeout = timeout
	}
}

// WithHealthClock replaces the clock used for uptime and timestamps.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthChecker) {
		h.now = now
	}
}

// HealthChecker checks the service and its dependencies.
type HealthChecker struct {
	cfg      config.MonitoringConfig
	database Pinger
	exchange ExchangePinger
	host     HostStats
	version  string
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
	started  time.Time
}

// NewHealthChecker creates a checker. A nil database or exchange is skipped, and a nil host
// source is replaced by the proc filesystem when it is available.
func NewHealthChecker(cfg config.MonitoringConfig, database Pinger, exchange ExchangePinger, version string, log *logger.Logger, opts ...HealthOption) *HealthChecker {
	if log == nil {
		log = logger.NewNopLogger()
	}

	h := &HealthChecker{
		cfg:      cfg,
		database: database,
		exchange: exchange,
		version:  version,
		timeout:  defaultCheckTimeout,
		log:      log.Named("health"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.host == nil {
		host, err := NewProcHost()
		if err != nil {
			h.log.Warn("host statistics unavailable", zap.Error(err))
		} else {
			h.host = host
		}
	}

	if h.cfg.DiskPath == "" {
		h.cfg.DiskPath = "/"
	}

	h.started = h.now()

	return h
}

// Uptime is the time since the checker was created.
func (h *HealthChecker) Uptime() time.Duration {
	return h.now().Sub(h.started)
}

// Check runs every component check. The overall status is the worst component status.
func (h *HealthChecker) Check(ctx context.Context) types.HealthReport {
	components := []types.ComponentHealth{
		{Name: ComponentAPIServer, Status: types.HealthHealthy},
	}

	if h.database != nil {
		components = append(components, h.ping(ctx, ComponentDatabase, h.database.Ping))
	}

	if h.exchange != nil {
		name := h.exchange.DefaultExchange()
		component := h.ping(ctx, ComponentExchange, func(ctx context.Context) error {
			return h.exchange.Ping(ctx, name)
		})
		if component.Message == "" {
			component.Message = name
		}
		components = append(components, component)
	}

	components = append(components, h.checkMemory(), h.checkDisk())

	status := types.HealthHealthy
	for _, c := range components {
		if c.Status.Severity() > status.Severity() {
			status = c.Status
		}
	}

	if status != types.HealthHealthy {
		h.log.Warn("health check degraded", zap.String("status", string(status)))
	}

	return types.HealthReport{
		Status:        status,
		Components:    components,
		UptimeSeconds: h.Uptime().Seconds(),
		Version:       h.version,
		Timestamp:     h.now(),
	}
}

func (h *HealthChecker) ping(ctx context.Context, name string, ping func(context.Context) error) types.ComponentHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	started := time.Now()
	err := ping(ctx)
	component := types.ComponentHealth{
		Name:      name,
		Status:    types.HealthHealthy,
		LatencyMs: float64(time.Since(started).Microseconds()) / 1000,
	}

	if err != nil {
		component.Status = types.HealthUnhealthy
		component.Message = err.Error()
	}

	return component
}

// Unreadable host statistics are reported as warnings since they do not affect serving.
func (h *HealthChecker) checkMemory() types.ComponentHealth {
	component := types.ComponentHealth{Name: ComponentMemory, Status: types.HealthHealthy}

	if h.host == nil {
		return unavailable(component)
	}

	memory, err := h.host.Memory()
	if err != nil {
		component.Status = types.HealthWarning
		component.Message = err.Error()

		return component
	}

	return threshold(component, memory.UsedPercent, h.cfg.MemoryThreshold)
}

func (h *HealthChecker) checkDisk() types.ComponentHealth {
	component := types.ComponentHealth{Name: ComponentDisk, Status: types.HealthHealthy}

	if h.host == nil {
		return unavailable(component)
	}

	disk, err := h.host.Disk(h.cfg.DiskPath)
	if err != nil {
		component.Status = types.HealthWarning
		component.Message = err.Error()

		return component
	}

	return threshold(component, disk.UsedPercent, h.cfg.DiskThreshold)
}

func unavailable(component types.ComponentHealth) types.ComponentHealth {
	component.Status = types.HealthWarning
	component.Message = "host statistics unavailable"

	return component
}

func threshold(component types.ComponentHealth, used, limit float64) types.ComponentHealth {
	component.Message = fmt.Sprintf("%.1f%% used", used)

	if limit > 0 && used >= limit {
		component.Status = types.HealthWarning
		component.Message = fmt.Sprintf("%.1f%% used, threshold %.0f%%", used, limit)
	}

	return component
}

// SystemInfo collects CPU, memory, disk and process statistics. Sections that cannot be read
// are left empty.
func (h *HealthChecker) SystemInfo(_ context.Context) types.SystemInfo {
	info := types.SystemInfo{
		Process:   goProcessInfo(),
		Timestamp: h.now(),
	}

	if h.host != nil {
		cpu, err := h.host.CPU()
		if err != nil {
			h.log.Debug("cpu load unavailable", zap.Error(err))
		}
		info.CPU = cpu

		if memory, err := h.host.Memory(); err == nil {
			info.Memory = memory
		}

		if disk, err := h.host.Disk(h.cfg.DiskPath); err == nil {
			info.Disk = disk
		}

		if process, err := h.host.Process(); err == nil {
			info.Process = process
		}
	}

	if info.CPU.Count == 0 {
		info.CPU.Count = runtime.NumCPU()
	}

	info.Process.UptimeSeconds = h.Uptime().Seconds()

	return info
}
