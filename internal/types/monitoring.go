package types

import "time"

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthWarning   HealthStatus = "warning"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// Severity orders statuses so the worst of several can be picked.
func (h HealthStatus) Severity() int {
	switch h {
	case HealthHealthy:
		return 0
	case HealthWarning:
		return 1
	default:
		return 2
	}
}

type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	// LatencyMs is how long the check took.
	LatencyMs float64 `json:"latency_ms"`
}

type HealthReport struct {
	Status        HealthStatus      `json:"status"`
	Components    []ComponentHealth `json:"components"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Version       string            `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
}

type MemoryInfo struct {
	TotalBytes     uint64  `json:"total_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
}

type DiskInfo struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

type CPUInfo struct {
	Count   int     `json:"count"`
	Load1   float64 `json:"load1"`
	Load5   float64 `json:"load5"`
	Load15  float64 `json:"load15"`
	Seconds float64 `json:"process_cpu_seconds"`
}

type ProcessInfo struct {
	PID           int     `json:"pid"`
	ResidentBytes uint64  `json:"resident_bytes"`
	Goroutines    int     `json:"goroutines"`
	HeapAlloc     uint64  `json:"heap_alloc_bytes"`
	GCCount       uint32  `json:"gc_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	GoVersion     string  `json:"go_version"`
}

type SystemInfo struct {
	CPU       CPUInfo     `json:"cpu"`
	Memory    MemoryInfo  `json:"memory"`
	Disk      DiskInfo    `json:"disk"`
	Process   ProcessInfo `json:"process"`
	Timestamp time.Time   `json:"timestamp"`
}

type MetricsSnapshot struct {
	ActiveSimulations int       `json:"active_simulations"`
	TotalSimulations  int       `json:"total_simulations"`
	BacktestsRun      float64   `json:"backtests_run"`
	HTTPRequests      float64   `json:"http_requests"`
	SimulationTrades  float64   `json:"simulation_trades"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
	Timestamp         time.Time `json:"timestamp"`
}

type LogEntry struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

type RecentLogs struct {
	Logs       []LogEntry `json:"logs"`
	TotalCount int        `json:"total_count"`
	Timestamp  time.Time  `json:"timestamp"`
}
