package api

import (
	"net/http"

	"github.com/rxtech-lab/trading-simulator/internal/monitoring"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

func notConfigured(w http.ResponseWriter, name string) {
	writeError(w, errors.Newf(errors.ErrCodeDataSourceUnavailable, "%s is not configured", name))
}

// handleMonitoringHealth answers 503 when any component is unhealthy so load
// balancers can act on the status code alone.
func (s *Server) handleMonitoringHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		notConfigured(w, "health checker")
		return
	}

	report := s.deps.Health.Check(r.Context())

	status := http.StatusOK
	if report.Status == types.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, report)
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		notConfigured(w, "health checker")
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Health.SystemInfo(r.Context()))
}

func (s *Server) handleMetricsSnapshot(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Metrics == nil {
		notConfigured(w, "metrics")
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

func (s *Server) handleRecentLogs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Logs == nil {
		notConfigured(w, "log reader")
		return
	}

	lines, err := queryInt(r, "lines", monitoring.DefaultLogLines)
	if err == nil {
		err = inRange("lines", lines, 1, monitoring.MaxLogLines)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	logs, err := s.deps.Logs.RecentLogs(lines)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
