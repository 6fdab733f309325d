package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine"
	"github.com/rxtech-lab/trading-simulator/internal/strategy"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

const (
	defaultBacktestLimit = 20
	maxBacktestLimit     = 100
)

type simulationAck struct {
	SimulationID string                 `json:"simulation_id"`
	Status       types.SimulationStatus `json:"status"`
	Message      string                 `json:"message"`
	Simulation   types.Simulation       `json:"simulation"`
}

type simulationList struct {
	Simulations []types.Simulation `json:"simulations"`
	Total       int                `json:"total"`
}

type backtestList struct {
	Backtests []types.BacktestResult `json:"backtests"`
	Total     int                    `json:"total"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        s.app.Name,
		"version":     s.app.Version,
		"environment": s.app.Environment,
		"status":      "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	active := 0
	if s.deps.Simulations != nil {
		active = s.deps.Simulations.ActiveCount()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"active_simulations": active,
	})
}

func (s *Server) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	var req types.StartSimulationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sim, err := s.deps.Simulations.Start(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, simulationAck{
		SimulationID: sim.ID,
		Status:       sim.Status,
		Message:      "simulation started",
		Simulation:   sim,
	})
}

func (s *Server) handleSimulationStatus(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.Simulations.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStopSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := s.deps.Simulations.Stop(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, simulationAck{
		SimulationID: sim.ID,
		Status:       sim.Status,
		Message:      "simulation stopped",
		Simulation:   sim,
	})
}

func (s *Server) handleListSimulations(w http.ResponseWriter, r *http.Request) {
	sims, err := s.deps.Simulations.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if sims == nil {
		sims = []types.Simulation{}
	}

	writeJSON(w, http.StatusOK, simulationList{Simulations: sims, Total: len(sims)})
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req types.BacktestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.deps.Simulations.Backtest(r.Context(), req, engine.LifecycleCallbacks{})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultBacktestLimit)
	if err == nil {
		err = inRange("limit", limit, 1, maxBacktestLimit)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := s.deps.Simulations.Backtests(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	if results == nil {
		results = []types.BacktestResult{}
	}

	writeJSON(w, http.StatusOK, backtestList{Backtests: results, Total: len(results)})
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	infos, err := strategy.Describe()
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeUnsupportedStrategy, "failed to describe strategies", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"strategies": infos})
}
